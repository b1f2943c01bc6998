package handlers

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/consumergraph/consumergraph/internal/logger"
	"github.com/consumergraph/consumergraph/internal/mapping"
	"github.com/rs/zerolog"
)

// Page styles
const (
	StyleGraph = "graph"
	StyleTree  = "tree"
)

//go:embed templates/*.html.tmpl
var templateFS embed.FS

// PageHandler renders the cluster -> topics -> groups page
type PageHandler struct {
	reader  mapping.Reader
	cluster string
	tmpl    *template.Template
	log     zerolog.Logger
}

// NewPageHandler parses the template for style. Anything other than "tree"
// renders the graph.
func NewPageHandler(reader mapping.Reader, cluster, style string) (*PageHandler, error) {
	name := StyleGraph
	if strings.EqualFold(style, StyleTree) {
		name = StyleTree
	}

	tmpl, err := template.ParseFS(templateFS, "templates/layout.html.tmpl", "templates/"+name+".html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse %s template: %w", name, err)
	}

	return &PageHandler{
		reader:  reader,
		cluster: cluster,
		tmpl:    tmpl.Lookup(name + ".html.tmpl"),
		log:     logger.WithComponent("http.page"),
	}, nil
}

// ServeHTTP handles GET /
func (h *PageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	data := NewTreeResponse(h.cluster, h.reader.Snapshot())

	// Render fully before writing so a template failure can still be a 500
	var buf bytes.Buffer
	if err := h.tmpl.Execute(&buf, data); err != nil {
		h.log.Error().Err(err).Msg("Failed to render page")
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	//nolint:errcheck // the client may already be gone
	_, _ = buf.WriteTo(w)
}
