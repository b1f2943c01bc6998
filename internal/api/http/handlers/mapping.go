package handlers

import (
	"net/http"
	"time"

	"github.com/consumergraph/consumergraph/internal/mapping"
	"github.com/go-chi/chi/v5"
)

// TreeResponse is the hierarchical view of the mapping
type TreeResponse struct {
	Cluster       string        `json:"cluster"`
	LastUpdated   int64         `json:"last_updated"`
	LastUpdatedAt string        `json:"last_updated_at,omitempty"`
	Observations  uint64        `json:"observations"`
	Root          *mapping.Node `json:"root"`
}

// TopicResponse lists the groups consuming one topic
type TopicResponse struct {
	Topic  string   `json:"topic"`
	Groups []string `json:"groups"`
}

// TopicsResponse lists every known topic
type TopicsResponse struct {
	Topics []string `json:"topics"`
}

// NewTreeResponse builds the tree view of snap
func NewTreeResponse(cluster string, snap mapping.Snapshot) TreeResponse {
	resp := TreeResponse{
		Cluster:      cluster,
		LastUpdated:  snap.LastUpdated,
		Observations: snap.Observations,
		Root:         snap.Tree(cluster),
	}
	if ts := snap.LastUpdatedTime(); !ts.IsZero() {
		resp.LastUpdatedAt = ts.UTC().Format(time.RFC3339Nano)
	}
	return resp
}

// MappingHandlers serves read-only views of the mapping
type MappingHandlers struct {
	reader  mapping.Reader
	cluster string
}

// NewMappingHandlers creates mapping handlers
func NewMappingHandlers(reader mapping.Reader, cluster string) *MappingHandlers {
	return &MappingHandlers{reader: reader, cluster: cluster}
}

// Mapping handles GET /api/v1/mapping
func (h *MappingHandlers) Mapping(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.reader.Snapshot())
}

// Tree handles GET /api/v1/tree
func (h *MappingHandlers) Tree(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, NewTreeResponse(h.cluster, h.reader.Snapshot()))
}

// Topics handles GET /api/v1/topics
func (h *MappingHandlers) Topics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, TopicsResponse{Topics: h.reader.Snapshot().TopicNames()})
}

// Topic handles GET /api/v1/topics/{topic}
func (h *MappingHandlers) Topic(w http.ResponseWriter, r *http.Request) {
	topic := chi.URLParam(r, "topic")
	groups, ok := h.reader.Snapshot().Topics[topic]
	if !ok {
		writeError(w, http.StatusNotFound, "topic not found: "+topic)
		return
	}
	writeJSON(w, http.StatusOK, TopicResponse{Topic: topic, Groups: groups})
}
