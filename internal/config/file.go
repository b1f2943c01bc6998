package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/magiconair/properties"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// loadFromFile overlays the keys found in path onto cfg. The format is
// chosen by extension.
func loadFromFile(cfg *Config, path string) error {
	var (
		values map[string]string
		err    error
	)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".properties", ".conf", "":
		values, err = readProperties(path)
	case ".yaml", ".yml":
		values, err = readYAML(path)
	default:
		return &UnsupportedFormatError{Path: path}
	}
	if err != nil {
		return err
	}

	return apply(cfg, values)
}

func apply(cfg *Config, values map[string]string) error {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		known, err := cfg.Set(k, values[k])
		if err != nil {
			return err
		}
		if !known {
			log.Warn().Str("key", k).Msg("Ignoring unknown configuration key")
		}
	}
	return nil
}

func readProperties(path string) (map[string]string, error) {
	loader := &properties.Loader{Encoding: properties.UTF8, DisableExpansion: true}
	p, err := loader.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return p.Map(), nil
}

func readYAML(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	values := make(map[string]string)
	flatten("", doc, values)
	return values, nil
}

// flatten turns nested mappings into dotted keys, so that
//
//	filters:
//	  topic: "^_.*"
//
// yields filters.topic. Sequences are joined with commas.
func flatten(prefix string, node any, out map[string]string) {
	switch v := node.(type) {
	case map[string]any:
		for k, child := range v {
			flatten(join(prefix, k), child, out)
		}
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, fmt.Sprint(item))
		}
		out[prefix] = strings.Join(parts, ",")
	case nil:
		out[prefix] = ""
	default:
		out[prefix] = fmt.Sprint(v)
	}
}

func join(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
