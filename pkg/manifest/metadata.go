package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/data-eco/eco-go/pkg/dag"
)

// ParseAnnotation turns a CLI-provided value into an annotation. The value is
// either a path to a plain-text/markdown file, or the annotation text itself.
// A value that looks like nothing on disk is taken as inline markdown.
func ParseAnnotation(value string) (dag.Annotation, error) {
	info, err := os.Stat(value)
	if err != nil || info.IsDir() {
		return dag.Annotation{Format: "markdown", Content: value}, nil
	}

	content, err := os.ReadFile(value)
	if err != nil {
		return dag.Annotation{}, fmt.Errorf("could not read annotation file %s: %w", value, err)
	}

	format := "text"
	switch strings.ToLower(filepath.Ext(value)) {
	case ".md", ".markdown":
		format = "markdown"
	}

	return dag.Annotation{Format: format, Content: string(content)}, nil
}

// ParseView turns a CLI-provided value into a view spec. The value is either
// a path to a vega-lite JSON file, or the JSON document itself. The spec is
// only checked for JSON well-formedness, its meaning is left to renderers.
func ParseView(value string) (dag.View, error) {
	raw := []byte(value)

	if info, err := os.Stat(value); err == nil && !info.IsDir() {
		raw, err = os.ReadFile(value)
		if err != nil {
			return nil, fmt.Errorf("could not read view file %s: %w", value, err)
		}
	}

	if !json.Valid(raw) {
		return nil, fmt.Errorf("view spec is not valid JSON: %q", value)
	}

	return dag.View(raw), nil
}

// LoadStats reads extra stage metadata from a YAML or JSON file and returns
// it as opaque per-key stats. The engine never interprets the values.
func LoadStats(path string) (dag.Stats, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read metadata file %s: %w", path, err)
	}

	var decoded map[string]any

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, &decoded); err != nil {
			return nil, fmt.Errorf("could not parse metadata file %s: %w", path, err)
		}
	case ".yml", ".yaml":
		if err := yaml.Unmarshal(data, &decoded); err != nil {
			return nil, fmt.Errorf("could not parse metadata file %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported metadata file format: %s", path)
	}

	stats := make(dag.Stats, len(decoded))

	for key, value := range decoded {
		raw, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("could not convert metadata key %q: %w", key, err)
		}

		stats[key] = raw
	}

	return stats, nil
}
