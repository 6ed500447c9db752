// Package document reads and writes versioned scenario documents.
package document

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"projection-engine/internal/model"
	"projection-engine/internal/transitions"
)

// Version is the only document version this build reads and writes.
const Version = 1

// Document wraps a configuration with format metadata.
type Document struct {
	Version       int                           `json:"version"`
	ExportedAt    time.Time                     `json:"exported_at"`
	Configuration model.SimulationConfiguration `json:"configuration"`
}

// Export encodes cfg as an indented JSON document stamped with now.
func Export(cfg model.SimulationConfiguration, now time.Time) ([]byte, error) {
	doc := Document{Version: Version, ExportedAt: now.UTC(), Configuration: cfg}
	if doc.Configuration.Transitions == nil {
		doc.Configuration.Transitions = []model.ParameterTransition{}
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding document: %w", err)
	}
	return data, nil
}

// Import decodes a JSON document. Unknown keys, an unsupported version or an
// invalid configuration reject the whole document.
func Import(data []byte) (model.SimulationConfiguration, error) {
	var doc Document
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		code := model.CodeInvalidDocument
		if strings.Contains(err.Error(), "unknown field") {
			code = model.CodeUnknownParameter
		}
		return model.SimulationConfiguration{}, &model.ValidationError{Code: code, Message: err.Error()}
	}
	if doc.Version != Version {
		return model.SimulationConfiguration{}, &model.ValidationError{
			Code:    model.CodeUnsupportedVersion,
			Field:   "version",
			Message: fmt.Sprintf("document version %d is not supported (want %d)", doc.Version, Version),
		}
	}
	if err := transitions.ValidateConfiguration(doc.Configuration); err != nil {
		return model.SimulationConfiguration{}, err
	}
	if doc.Configuration.Transitions == nil {
		doc.Configuration.Transitions = []model.ParameterTransition{}
	}
	return doc.Configuration, nil
}

// ImportYAML reads the same document written by hand as YAML.
func ImportYAML(data []byte) (model.SimulationConfiguration, error) {
	var tree any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return model.SimulationConfiguration{}, &model.ValidationError{Code: model.CodeInvalidDocument, Message: err.Error()}
	}
	normalised, err := normalise(tree)
	if err != nil {
		return model.SimulationConfiguration{}, err
	}
	raw, err := json.Marshal(normalised)
	if err != nil {
		return model.SimulationConfiguration{}, &model.ValidationError{Code: model.CodeInvalidDocument, Message: err.Error()}
	}
	return Import(raw)
}

// normalise turns a YAML tree into one encoding/json style marshallers
// accept: string-keyed maps and dates as strings.
func normalise(v any) (any, error) {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, child := range t {
			n, err := normalise(child)
			if err != nil {
				return nil, err
			}
			out[k] = n
		}
		return out, nil
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, child := range t {
			key, ok := k.(string)
			if !ok {
				return nil, &model.ValidationError{Code: model.CodeInvalidDocument, Message: fmt.Sprintf("non-string key %v", k)}
			}
			n, err := normalise(child)
			if err != nil {
				return nil, err
			}
			out[key] = n
		}
		return out, nil
	case []any:
		out := make([]any, len(t))
		for i, child := range t {
			n, err := normalise(child)
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	case time.Time:
		if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
			return t.Format(model.DateLayout), nil
		}
		return t.Format(time.RFC3339), nil
	default:
		return v, nil
	}
}

// Load reads a document from path. Files ending in .yaml or .yml are YAML.
func Load(path string) (model.SimulationConfiguration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.SimulationConfiguration{}, fmt.Errorf("reading %s: %w", path, err)
	}
	var cfg model.SimulationConfiguration
	if isYAML(path) {
		cfg, err = ImportYAML(data)
	} else {
		cfg, err = Import(data)
	}
	if err != nil {
		return model.SimulationConfiguration{}, fmt.Errorf("importing %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path as a JSON document. The file is replaced only once
// the new content is fully written.
func Save(path string, cfg model.SimulationConfiguration) error {
	if isYAML(path) {
		return errors.New("documents are exported as JSON only")
	}
	data, err := Export(cfg, time.Now())
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}
