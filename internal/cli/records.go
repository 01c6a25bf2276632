package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrNoRecords is returned for an input that holds no records.
var ErrNoRecords = errors.New("no records found")

// LoadRecords reads patient records from a YAML or JSON file, or from
// stdin when path is "-". The document may be one record, a list of
// records, or an object with a "records" list.
func LoadRecords(path string) ([]map[string]any, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read records: %w", err)
	}
	return ParseRecords(data)
}

// ParseRecords decodes records from YAML or JSON bytes.
func ParseRecords(data []byte) ([]map[string]any, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse records: %w", err)
	}

	if m, ok := doc.(map[string]any); ok {
		list, hasList := m["records"]
		if !hasList {
			return []map[string]any{m}, nil
		}
		doc = list
	}

	list, ok := doc.([]any)
	if !ok {
		if doc == nil {
			return nil, ErrNoRecords
		}
		return nil, fmt.Errorf("records must be an object or a list, got %T", doc)
	}
	if len(list) == 0 {
		return nil, ErrNoRecords
	}

	out := make([]map[string]any, 0, len(list))
	for i, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("record %d must be an object, got %T", i, item)
		}
		out = append(out, m)
	}
	return out, nil
}

// ToRaw re-encodes a decoded record into the form the validator reads.
func ToRaw(rec map[string]any) (map[string]json.RawMessage, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("failed to encode record: %w", err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode record: %w", err)
	}
	return raw, nil
}
