package artifact

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrSchemaInconsistent reports a feature schema that cannot be served, either
// because it is malformed or because it disagrees with the other artifacts.
var ErrSchemaInconsistent = errors.New("feature schema inconsistent")

// Schema is the ordered list of feature slot names the scaler and classifier
// were fit on. The order is authoritative.
type Schema []string

// Len returns the number of slots.
func (s Schema) Len() int { return len(s) }

// Index returns the position of the named slot, or -1.
func (s Schema) Index(name string) int {
	for i, n := range s {
		if n == name {
			return i
		}
	}
	return -1
}

// Validate checks that every slot is named and unique.
func (s Schema) Validate() error {
	if len(s) == 0 {
		return fmt.Errorf("%w: no columns", ErrSchemaInconsistent)
	}
	seen := make(map[string]struct{}, len(s))
	for i, name := range s {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("%w: column %d is empty", ErrSchemaInconsistent, i)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("%w: duplicate column %q", ErrSchemaInconsistent, name)
		}
		seen[name] = struct{}{}
	}
	return nil
}

// ParseSchema decodes a columns artifact. Both a bare JSON array and an
// object of the form {"columns": [...]} are accepted.
func ParseSchema(data []byte) (Schema, error) {
	var cols []string
	if err := json.Unmarshal(data, &cols); err != nil {
		var wrapped struct {
			Columns []string `json:"columns"`
		}
		if err2 := json.Unmarshal(data, &wrapped); err2 != nil {
			return nil, fmt.Errorf("decode columns: %w", err)
		}
		cols = wrapped.Columns
	}
	schema := Schema(cols)
	if err := schema.Validate(); err != nil {
		return nil, err
	}
	return schema, nil
}
