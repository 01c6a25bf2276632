package features

import (
	"fmt"
	"strings"

	"github.com/TimurManjosov/heartcheck/internal/artifact"
)

// Vector is a dense feature vector ordered by the schema it was encoded for.
type Vector []float64

// categorical describes a one-hot encoded field. Encoded categories each own a
// slot named Field_Category; the reference category owns none.
type categorical struct {
	Field     string
	Encoded   []string
	Reference string
}

var categoricals = []categorical{
	{Field: FieldSex, Encoded: []string{"M"}, Reference: "F"},
	{Field: FieldChestPainType, Encoded: []string{"ATA", "NAP", "TA"}, Reference: "ASY"},
	{Field: FieldRestingECG, Encoded: []string{"Normal", "ST"}, Reference: "LVH"},
	{Field: FieldExerciseAngina, Encoded: []string{"Y"}, Reference: "N"},
	{Field: FieldSTSlope, Encoded: []string{"Flat", "Up"}, Reference: "Down"},
}

// Categories returns every accepted value of a categorical field, reference
// category last, or nil for non-categorical fields.
func Categories(field string) []string {
	for _, c := range categoricals {
		if c.Field == field {
			return append(append([]string{}, c.Encoded...), c.Reference)
		}
	}
	return nil
}

// SlotNames returns every slot the encoding rules produce: numeric fields
// first, then one-hot slots in declaration order. This is the order the
// model was trained with.
func SlotNames() []string {
	names := append([]string{}, NumericFields...)
	for _, c := range categoricals {
		for _, cat := range c.Encoded {
			names = append(names, oneHotSlot(c.Field, cat))
		}
	}
	return names
}

func oneHotSlot(field, category string) string { return field + "_" + category }

// CategoryError reports a categorical value that is not one of the known
// categories for its field.
type CategoryError struct {
	Field string
	Value string
}

func (e *CategoryError) Error() string {
	return fmt.Sprintf("invalid value %q for %s: must be one of %s",
		e.Value, e.Field, strings.Join(Categories(e.Field), ", "))
}

// slot says how one schema position is filled.
type slot struct {
	field    string
	category string // empty for numeric passthrough
}

// Encoder fills vectors in the order of a fixed schema.
type Encoder struct {
	schema artifact.Schema
	slots  []slot
}

// NewEncoder binds the encoding rules to schema. Every schema slot must be
// produced by exactly one rule and every rule must land in the schema;
// anything else means the artifacts and this code disagree.
func NewEncoder(schema artifact.Schema) (*Encoder, error) {
	if err := schema.Validate(); err != nil {
		return nil, err
	}

	rules := make(map[string]slot)
	for _, f := range NumericFields {
		rules[f] = slot{field: f}
	}
	for _, c := range categoricals {
		for _, cat := range c.Encoded {
			rules[oneHotSlot(c.Field, cat)] = slot{field: c.Field, category: cat}
		}
	}

	if schema.Len() != len(rules) {
		return nil, fmt.Errorf("%w: schema has %d columns, encoder produces %d",
			artifact.ErrSchemaInconsistent, schema.Len(), len(rules))
	}

	slots := make([]slot, schema.Len())
	for i, name := range schema {
		s, ok := rules[name]
		if !ok {
			return nil, fmt.Errorf("%w: no encoding rule for column %q", artifact.ErrSchemaInconsistent, name)
		}
		slots[i] = s
	}

	cols := make(artifact.Schema, schema.Len())
	copy(cols, schema)
	return &Encoder{schema: cols, slots: slots}, nil
}

// Len is the width of every vector this encoder produces.
func (e *Encoder) Len() int { return len(e.slots) }

// Encode maps rec onto the schema. It is a pure function of rec.
func (e *Encoder) Encode(rec Record) (Vector, error) {
	if err := checkCategories(&rec); err != nil {
		return nil, err
	}

	v := make(Vector, len(e.slots))
	for i, s := range e.slots {
		if s.category == "" {
			v[i] = rec.numeric(s.field)
			continue
		}
		if rec.category(s.field) == s.category {
			v[i] = 1
		}
	}
	return v, nil
}

func checkCategories(rec *Record) error {
	for _, c := range categoricals {
		value := rec.category(c.Field)
		if value == c.Reference {
			continue
		}
		known := false
		for _, cat := range c.Encoded {
			if value == cat {
				known = true
				break
			}
		}
		if !known {
			return &CategoryError{Field: c.Field, Value: value}
		}
	}
	return nil
}
