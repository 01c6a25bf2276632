// Package features turns a clinical record into the fixed-order numeric
// vector the trained model expects.
package features

import (
	"encoding/json"
	"fmt"
)

// Input field names, as sent by clients.
const (
	FieldAge            = "Age"
	FieldSex            = "Sex"
	FieldChestPainType  = "ChestPainType"
	FieldRestingBP      = "RestingBP"
	FieldCholesterol    = "Cholesterol"
	FieldFastingBS      = "FastingBS"
	FieldRestingECG     = "RestingECG"
	FieldMaxHR          = "MaxHR"
	FieldExerciseAngina = "ExerciseAngina"
	FieldOldpeak        = "Oldpeak"
	FieldSTSlope        = "ST_Slope"
)

// RequiredFields lists every input field in the order errors report them.
var RequiredFields = []string{
	FieldAge, FieldSex, FieldChestPainType, FieldRestingBP, FieldCholesterol,
	FieldFastingBS, FieldRestingECG, FieldMaxHR, FieldExerciseAngina,
	FieldOldpeak, FieldSTSlope,
}

// NumericFields are copied into their slot unchanged.
var NumericFields = []string{
	FieldAge, FieldRestingBP, FieldCholesterol, FieldFastingBS, FieldMaxHR, FieldOldpeak,
}

// IsNumeric reports whether the named field carries a number.
func IsNumeric(field string) bool {
	for _, f := range NumericFields {
		if f == field {
			return true
		}
	}
	return false
}

// Record is one typed clinical record.
type Record struct {
	Age            float64 `json:"Age" yaml:"Age"`
	Sex            string  `json:"Sex" yaml:"Sex"`
	ChestPainType  string  `json:"ChestPainType" yaml:"ChestPainType"`
	RestingBP      float64 `json:"RestingBP" yaml:"RestingBP"`
	Cholesterol    float64 `json:"Cholesterol" yaml:"Cholesterol"`
	FastingBS      float64 `json:"FastingBS" yaml:"FastingBS"`
	RestingECG     string  `json:"RestingECG" yaml:"RestingECG"`
	MaxHR          float64 `json:"MaxHR" yaml:"MaxHR"`
	ExerciseAngina string  `json:"ExerciseAngina" yaml:"ExerciseAngina"`
	Oldpeak        float64 `json:"Oldpeak" yaml:"Oldpeak"`
	STSlope        string  `json:"ST_Slope" yaml:"ST_Slope"`
}

func (r *Record) numeric(field string) float64 {
	switch field {
	case FieldAge:
		return r.Age
	case FieldRestingBP:
		return r.RestingBP
	case FieldCholesterol:
		return r.Cholesterol
	case FieldFastingBS:
		return r.FastingBS
	case FieldMaxHR:
		return r.MaxHR
	case FieldOldpeak:
		return r.Oldpeak
	}
	return 0
}

func (r *Record) category(field string) string {
	switch field {
	case FieldSex:
		return r.Sex
	case FieldChestPainType:
		return r.ChestPainType
	case FieldRestingECG:
		return r.RestingECG
	case FieldExerciseAngina:
		return r.ExerciseAngina
	case FieldSTSlope:
		return r.STSlope
	}
	return ""
}

// FieldTypeError reports a present field whose JSON value has the wrong type.
type FieldTypeError struct {
	Field string
	Want  string
}

func (e *FieldTypeError) Error() string {
	return fmt.Sprintf("field %s must be a %s", e.Field, e.Want)
}

// DecodeField decodes one raw value into the slot of rec named by field.
func DecodeField(rec *Record, field string, raw json.RawMessage) error {
	if IsNumeric(field) {
		var n float64
		if err := json.Unmarshal(raw, &n); err != nil {
			return &FieldTypeError{Field: field, Want: "number"}
		}
		switch field {
		case FieldAge:
			rec.Age = n
		case FieldRestingBP:
			rec.RestingBP = n
		case FieldCholesterol:
			rec.Cholesterol = n
		case FieldFastingBS:
			rec.FastingBS = n
		case FieldMaxHR:
			rec.MaxHR = n
		case FieldOldpeak:
			rec.Oldpeak = n
		}
		return nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return &FieldTypeError{Field: field, Want: "string"}
	}
	switch field {
	case FieldSex:
		rec.Sex = s
	case FieldChestPainType:
		rec.ChestPainType = s
	case FieldRestingECG:
		rec.RestingECG = s
	case FieldExerciseAngina:
		rec.ExerciseAngina = s
	case FieldSTSlope:
		rec.STSlope = s
	default:
		return fmt.Errorf("unknown field %s", field)
	}
	return nil
}

// DecodeRecord converts a raw body into a Record. Every required field must
// be present; callers are expected to have reported missing fields already.
func DecodeRecord(raw map[string]json.RawMessage) (Record, error) {
	var rec Record
	for _, field := range RequiredFields {
		v, ok := raw[field]
		if !ok {
			return Record{}, fmt.Errorf("field %s is missing", field)
		}
		if err := DecodeField(&rec, field, v); err != nil {
			return Record{}, err
		}
	}
	return rec, nil
}
