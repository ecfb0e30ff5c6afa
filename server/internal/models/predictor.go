package models

import (
	"encoding/json"
	"math"
	"strconv"
)

type valueKind uint8

const (
	kindAbsent valueKind = iota
	kindNumber
	kindText
)

// Value is a single normalized form value: absent, a number, or a string.
// The zero Value is absent.
type Value struct {
	kind valueKind
	num  float64
	text string
}

// Absent returns the "no value" marker.
func Absent() Value { return Value{} }

// Number wraps a parsed numeric value. NaN is allowed.
func Number(f float64) Value { return Value{kind: kindNumber, num: f} }

// Text wraps a string value.
func Text(s string) Value { return Value{kind: kindText, text: s} }

func (v Value) IsAbsent() bool { return v.kind == kindAbsent }

// Float returns the numeric value and whether v holds a number.
func (v Value) Float() (float64, bool) {
	return v.num, v.kind == kindNumber
}

// Str returns the string value and whether v holds a string.
func (v Value) Str() (string, bool) {
	return v.text, v.kind == kindText
}

// IsNaN reports whether v is a number that failed to parse.
func (v Value) IsNaN() bool {
	return v.kind == kindNumber && math.IsNaN(v.num)
}

// MarshalJSON encodes absent and NaN as null, the way a browser serializes them.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case kindNumber:
		if math.IsNaN(v.num) || math.IsInf(v.num, 0) {
			return []byte("null"), nil
		}
		return json.Marshal(v.num)
	case kindText:
		return json.Marshal(v.text)
	default:
		return []byte("null"), nil
	}
}

func (v Value) String() string {
	switch v.kind {
	case kindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case kindText:
		return v.text
	default:
		return "null"
	}
}

// FieldGroup decides how a raw form value is normalized.
type FieldGroup int

const (
	GroupOther FieldGroup = iota
	GroupNumeric
	GroupCategory
	GroupLocation
)

// PredictorFields lists the fields of the outgoing record, in wire order.
var PredictorFields = []string{
	"age", "gcs", "wfns", "htn", "dm", "cvd", "smoke", "famHist", "ruptured",
	"hemiparesis", "ptosis", "seizure", "multiple", "iom", "location", "dome", "neck",
}

var fieldGroups = map[string]FieldGroup{
	"age":  GroupNumeric,
	"gcs":  GroupNumeric,
	"dome": GroupNumeric,
	"neck": GroupNumeric,

	"wfns":        GroupCategory,
	"htn":         GroupCategory,
	"dm":          GroupCategory,
	"cvd":         GroupCategory,
	"smoke":       GroupCategory,
	"famHist":     GroupCategory,
	"ruptured":    GroupCategory,
	"hemiparesis": GroupCategory,
	"ptosis":      GroupCategory,
	"seizure":     GroupCategory,
	"multiple":    GroupCategory,
	"iom":         GroupCategory,
	// daughter is coded like the other flags but is not part of the outgoing record.
	"daughter": GroupCategory,

	"location": GroupLocation,
}

// GroupOf returns the normalization group of a field id.
func GroupOf(fieldID string) FieldGroup {
	return fieldGroups[fieldID]
}

// PredictorRecord is the request body of POST /api/predict. Every field is always
// serialized; absent values become null.
type PredictorRecord struct {
	Age         Value `json:"age"`
	GCS         Value `json:"gcs"`
	WFNS        Value `json:"wfns"`
	HTN         Value `json:"htn"`
	DM          Value `json:"dm"`
	CVD         Value `json:"cvd"`
	Smoke       Value `json:"smoke"`
	FamHist     Value `json:"famHist"`
	Ruptured    Value `json:"ruptured"`
	Hemiparesis Value `json:"hemiparesis"`
	Ptosis      Value `json:"ptosis"`
	Seizure     Value `json:"seizure"`
	Multiple    Value `json:"multiple"`
	IOM         Value `json:"iom"`
	Location    Value `json:"location"`
	Dome        Value `json:"dome"`
	Neck        Value `json:"neck"`
}

// NewPredictorRecord builds a record by asking get for every predictor field.
func NewPredictorRecord(get func(fieldID string) Value) PredictorRecord {
	var r PredictorRecord
	for _, id := range PredictorFields {
		*r.field(id) = get(id)
	}
	return r
}

// Get returns the value of a predictor field, or absent for unknown ids.
func (r *PredictorRecord) Get(fieldID string) Value {
	if f := r.field(fieldID); f != nil {
		return *f
	}
	return Absent()
}

func (r *PredictorRecord) field(id string) *Value {
	switch id {
	case "age":
		return &r.Age
	case "gcs":
		return &r.GCS
	case "wfns":
		return &r.WFNS
	case "htn":
		return &r.HTN
	case "dm":
		return &r.DM
	case "cvd":
		return &r.CVD
	case "smoke":
		return &r.Smoke
	case "famHist":
		return &r.FamHist
	case "ruptured":
		return &r.Ruptured
	case "hemiparesis":
		return &r.Hemiparesis
	case "ptosis":
		return &r.Ptosis
	case "seizure":
		return &r.Seizure
	case "multiple":
		return &r.Multiple
	case "iom":
		return &r.IOM
	case "location":
		return &r.Location
	case "dome":
		return &r.Dome
	case "neck":
		return &r.Neck
	}
	return nil
}
