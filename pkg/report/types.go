// Package report resolves the parameter contract of a Pentaho report into
// canonical, slot-indexed parameters.
package report

import "time"

// CanonicalType is the closed type vocabulary every remote type maps into.
type CanonicalType string

const (
	TypeString   CanonicalType = "string"
	TypeBoolean  CanonicalType = "boolean"
	TypeInteger  CanonicalType = "integer"
	TypeNumber   CanonicalType = "number"
	TypeDate     CanonicalType = "date"
	TypeDateTime CanonicalType = "datetime"
)

// CanonicalTypes lists every canonical type in declaration order.
var CanonicalTypes = []CanonicalType{TypeString, TypeBoolean, TypeInteger, TypeNumber, TypeDate, TypeDateTime}

// Valid reports whether t is a member of the canonical set.
func (t CanonicalType) Valid() bool {
	switch t {
	case TypeString, TypeBoolean, TypeInteger, TypeNumber, TypeDate, TypeDateTime:
		return true
	}
	return false
}

// Temporal reports whether t is Date or DateTime. Temporal parameters are
// always mandatory.
func (t CanonicalType) Temporal() bool {
	return t == TypeDate || t == TypeDateTime
}

// IfFalse returns the value a report variable of type t receives when the
// submission leaves it empty.
func (t CanonicalType) IfFalse() any {
	switch t {
	case TypeBoolean:
		return false
	case TypeInteger:
		return int64(0)
	case TypeNumber:
		return 0.0
	default:
		return ""
	}
}

// Date and time layouts.
const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02 15:04:05"
	// WireLayout is the timestamp format of explicit defaults sent by the
	// reporting server.
	WireLayout = "20060102T15:04:05"
)

// Capacity bounds.
const (
	DefaultMaxParams = 50
	// MaxParamsCeiling keeps the three-digit slot field names stable.
	MaxParamsCeiling = 999
)

// Attribute keys understood on raw parameter records.
const (
	AttrLabel      = "label"
	AttrDataFormat = "data-format"
	AttrHidden     = "hidden"
	AttrFormula    = "default-value-formula"
)

// RawParamRecord is one parameter as described by the reporting server.
type RawParamRecord struct {
	Name         string            `json:"name" yaml:"name"`
	ValueType    string            `json:"value_type" yaml:"value_type"`
	Attributes   map[string]string `json:"attributes" yaml:"attributes"`
	DefaultValue any               `json:"default_value,omitempty" yaml:"default_value,omitempty"`
	IsMandatory  bool              `json:"is_mandatory,omitempty" yaml:"is_mandatory,omitempty"`
}

// Hidden reports whether the record is flagged hidden.
func (r RawParamRecord) Hidden() bool {
	return r.Attributes[AttrHidden] == "true"
}

// Parameter is one resolved, user-facing report input.
type Parameter struct {
	Variable  string        `json:"variable"`
	Label     string        `json:"label"`
	Type      CanonicalType `json:"type"`
	Default   any           `json:"default,omitempty"`
	Mandatory bool          `json:"mandatory"`
	SlotIndex int           `json:"slot_index"`
}

// HasDefault reports whether the parameter carries a default value.
func (p Parameter) HasDefault() bool {
	return p.Default != nil
}

// ParameterSet is the resolved contract of one report definition payload.
type ParameterSet struct {
	ReportID    string      `json:"report_id"`
	Fingerprint string      `json:"fingerprint"`
	Parameters  []Parameter `json:"parameters"`
	ResolvedAt  time.Time   `json:"resolved_at"`
}

// Matches reports whether the set was resolved for reportID and fingerprint.
func (s *ParameterSet) Matches(reportID, fingerprint string) bool {
	return s != nil && s.ReportID == reportID && s.Fingerprint == fingerprint
}

// VariableMap maps report variable names to coerced scalar values.
type VariableMap map[string]any

// Falsy reports whether v counts as an empty submission or default.
func Falsy(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == ""
	case bool:
		return !x
	case int:
		return x == 0
	case int64:
		return x == 0
	case float64:
		return x == 0
	}
	return false
}
