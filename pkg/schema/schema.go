// Package schema synthesizes the declarative, slot-indexed field schema a form
// renderer needs to prompt for report parameters. Field names are positional so
// the renderer and the coercer agree on identity without seeing variable names.
package schema

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dsasoftware/Pentaho-reports-for-OpenERP/pkg/report"
)

// Role distinguishes the three fields generated per slot.
type Role string

const (
	RoleType     Role = "type"
	RoleRequired Role = "req"
	RoleValue    Role = "value"
)

// Kind is the native field kind a renderer should use.
type Kind string

const (
	KindChar     Kind = "char"
	KindBoolean  Kind = "boolean"
	KindInteger  Kind = "integer"
	KindFloat    Kind = "float"
	KindDate     Kind = "date"
	KindDatetime Kind = "datetime"
)

type valueSpec struct {
	suffix string
	kind   Kind
	label  string
	size   int
}

var valueSpecs = map[report.CanonicalType]valueSpec{
	report.TypeString:   {"string", KindChar, "String Value", 64},
	report.TypeBoolean:  {"boolean", KindBoolean, "Boolean Value", 0},
	report.TypeInteger:  {"integer", KindInteger, "Integer Value", 0},
	report.TypeNumber:   {"number", KindFloat, "Number Value", 0},
	report.TypeDate:     {"date", KindDate, "Date Value", 0},
	report.TypeDateTime: {"time", KindDatetime, "Time Value", 0},
}

// typeFieldSize fits the longest canonical type name.
var typeFieldSize = func() int {
	n := 0
	for _, t := range report.CanonicalTypes {
		n = max(n, len(t))
	}
	return n
}()

// Field describes one generated form field.
type Field struct {
	Name  string `json:"name"`
	Kind  Kind   `json:"type"`
	Label string `json:"string"`
	Size  int    `json:"size,omitempty"`
}

// SlotFields holds the three fields of one slot.
type SlotFields struct {
	Type     Field `json:"type"`
	Required Field `json:"required"`
	Value    Field `json:"value"`
}

// Descriptor is the rendering contract for one parameter.
type Descriptor struct {
	SlotIndex    int                  `json:"slot_index"`
	Type         report.CanonicalType `json:"canonical_type"`
	Label        string               `json:"label"`
	Required     bool                 `json:"required"`
	DefaultValue any                  `json:"default_value,omitempty"`
	FocusInitial bool                 `json:"focus_initial"`
	Fields       SlotFields           `json:"fields"`
}

// FieldSchema is the ordered, capacity-bounded descriptor list.
type FieldSchema struct {
	Capacity int          `json:"capacity"`
	Slots    []Descriptor `json:"slots"`
}

// FieldName returns the positional name of a slot field. For RoleValue the
// canonical type selects the value field.
func FieldName(slot int, role Role, t report.CanonicalType) string {
	if role == RoleValue {
		return fmt.Sprintf("param_%03d_%s_value", slot, valueSpecs[t].suffix)
	}
	return fmt.Sprintf("param_%03d_%s", slot, role)
}

// ParseFieldName splits a positional field name into slot and role. For value
// fields the canonical type is returned as well.
func ParseFieldName(name string) (slot int, role Role, t report.CanonicalType, ok bool) {
	rest, found := strings.CutPrefix(name, "param_")
	if !found || len(rest) < 5 || rest[3] != '_' {
		return 0, "", "", false
	}
	for _, c := range rest[:3] {
		if c < '0' || c > '9' {
			return 0, "", "", false
		}
	}
	slot, _ = strconv.Atoi(rest[:3])
	switch suffix := rest[4:]; suffix {
	case string(RoleType):
		return slot, RoleType, "", true
	case string(RoleRequired):
		return slot, RoleRequired, "", true
	default:
		kind, found := strings.CutSuffix(suffix, "_value")
		if !found {
			return 0, "", "", false
		}
		for ct, spec := range valueSpecs {
			if spec.suffix == kind {
				return slot, RoleValue, ct, true
			}
		}
	}
	return 0, "", "", false
}

func slotFields(slot int, t report.CanonicalType) SlotFields {
	spec := valueSpecs[t]
	return SlotFields{
		Type:     Field{Name: FieldName(slot, RoleType, t), Kind: KindChar, Label: "Parameter Type", Size: typeFieldSize},
		Required: Field{Name: FieldName(slot, RoleRequired, t), Kind: KindBoolean, Label: "Parameter Required"},
		Value:    Field{Name: FieldName(slot, RoleValue, t), Kind: spec.kind, Label: spec.label, Size: spec.size},
	}
}

// Build synthesizes the schema for params, which must already carry
// contiguous slot indices. It never emits more slots than capacity.
func Build(params []report.Parameter, capacity int) (*FieldSchema, error) {
	if capacity < 1 || capacity > report.MaxParamsCeiling {
		return nil, fmt.Errorf("schema: capacity %d outside [1, %d]", capacity, report.MaxParamsCeiling)
	}
	if len(params) > capacity {
		return nil, &report.Error{
			Code:   report.CodeTooManyParameters,
			Detail: fmt.Sprintf("%d parameters exceed schema capacity %d", len(params), capacity),
		}
	}

	fs := &FieldSchema{Capacity: capacity, Slots: make([]Descriptor, 0, len(params))}
	for i, p := range params {
		if p.SlotIndex != i {
			return nil, fmt.Errorf("schema: parameter %q has slot %d at position %d", p.Variable, p.SlotIndex, i)
		}
		if !p.Type.Valid() {
			return nil, &report.Error{Code: report.CodeUnknownParameterType, Parameter: p.Variable, Type: string(p.Type)}
		}
		fs.Slots = append(fs.Slots, Descriptor{
			SlotIndex:    i,
			Type:         p.Type,
			Label:        p.Label,
			Required:     p.Mandatory,
			DefaultValue: p.Default,
			FocusInitial: i == 0,
			Fields:       slotFields(i, p.Type),
		})
	}
	return fs, nil
}

// Slot returns the descriptor at index i.
func (fs *FieldSchema) Slot(i int) (Descriptor, bool) {
	if i < 0 || i >= len(fs.Slots) {
		return Descriptor{}, false
	}
	return fs.Slots[i], true
}

// Declared enumerates the full, fixed field shape for capacity slots: the
// type and required fields plus one value field per canonical type. Renderers
// that need a static model declare these once and use only the active slots.
func Declared(capacity int) []Field {
	fields := make([]Field, 0, capacity*(2+len(report.CanonicalTypes)))
	for slot := 0; slot < capacity; slot++ {
		sf := slotFields(slot, report.TypeString)
		fields = append(fields, sf.Type, sf.Required)
		for _, t := range report.CanonicalTypes {
			fields = append(fields, slotFields(slot, t).Value)
		}
	}
	return fields
}
