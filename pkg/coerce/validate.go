package coerce

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/dsasoftware/Pentaho-reports-for-OpenERP/pkg/report"
	"github.com/dsasoftware/Pentaho-reports-for-OpenERP/pkg/schema"
)

// Validator checks raw JSON submissions against a field schema.
type Validator struct {
	fields   *schema.FieldSchema
	compiled *jsonschema.Schema
}

// NewValidator compiles the submission schema of fs.
func NewValidator(fs *schema.FieldSchema) (*Validator, error) {
	raw, err := fs.SubmissionSchemaJSON()
	if err != nil {
		return nil, fmt.Errorf("coerce: render submission schema: %w", err)
	}
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	if err := c.AddResource(schema.SubmissionSchemaURL, bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("coerce: load submission schema: %w", err)
	}
	compiled, err := c.Compile(schema.SubmissionSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("coerce: compile submission schema: %w", err)
	}
	return &Validator{fields: fs, compiled: compiled}, nil
}

// Decode validates a JSON submission body and converts it into a Submission.
// Values may be keyed by slot index ("0") or by positional value field name
// ("param_000_string_value"), but not both for the same slot.
func (v *Validator) Decode(body []byte) (Submission, error) {
	var doc any
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return Submission{}, report.SubmissionError("malformed submission body", err)
	}
	obj, ok := doc.(map[string]any)
	if !ok {
		return Submission{}, report.SubmissionError("submission must be a JSON object", nil)
	}
	if values, ok := obj["values"].(map[string]any); ok {
		normalised, err := v.normaliseKeys(values)
		if err != nil {
			return Submission{}, err
		}
		obj["values"] = normalised
	}
	if err := v.compiled.Validate(obj); err != nil {
		return Submission{}, report.SubmissionError("submission does not match parameter schema", err)
	}

	sub := Submission{Values: map[int]any{}}
	if f, ok := obj["output_type"].(string); ok {
		sub.OutputFormat = report.OutputFormat(f)
	}
	if values, ok := obj["values"].(map[string]any); ok {
		for k, val := range values {
			slot, err := strconv.Atoi(k)
			if err != nil {
				return Submission{}, report.SubmissionError(fmt.Sprintf("invalid slot key %q", k), err)
			}
			sub.Values[slot] = val
		}
	}
	return sub, nil
}

// normaliseKeys rewrites value field names to slot keys. The field's type
// suffix must match the slot's type.
func (v *Validator) normaliseKeys(values map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(values))
	for k, val := range values {
		if slot, role, t, ok := schema.ParseFieldName(k); ok && role == schema.RoleValue {
			d, found := v.fields.Slot(slot)
			if !found {
				return nil, report.SubmissionError(fmt.Sprintf("field %q names no active slot", k), nil)
			}
			if d.Type != t {
				return nil, report.SubmissionError(fmt.Sprintf("field %q does not match slot type %q", k, d.Type), nil)
			}
			k = strconv.Itoa(slot)
		}
		if _, dup := out[k]; dup {
			return nil, report.SubmissionError(fmt.Sprintf("slot %s given more than once", k), nil)
		}
		out[k] = val
	}
	return out, nil
}
