package schema

import (
	"encoding/json"
	"strconv"

	"github.com/dsasoftware/Pentaho-reports-for-OpenERP/pkg/report"
)

// SubmissionSchemaURL identifies the emitted submission schema.
const SubmissionSchemaURL = "https://reportprompt.local/schemas/submission.schema.json"

func valueSchema(t report.CanonicalType) map[string]any {
	switch t {
	case report.TypeBoolean:
		return map[string]any{"type": []string{"boolean", "null"}}
	case report.TypeInteger:
		return map[string]any{"type": []string{"integer", "null"}}
	case report.TypeNumber:
		return map[string]any{"type": []string{"number", "null"}}
	case report.TypeDate:
		return map[string]any{"type": []string{"string", "null"}, "pattern": `^(\d{4}-\d{2}-\d{2})?$`}
	case report.TypeDateTime:
		return map[string]any{"type": []string{"string", "null"}, "pattern": `^(\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2})?$`}
	default:
		return map[string]any{"type": []string{"string", "null"}}
	}
}

// SubmissionSchema returns a draft 2020-12 JSON Schema describing a valid
// submission: an output format and a values object keyed by slot index.
// Neither output_type nor any slot is required; an absent format means the
// default format and absent values fall back to the type's empty value.
func (fs *FieldSchema) SubmissionSchema() map[string]any {
	formats := make([]string, 0, len(report.OutputFormats))
	for _, o := range report.OutputFormats {
		formats = append(formats, string(o.Format))
	}

	values := make(map[string]any, len(fs.Slots))
	for _, d := range fs.Slots {
		s := valueSchema(d.Type)
		if d.Label != "" {
			s["title"] = d.Label
		}
		values[strconv.Itoa(d.SlotIndex)] = s
	}

	return map[string]any{
		"$schema": "https://json-schema.org/draft/2020-12/schema",
		"$id":     SubmissionSchemaURL,
		"type":    "object",
		"properties": map[string]any{
			"output_type": map[string]any{"enum": formats},
			"values": map[string]any{
				"type":                 "object",
				"properties":           values,
				"additionalProperties": false,
			},
		},
	}
}

// SubmissionSchemaJSON renders SubmissionSchema as JSON.
func (fs *FieldSchema) SubmissionSchemaJSON() ([]byte, error) {
	return json.Marshal(fs.SubmissionSchema())
}
