package wizard

import (
	"context"

	"github.com/dsasoftware/Pentaho-reports-for-OpenERP/pkg/report"
	"github.com/dsasoftware/Pentaho-reports-for-OpenERP/pkg/schema"
)

// Defaults are the initial form values, keyed by field name.
type Defaults map[string]any

// DefaultGet returns the initial values: the report name, the default output
// type and, per slot, its type, required flag and default value if any.
func (w *Wizard) DefaultGet(ctx context.Context, req Request) (_ Defaults, err error) {
	ctx, done := w.track(ctx, "default_get", req)
	defer func() { done(err) }()

	r, err := w.resolve(ctx, req)
	if err != nil {
		return nil, err
	}

	d := Defaults{
		"report_name": r.def.Name,
		"output_type": string(report.DefaultOutputFormat),
	}
	for _, p := range r.set.Parameters {
		d[schema.FieldName(p.SlotIndex, schema.RoleType, p.Type)] = string(p.Type)
		d[schema.FieldName(p.SlotIndex, schema.RoleRequired, p.Type)] = p.Mandatory
		if p.HasDefault() {
			d[schema.FieldName(p.SlotIndex, schema.RoleValue, p.Type)] = p.Default
		}
	}
	return d, nil
}
