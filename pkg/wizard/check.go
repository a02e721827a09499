package wizard

import (
	"context"
	"fmt"

	"github.com/dsasoftware/Pentaho-reports-for-OpenERP/pkg/coerce"
	"github.com/dsasoftware/Pentaho-reports-for-OpenERP/pkg/printer"
	"github.com/dsasoftware/Pentaho-reports-for-OpenERP/pkg/report"
	"github.com/dsasoftware/Pentaho-reports-for-OpenERP/pkg/schema"
)

// CheckReport coerces a submission against the resolved parameters, records
// the chosen output type and hands the invocation to the printer.
func (w *Wizard) CheckReport(ctx context.Context, req Request, sub coerce.Submission) (_ *printer.Action, err error) {
	ctx, done := w.track(ctx, "check_report", req)
	defer func() { done(err) }()

	r, err := w.resolve(ctx, req)
	if err != nil {
		return nil, err
	}
	return w.print(ctx, req, r, sub)
}

// CheckReportJSON validates a raw JSON submission against the report's
// submission schema before printing.
func (w *Wizard) CheckReportJSON(ctx context.Context, req Request, body []byte) (_ *printer.Action, err error) {
	ctx, done := w.track(ctx, "check_report", req)
	defer func() { done(err) }()

	r, err := w.resolve(ctx, req)
	if err != nil {
		return nil, err
	}
	fs, err := schema.Build(r.set.Parameters, r.capacity)
	if err != nil {
		return nil, err
	}
	v, err := coerce.NewValidator(fs)
	if err != nil {
		return nil, err
	}
	sub, err := v.Decode(body)
	if err != nil {
		return nil, err
	}
	return w.print(ctx, req, r, sub)
}

func (w *Wizard) print(ctx context.Context, req Request, r *resolved, sub coerce.Submission) (*printer.Action, error) {
	format := sub.OutputFormat
	if format == "" {
		format = report.DefaultOutputFormat
	}
	if !format.Valid() {
		return nil, report.SubmissionError(fmt.Sprintf("unsupported output type %q", format), nil)
	}

	vars, err := w.coercer.Coerce(r.set.Parameters, sub.Values)
	if err != nil {
		return nil, err
	}

	if err := w.defs.SetOutputType(ctx, r.def.ID, format); err != nil {
		return nil, err
	}

	model := req.ActiveModel
	if model == "" {
		model = printer.DefaultTargetModel
	}
	action, err := w.printer.Print(ctx, req.ServiceName, printer.Invocation{
		TargetRecordIDs: req.ActiveIDs,
		TargetModel:     model,
		OutputFormat:    format,
		Variables:       vars,
	})
	if err != nil {
		return nil, err
	}
	w.logger.InfoContext(ctx, "report invocation issued",
		"service", req.ServiceName,
		"output_type", format,
		"variables", len(vars),
		"target_records", len(req.ActiveIDs),
	)
	return action, nil
}
