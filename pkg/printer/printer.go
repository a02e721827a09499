// Package printer hands a resolved report invocation to the rendering
// backend.
package printer

import (
	"context"
	"fmt"

	"github.com/dsasoftware/Pentaho-reports-for-OpenERP/pkg/report"
)

// DefaultTargetModel is used when the caller does not name the model the
// report runs against.
const DefaultTargetModel = "ir.ui.menu"

// ActionType is the client action type that triggers report rendering.
const ActionType = "ir.actions.report.xml"

// Invocation is everything the renderer needs to produce a report.
type Invocation struct {
	TargetRecordIDs []int64             `json:"ids"`
	TargetModel     string              `json:"model"`
	OutputFormat    report.OutputFormat `json:"output_type"`
	Variables       report.VariableMap  `json:"variables"`
}

// Action is the client action that starts rendering.
type Action struct {
	Type       string     `json:"type"`
	ReportName string     `json:"report_name"`
	Datas      Invocation `json:"datas"`
}

// Printer renders or schedules a report.
type Printer interface {
	Print(ctx context.Context, serviceName string, inv Invocation) (*Action, error)
}

// ActionPrinter answers with a report action for the client to execute.
type ActionPrinter struct{}

func (ActionPrinter) Print(_ context.Context, serviceName string, inv Invocation) (*Action, error) {
	if serviceName == "" {
		return nil, fmt.Errorf("printer: empty service name")
	}
	if !inv.OutputFormat.Valid() {
		return nil, report.SubmissionError(fmt.Sprintf("unsupported output type %q", inv.OutputFormat), nil)
	}
	if inv.TargetModel == "" {
		inv.TargetModel = DefaultTargetModel
	}
	if inv.Variables == nil {
		inv.Variables = report.VariableMap{}
	}
	return &Action{Type: ActionType, ReportName: serviceName, Datas: inv}, nil
}

// Recorder captures invocations, for tests and dry runs.
type Recorder struct {
	Printer     Printer
	Invocations []Invocation
}

func (r *Recorder) Print(ctx context.Context, serviceName string, inv Invocation) (*Action, error) {
	r.Invocations = append(r.Invocations, inv)
	p := r.Printer
	if p == nil {
		p = ActionPrinter{}
	}
	return p.Print(ctx, serviceName, inv)
}
