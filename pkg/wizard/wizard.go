// Package wizard drives the report prompt: it resolves a report's visible
// parameters, renders the input form and turns a submission into a print
// invocation.
package wizard

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	"github.com/dsasoftware/Pentaho-reports-for-OpenERP/pkg/coerce"
	"github.com/dsasoftware/Pentaho-reports-for-OpenERP/pkg/metadata"
	"github.com/dsasoftware/Pentaho-reports-for-OpenERP/pkg/observability"
	"github.com/dsasoftware/Pentaho-reports-for-OpenERP/pkg/printer"
	"github.com/dsasoftware/Pentaho-reports-for-OpenERP/pkg/report"
	"github.com/dsasoftware/Pentaho-reports-for-OpenERP/pkg/schema"
	"github.com/dsasoftware/Pentaho-reports-for-OpenERP/pkg/session"
	"github.com/dsasoftware/Pentaho-reports-for-OpenERP/pkg/store"
)

// Request identifies the wizard session, the report and the context it was
// opened from.
type Request struct {
	SessionID   string
	ServiceName string
	ActiveIDs   []int64
	ActiveModel string

	// Credentials the reporting server uses to query the host database.
	DB       string
	Login    string
	Password string
}

// Wizard implements the report prompt operations.
type Wizard struct {
	sessions *session.Manager
	defs     store.DefinitionStore
	source   metadata.Source
	host     metadata.HostSettings
	printer  printer.Printer
	coercer  *coerce.Coercer
	obs      *observability.Provider
	logger   *slog.Logger
}

// Option configures a Wizard.
type Option func(*Wizard)

// WithPrinter replaces the default ActionPrinter.
func WithPrinter(p printer.Printer) Option {
	return func(w *Wizard) { w.printer = p }
}

// WithHostSettings sets how the reporting server reaches the host application.
func WithHostSettings(h metadata.HostSettings) Option {
	return func(w *Wizard) { w.host = h }
}

// WithObservability attaches tracing and metrics.
func WithObservability(p *observability.Provider) Option {
	return func(w *Wizard) { w.obs = p }
}

// WithLogger sets the wizard logger.
func WithLogger(l *slog.Logger) Option {
	return func(w *Wizard) {
		w.logger = l
		w.coercer = coerce.New(l)
	}
}

// New creates a wizard.
func New(sessions *session.Manager, defs store.DefinitionStore, source metadata.Source, opts ...Option) *Wizard {
	logger := slog.Default().With("component", "wizard")
	w := &Wizard{
		sessions: sessions,
		defs:     defs,
		source:   source,
		printer:  printer.ActionPrinter{},
		coercer:  coerce.New(logger),
		logger:   logger,
	}
	for _, o := range opts {
		o(w)
	}
	if w.obs == nil {
		w.obs, _ = observability.New(context.Background(), &observability.Config{Enabled: false})
	}
	return w
}

type resolved struct {
	def      *store.Definition
	set      *report.ParameterSet
	capacity int
}

// resolve looks up the definition and returns its parameter set, served from
// the session cache while the definition is unchanged.
func (w *Wizard) resolve(ctx context.Context, req Request) (*resolved, error) {
	if req.SessionID == "" {
		return nil, report.SubmissionError("missing session id", nil)
	}
	def, err := w.defs.Lookup(ctx, req.ServiceName)
	if err != nil {
		return nil, err
	}

	fetch := func(ctx context.Context) ([]report.RawParamRecord, error) {
		return w.source.ParameterInfo(ctx, metadata.Request{
			PrptFileContent:    def.Content,
			ConnectionSettings: w.host.Settings(req.DB, req.Login, req.Password),
		})
	}

	out := &resolved{def: def}
	err = w.sessions.With(req.SessionID, func(c *session.Controller) error {
		set, err := c.Resolve(ctx, def.ReportName, session.Fingerprint(def.Content), fetch)
		if err != nil {
			return err
		}
		out.set = set
		out.capacity = c.Parser().MaxParams()
		return nil
	})
	if err != nil {
		return nil, err
	}
	w.obs.RecordParameters(ctx, len(out.set.Parameters), attribute.String("report.service", req.ServiceName))
	return out, nil
}

func (w *Wizard) track(ctx context.Context, op string, req Request) (context.Context, func(error)) {
	return w.obs.TrackOperation(ctx, "wizard."+op,
		attribute.String("report.service", req.ServiceName),
	)
}

// Schema resolves the report and synthesises its field schema.
func (w *Wizard) Schema(ctx context.Context, req Request) (*schema.FieldSchema, error) {
	r, err := w.resolve(ctx, req)
	if err != nil {
		return nil, err
	}
	return schema.Build(r.set.Parameters, r.capacity)
}
