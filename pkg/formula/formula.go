// Package formula evaluates default-value formulas attached to report
// parameters. The baseline vocabulary is "=NOW()"; further tokens may be
// registered as CEL expressions over the variables now (timestamp) and
// param_type (canonical type name).
package formula

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/cel-go/cel"

	"github.com/dsasoftware/Pentaho-reports-for-OpenERP/pkg/report"
)

// Now is the baseline formula token.
const Now = "=NOW()"

type builtin func(now time.Time, t report.CanonicalType) (any, bool)

// Registry resolves formula tokens to default values.
type Registry struct {
	mu       sync.RWMutex
	clock    func() time.Time
	env      *cel.Env
	builtins map[string]builtin
	custom   map[string]cel.Program
	logger   *slog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithClock overrides the time source.
func WithClock(fn func() time.Time) Option {
	return func(r *Registry) { r.clock = fn }
}

// WithLogger sets the registry logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) { r.logger = l }
}

// NewRegistry creates a registry with the baseline vocabulary.
func NewRegistry(opts ...Option) (*Registry, error) {
	env, err := cel.NewEnv(
		cel.Variable("now", cel.TimestampType),
		cel.Variable("param_type", cel.StringType),
	)
	if err != nil {
		return nil, fmt.Errorf("formula: cel env: %w", err)
	}
	r := &Registry{
		clock:    time.Now,
		env:      env,
		builtins: map[string]builtin{Now: resolveNow},
		custom:   make(map[string]cel.Program),
		logger:   slog.Default().With("component", "formula"),
	}
	for _, o := range opts {
		o(r)
	}
	return r, nil
}

func resolveNow(now time.Time, t report.CanonicalType) (any, bool) {
	if !t.Temporal() {
		return nil, false
	}
	return report.FormatTime(now, t), true
}

// Register compiles expr and binds it to token. Builtin tokens cannot be
// replaced.
func (r *Registry) Register(token, expr string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("formula: empty token")
	}
	if _, ok := r.builtins[token]; ok {
		return fmt.Errorf("formula: %q is a builtin token", token)
	}
	ast, issues := r.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return fmt.Errorf("formula: compile %q: %w", token, issues.Err())
	}
	prg, err := r.env.Program(ast)
	if err != nil {
		return fmt.Errorf("formula: program %q: %w", token, err)
	}
	r.mu.Lock()
	r.custom[token] = prg
	r.mu.Unlock()
	return nil
}

// RegisterAll registers every token in exprs.
func (r *Registry) RegisterAll(exprs map[string]string) error {
	for token, expr := range exprs {
		if err := r.Register(token, expr); err != nil {
			return err
		}
	}
	return nil
}

// Tokens returns every recognised token, sorted.
func (r *Registry) Tokens() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tokens := make([]string, 0, len(r.builtins)+len(r.custom))
	for t := range r.builtins {
		tokens = append(tokens, t)
	}
	for t := range r.custom {
		tokens = append(tokens, t)
	}
	sort.Strings(tokens)
	return tokens
}

// Resolve evaluates formula for type t. Unrecognised formulas and failed
// evaluations yield ok == false.
func (r *Registry) Resolve(formula string, t report.CanonicalType) (any, bool) {
	formula = strings.TrimSpace(formula)
	now := r.clock()
	if fn, ok := r.builtins[formula]; ok {
		return fn(now, t)
	}

	r.mu.RLock()
	prg, ok := r.custom[formula]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}

	out, _, err := prg.Eval(map[string]any{"now": now, "param_type": string(t)})
	if err != nil {
		r.logger.Warn("formula evaluation failed", "formula", formula, "type", t, "error", err)
		return nil, false
	}
	return adapt(out.Value(), t)
}

// adapt fits a CEL result to the canonical type, rejecting mismatches.
func adapt(v any, t report.CanonicalType) (any, bool) {
	switch x := v.(type) {
	case time.Time:
		if t.Temporal() {
			return report.FormatTime(x, t), true
		}
	case string:
		switch t {
		case report.TypeString:
			return x, true
		case report.TypeDate:
			_, err := time.Parse(report.DateLayout, x)
			return x, err == nil
		case report.TypeDateTime:
			_, err := time.Parse(report.DateTimeLayout, x)
			return x, err == nil
		}
	case bool:
		return x, t == report.TypeBoolean
	case int64:
		switch t {
		case report.TypeInteger:
			return x, true
		case report.TypeNumber:
			return float64(x), true
		}
	case float64:
		if t == report.TypeNumber {
			return x, true
		}
	}
	return nil, false
}
