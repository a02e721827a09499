// Package coerce turns submitted slot values into the typed variable map
// handed to the print collaborator.
package coerce

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/dsasoftware/Pentaho-reports-for-OpenERP/pkg/report"
)

// Submission is what the form layer posts back.
type Submission struct {
	OutputFormat report.OutputFormat `json:"output_type"`
	Values       map[int]any         `json:"values"`
}

// Coercer converts submissions into report variables.
type Coercer struct {
	logger *slog.Logger
}

// New creates a Coercer. A nil logger uses the default logger.
func New(logger *slog.Logger) *Coercer {
	if logger == nil {
		logger = slog.Default().With("component", "coerce")
	}
	return &Coercer{logger: logger}
}

// Coerce uses a default Coercer.
func Coerce(params []report.Parameter, submitted map[int]any) (report.VariableMap, error) {
	return New(nil).Coerce(params, submitted)
}

// Coerce reads each parameter's value at its slot. Absent or empty values take
// the type's IfFalse value so every parameter contributes a key; values that
// cannot be converted abort the whole call. Parameters sharing a variable name
// overwrite one another, last slot wins.
func (c *Coercer) Coerce(params []report.Parameter, submitted map[int]any) (report.VariableMap, error) {
	vars := make(report.VariableMap, len(params))
	for _, p := range params {
		raw, present := submitted[p.SlotIndex]
		value := p.Type.IfFalse()
		if present && !report.Falsy(raw) {
			v, err := convert(p, raw)
			if err != nil {
				return nil, err
			}
			value = v
		}
		if _, dup := vars[p.Variable]; dup {
			c.logger.Warn("duplicate report variable overwritten", "variable", p.Variable, "slot", p.SlotIndex)
		}
		vars[p.Variable] = value
	}
	return vars, nil
}

func convert(p report.Parameter, raw any) (any, error) {
	fail := func(cause error) error {
		return report.ConversionError(p.Variable, p.Type, fmt.Sprintf("cannot use %T value", raw), cause)
	}

	switch p.Type {
	case report.TypeString:
		switch v := raw.(type) {
		case string:
			return v, nil
		case json.Number:
			return v.String(), nil
		}
		return nil, fail(nil)

	case report.TypeBoolean:
		switch v := raw.(type) {
		case bool:
			return v, nil
		case string:
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				return nil, fail(err)
			}
			return b, nil
		}
		return nil, fail(nil)

	case report.TypeInteger:
		return toInt(raw, fail)

	case report.TypeNumber:
		switch v := raw.(type) {
		case float64:
			return v, nil
		case int:
			return float64(v), nil
		case int64:
			return float64(v), nil
		case json.Number:
			f, err := v.Float64()
			if err != nil {
				return nil, fail(err)
			}
			return f, nil
		case string:
			f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return nil, fail(err)
			}
			return f, nil
		}
		return nil, fail(nil)

	case report.TypeDate, report.TypeDateTime:
		layout := report.DateLayout
		if p.Type == report.TypeDateTime {
			layout = report.DateTimeLayout
		}
		switch v := raw.(type) {
		case time.Time:
			return report.FormatTime(v, p.Type), nil
		case string:
			ts, err := time.Parse(layout, strings.TrimSpace(v))
			if err != nil {
				return nil, fail(err)
			}
			return report.FormatTime(ts, p.Type), nil
		}
		return nil, fail(nil)
	}
	return nil, &report.Error{Code: report.CodeUnknownParameterType, Parameter: p.Variable, Type: string(p.Type)}
}

func toInt(raw any, fail func(error) error) (any, error) {
	switch v := raw.(type) {
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) {
			return nil, fail(fmt.Errorf("%v is not integral", v))
		}
		// 2^63 is exactly representable; anything at or above it overflows.
		if v < math.MinInt64 || v >= 9.223372036854775808e18 {
			return nil, fail(fmt.Errorf("%v overflows int64", v))
		}
		return int64(v), nil
	case json.Number:
		i, err := v.Int64()
		if err != nil {
			return nil, fail(err)
		}
		return i, nil
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return nil, fail(err)
		}
		return i, nil
	}
	return nil, fail(nil)
}
