package report

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FormulaResolver evaluates a default-value formula for a canonical type.
// ok is false when the formula is not recognised.
type FormulaResolver interface {
	Resolve(formula string, t CanonicalType) (value any, ok bool)
}

// ConvertDefault converts an explicit default value received from the
// reporting server. Numbers parse as decimals and temporal values are
// reformatted from WireLayout; other types pass through unchanged.
func ConvertDefault(param string, t CanonicalType, raw any) (any, error) {
	switch t {
	case TypeNumber:
		f, err := toFloat(raw)
		if err != nil {
			return nil, ConversionError(param, t, "invalid numeric default", err)
		}
		return f, nil
	case TypeDate, TypeDateTime:
		s, ok := raw.(string)
		if !ok {
			return nil, ConversionError(param, t, fmt.Sprintf("default must be a %s timestamp, got %T", WireLayout, raw), nil)
		}
		ts, err := time.Parse(WireLayout, strings.TrimSpace(s))
		if err != nil {
			return nil, ConversionError(param, t, "invalid timestamp default", err)
		}
		return FormatTime(ts, t), nil
	default:
		return raw, nil
	}
}

// FormatTime renders ts in the display layout of a temporal type.
func FormatTime(ts time.Time, t CanonicalType) string {
	if t == TypeDateTime {
		return ts.Format(DateTimeLayout)
	}
	return ts.Format(DateLayout)
}

func toFloat(raw any) (float64, error) {
	switch v := raw.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case json.Number:
		return v.Float64()
	case string:
		return strconv.ParseFloat(strings.TrimSpace(v), 64)
	}
	return 0, fmt.Errorf("unsupported value %T", raw)
}
