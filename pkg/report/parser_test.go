package report_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dsasoftware/Pentaho-reports-for-OpenERP/pkg/report"
)

type stubFormulas map[string]any

func (s stubFormulas) Resolve(formula string, _ report.CanonicalType) (any, bool) {
	v, ok := s[formula]
	return v, ok
}

func str(name string, attrs map[string]string) report.RawParamRecord {
	if attrs == nil {
		attrs = map[string]string{}
	}
	return report.RawParamRecord{Name: name, ValueType: "java.lang.String", Attributes: attrs}
}

func TestParse_HiddenAndSlots(t *testing.T) {
	p := report.NewParser(report.DefaultMaxParams, nil)
	params, err := p.Parse([]report.RawParamRecord{
		str("a", map[string]string{"label": "A"}),
		str("secret", map[string]string{"hidden": "true"}),
		str("b", map[string]string{"hidden": "false"}),
		str("c", nil),
	})
	require.NoError(t, err)
	require.Len(t, params, 3)
	for i, want := range []string{"a", "b", "c"} {
		assert.Equal(t, want, params[i].Variable)
		assert.Equal(t, i, params[i].SlotIndex)
	}
	assert.Equal(t, "A", params[0].Label)
	assert.Equal(t, "", params[1].Label)
}

func TestParse_Errors(t *testing.T) {
	p := report.NewParser(report.DefaultMaxParams, nil)

	tests := []struct {
		name string
		recs []report.RawParamRecord
		want error
	}{
		{"missing attributes", []report.RawParamRecord{{Name: "x", ValueType: "java.lang.String"}}, report.ErrMissingAttributes},
		{"missing name", []report.RawParamRecord{str("", nil)}, report.ErrMissingParameterName},
		{"unknown type", []report.RawParamRecord{{Name: "x", ValueType: "java.lang.Object", Attributes: map[string]string{}}}, report.ErrUnknownParameterType},
		{"bad number default", []report.RawParamRecord{{Name: "n", ValueType: "java.lang.Double", Attributes: map[string]string{}, DefaultValue: "abc"}}, report.ErrConversion},
		{"bad date default", []report.RawParamRecord{{Name: "d", ValueType: "java.util.Date", Attributes: map[string]string{}, DefaultValue: "2024-01-01"}}, report.ErrConversion},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Parse(tt.recs)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestParse_UnknownTypeCarriesName(t *testing.T) {
	_, err := report.NewParser(0, nil).Parse([]report.RawParamRecord{
		{Name: "blob", ValueType: "java.sql.Blob", Attributes: map[string]string{}},
	})
	var rerr *report.Error
	require.True(t, errors.As(err, &rerr))
	assert.Equal(t, "blob", rerr.Parameter)
	assert.Equal(t, "java.sql.Blob", rerr.Type)
}

func TestParse_Capacity(t *testing.T) {
	p := report.NewParser(3, nil)
	recs := []report.RawParamRecord{str("a", nil), str("b", nil), str("c", nil)}

	_, err := p.Parse(recs)
	require.NoError(t, err)

	// hidden records do not count
	_, err = p.Parse(append(recs, str("h", map[string]string{"hidden": "true"})))
	require.NoError(t, err)

	_, err = p.Parse(append(recs, str("d", nil)))
	assert.True(t, errors.Is(err, report.ErrTooManyParameters))
}

func TestNewParser_BoundsCapacity(t *testing.T) {
	assert.Equal(t, report.DefaultMaxParams, report.NewParser(0, nil).MaxParams())
	assert.Equal(t, report.DefaultMaxParams, report.NewParser(1000, nil).MaxParams())
	assert.Equal(t, report.MaxParamsCeiling, report.NewParser(999, nil).MaxParams())
}

func TestParse_Mandatory(t *testing.T) {
	params, err := report.NewParser(0, nil).Parse([]report.RawParamRecord{
		str("opt", nil),
		{Name: "req", ValueType: "java.lang.String", Attributes: map[string]string{}, IsMandatory: true},
		{Name: "day", ValueType: "java.util.Date", Attributes: map[string]string{}},
		{Name: "at", ValueType: "java.sql.Timestamp", Attributes: map[string]string{}},
	})
	require.NoError(t, err)
	assert.False(t, params[0].Mandatory)
	assert.True(t, params[1].Mandatory)
	assert.True(t, params[2].Mandatory)
	assert.True(t, params[3].Mandatory)
}

func TestParse_Defaults(t *testing.T) {
	formulas := stubFormulas{"=NOW()": "2024-05-06", "=ZERO()": ""}
	params, err := report.NewParser(0, formulas).Parse([]report.RawParamRecord{
		{Name: "s", ValueType: "java.lang.String", Attributes: map[string]string{}, DefaultValue: "hello"},
		{Name: "n", ValueType: "java.math.BigDecimal", Attributes: map[string]string{}, DefaultValue: "12.5"},
		{Name: "d", ValueType: "java.util.Date", Attributes: map[string]string{}, DefaultValue: "20240131T10:11:12"},
		{Name: "t", ValueType: "java.sql.Timestamp", Attributes: map[string]string{}, DefaultValue: "20240131T10:11:12"},
		{Name: "f", ValueType: "java.util.Date", Attributes: map[string]string{"default-value-formula": "=NOW()"}},
		{Name: "both", ValueType: "java.util.Date", Attributes: map[string]string{"default-value-formula": "=NOW()"}, DefaultValue: "20200101T00:00:00"},
		{Name: "unknown", ValueType: "java.util.Date", Attributes: map[string]string{"default-value-formula": "=TOMORROW()"}},
		{Name: "empty", ValueType: "java.lang.String", Attributes: map[string]string{"default-value-formula": "=ZERO()"}},
		{Name: "none", ValueType: "java.lang.Integer", Attributes: map[string]string{}},
		{Name: "i", ValueType: "java.lang.Integer", Attributes: map[string]string{}, DefaultValue: float64(7)},
	})
	require.NoError(t, err)

	got := map[string]any{}
	for _, p := range params {
		got[p.Variable] = p.Default
	}
	assert.Equal(t, "hello", got["s"])
	assert.Equal(t, 12.5, got["n"])
	assert.Equal(t, "2024-01-31", got["d"])
	assert.Equal(t, "2024-01-31 10:11:12", got["t"])
	assert.Equal(t, "2024-05-06", got["f"])
	assert.Equal(t, "2020-01-01", got["both"], "explicit default wins over formula")
	assert.Nil(t, got["unknown"])
	assert.Nil(t, got["empty"])
	assert.Nil(t, got["none"])
	assert.Equal(t, float64(7), got["i"], "integers pass through until coercion")
}

func TestParse_LabelNormalised(t *testing.T) {
	params, err := report.NewParser(0, nil).Parse([]report.RawParamRecord{
		str("x", map[string]string{"label": "Cafe\u0301"}),
	})
	require.NoError(t, err)
	assert.Equal(t, "Caf\u00e9", params[0].Label)
}

func TestParse_ManyHiddenManySurvivors(t *testing.T) {
	var recs []report.RawParamRecord
	for i := 0; i < 100; i++ {
		attrs := map[string]string{}
		if i%2 == 1 {
			attrs["hidden"] = "true"
		}
		recs = append(recs, str(fmt.Sprintf("p%d", i), attrs))
	}
	params, err := report.NewParser(50, nil).Parse(recs)
	require.NoError(t, err)
	assert.Len(t, params, 50)
	assert.Equal(t, "p98", params[49].Variable)
	assert.Equal(t, 49, params[49].SlotIndex)
}
