package report_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dsasoftware/Pentaho-reports-for-OpenERP/pkg/report"
)

func TestMapType(t *testing.T) {
	tests := []struct {
		remote string
		hint   string
		want   report.CanonicalType
	}{
		{"java.lang.String", "", report.TypeString},
		{"java.lang.Boolean", "", report.TypeBoolean},
		{"java.lang.Number", "", report.TypeNumber},
		{"java.lang.Double", "", report.TypeNumber},
		{"java.lang.Float", "", report.TypeNumber},
		{"java.math.BigDecimal", "", report.TypeNumber},
		{"java.lang.Integer", "", report.TypeInteger},
		{"java.lang.Long", "", report.TypeInteger},
		{"java.lang.Short", "", report.TypeInteger},
		{"java.math.BigInteger", "", report.TypeInteger},
		{"java.sql.Time", "", report.TypeDateTime},
		{"java.sql.Timestamp", "yyyy-MM-dd", report.TypeDateTime},
		{"java.util.Date", "", report.TypeDate},
		{"java.util.Date", "yyyy-MM-dd", report.TypeDate},
		{"java.util.Date", "yyyy-MM-dd HH:mm:ss", report.TypeDateTime},
		{"java.sql.Date", "dd/MM/yyyy", report.TypeDate},
		{"java.sql.Date", "dd/MM/yyyy hh:mm a", report.TypeDateTime},
	}
	for _, tt := range tests {
		t.Run(tt.remote+"/"+tt.hint, func(t *testing.T) {
			got, err := report.MapType(tt.remote, tt.hint)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMapType_Unknown(t *testing.T) {
	_, err := report.MapType("java.lang.Object", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, report.ErrUnknownParameterType))
	assert.Contains(t, err.Error(), "java.lang.Object")
}

func TestRemoteTypeNames_CoverTable(t *testing.T) {
	names := report.RemoteTypeNames()
	assert.Len(t, names, 14)
	assert.IsNonDecreasing(t, names)
	for _, name := range names {
		got, err := report.MapType(name, "")
		require.NoError(t, err, name)
		assert.True(t, got.Valid(), name)
	}
}

func TestCanonicalType_IfFalse(t *testing.T) {
	assert.Equal(t, "", report.TypeString.IfFalse())
	assert.Equal(t, false, report.TypeBoolean.IfFalse())
	assert.Equal(t, int64(0), report.TypeInteger.IfFalse())
	assert.Equal(t, 0.0, report.TypeNumber.IfFalse())
	assert.Equal(t, "", report.TypeDate.IfFalse())
	assert.Equal(t, "", report.TypeDateTime.IfFalse())
}
