package formula

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dsasoftware/Pentaho-reports-for-OpenERP/pkg/report"
)

var fixedNow = time.Date(2024, 3, 9, 14, 5, 6, 0, time.UTC)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	r, err := NewRegistry(WithClock(func() time.Time { return fixedNow }))
	require.NoError(t, err)
	return r
}

func TestResolve_Now(t *testing.T) {
	r := newTestRegistry(t)

	v, ok := r.Resolve("=NOW()", report.TypeDate)
	require.True(t, ok)
	assert.Equal(t, "2024-03-09", v)

	v, ok = r.Resolve(" =NOW() ", report.TypeDateTime)
	require.True(t, ok)
	assert.Equal(t, "2024-03-09 14:05:06", v)

	_, ok = r.Resolve("=NOW()", report.TypeString)
	assert.False(t, ok, "NOW has no meaning for non-temporal types")
}

func TestResolve_NowUsesWallClock(t *testing.T) {
	r, err := NewRegistry()
	require.NoError(t, err)
	v, ok := r.Resolve(Now, report.TypeDate)
	require.True(t, ok)
	assert.Equal(t, time.Now().Format(report.DateLayout), v)
}

func TestResolve_Unrecognised(t *testing.T) {
	r := newTestRegistry(t)
	for _, f := range []string{"", "NOW()", "=now()", "=TODAY()", "=DATE(2024;1;1)"} {
		_, ok := r.Resolve(f, report.TypeDate)
		assert.False(t, ok, f)
	}
}

func TestRegister_CEL(t *testing.T) {
	r := newTestRegistry(t)
	require.NoError(t, r.RegisterAll(map[string]string{
		"=YESTERDAY()":  `now - duration("24h")`,
		"=QUARTER()":    `now.getMonth() / 3 + 1`,
		"=REGION()":     `"EMEA"`,
		"=FLAG()":       `param_type == "boolean"`,
		"=RATE()":       `1.5`,
		"=START()":      `"2024-01-01"`,
		"=BAD_DIVIDE()": `1 / 0`,
	}))

	v, ok := r.Resolve("=YESTERDAY()", report.TypeDate)
	require.True(t, ok)
	assert.Equal(t, "2024-03-08", v)

	v, ok = r.Resolve("=QUARTER()", report.TypeInteger)
	require.True(t, ok)
	assert.Equal(t, int64(1), v)

	v, ok = r.Resolve("=QUARTER()", report.TypeNumber)
	require.True(t, ok)
	assert.Equal(t, 1.0, v)

	v, ok = r.Resolve("=REGION()", report.TypeString)
	require.True(t, ok)
	assert.Equal(t, "EMEA", v)

	v, ok = r.Resolve("=FLAG()", report.TypeBoolean)
	require.True(t, ok)
	assert.Equal(t, true, v)

	v, ok = r.Resolve("=RATE()", report.TypeNumber)
	require.True(t, ok)
	assert.Equal(t, 1.5, v)

	v, ok = r.Resolve("=START()", report.TypeDate)
	require.True(t, ok)
	assert.Equal(t, "2024-01-01", v)

	_, ok = r.Resolve("=START()", report.TypeDateTime)
	assert.False(t, ok, "date string does not fit datetime layout")

	_, ok = r.Resolve("=REGION()", report.TypeInteger)
	assert.False(t, ok, "type mismatch resolves to no default")

	_, ok = r.Resolve("=BAD_DIVIDE()", report.TypeInteger)
	assert.False(t, ok, "runtime errors resolve to no default")

	assert.Equal(t, []string{"=BAD_DIVIDE()", "=FLAG()", "=NOW()", "=QUARTER()", "=RATE()", "=REGION()", "=START()", "=YESTERDAY()"}, r.Tokens())
}

func TestRegister_Errors(t *testing.T) {
	r := newTestRegistry(t)
	assert.Error(t, r.Register("", "now"))
	assert.Error(t, r.Register(Now, "now"))
	assert.Error(t, r.Register("=BROKEN()", "now +"))
	assert.Error(t, r.Register("=UNDECLARED()", "tomorrow"))
}
