package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"

	"github.com/dsasoftware/Pentaho-reports-for-OpenERP/pkg/report"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()
	require.Equal(t, "reportprompt", config.ServiceName)
	require.Equal(t, "localhost:4317", config.OTLPEndpoint)
	require.Equal(t, 1.0, config.SampleRate)
	require.False(t, config.Enabled)
}

func TestNewProviderDisabled(t *testing.T) {
	p, err := New(context.Background(), &Config{Enabled: false})
	require.NoError(t, err)
	require.NotNil(t, p)
	require.NotNil(t, p.Tracer())
	require.NotNil(t, p.Meter())
	require.NoError(t, p.Shutdown(context.Background()))
}

func TestNewProviderNilConfig(t *testing.T) {
	p, err := New(context.Background(), nil)
	require.NoError(t, err)
	require.NotNil(t, p)
}

func TestTrackOperationDisabled(t *testing.T) {
	p, err := New(context.Background(), &Config{Enabled: false})
	require.NoError(t, err)

	ctx, done := p.TrackOperation(context.Background(), "wizard.check_report",
		attribute.String("report.service", "report.sales"))
	require.NotNil(t, ctx)
	done(report.RemoteError("down", nil))

	_, done = p.TrackOperation(context.Background(), "wizard.fields_view")
	done(nil)

	p.RecordParameters(context.Background(), 3)
	p.RecordError(context.Background(), context.Canceled)
}
