package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestInit_Disabled(t *testing.T) {
	shutdown, err := Init(context.Background(), Config{})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

// counterValues суммы счетчика по значению атрибута key
func counterValues(t *testing.T, reader *sdkmetric.ManualReader, name, key string) map[string]int64 {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	values := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			for _, dp := range sum.DataPoints {
				v, _ := dp.Attributes.Value(attribute.Key(key))
				values[v.AsString()] += dp.Value
			}
		}
	}
	return values
}

func TestInstruments(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	inst, err := NewInstruments(provider.Meter(ScopeName))
	require.NoError(t, err)

	ctx := context.Background()
	inst.EventLogged(ctx, "water")
	inst.EventLogged(ctx, "water")
	inst.EventLogged(ctx, "food")
	inst.ExternalFailure(ctx, "weather")
	inst.DialogCompleted(ctx, "profile")

	assert.Equal(t, map[string]int64{"water": 2, "food": 1}, counterValues(t, reader, "events_logged_total", "kind"))
	assert.Equal(t, map[string]int64{"weather": 1}, counterValues(t, reader, "external_failures_total", "dependency"))
	assert.Equal(t, map[string]int64{"profile": 1}, counterValues(t, reader, "dialogs_completed_total", "kind"))
}
