package toolreg

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestMetrics_Record(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := NewMetrics(mp.Meter("toolreg-test"))
	require.NoError(t, err)
	d := newTestDispatcher(t, WithOnAfterInvoke(m.Record))

	d.Invoke(context.Background(), InvocationRequest{Tool: "calculator", Args: map[string]any{"operation": "add", "a": 1.0, "b": 2.0}})
	d.Invoke(context.Background(), InvocationRequest{Tool: "calculator", Args: map[string]any{"operation": "add", "a": 1.0, "b": 2.0}})
	d.Invoke(context.Background(), InvocationRequest{Tool: "calculator"})
	d.Invoke(context.Background(), InvocationRequest{Tool: "missing"})

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	require.Len(t, rm.ScopeMetrics, 1)

	counts := map[string]int64{}
	var histograms int
	for _, md := range rm.ScopeMetrics[0].Metrics {
		switch data := md.Data.(type) {
		case metricdata.Sum[int64]:
			assert.Equal(t, "toolreg.invocations", md.Name)
			for _, dp := range data.DataPoints {
				tool, _ := dp.Attributes.Value(attribute.Key("tool"))
				outcome, _ := dp.Attributes.Value(attribute.Key("outcome"))
				counts[tool.AsString()+"/"+outcome.AsString()] += dp.Value
			}
		case metricdata.Histogram[float64]:
			assert.Equal(t, "toolreg.invocation.duration", md.Name)
			for _, dp := range data.DataPoints {
				histograms += int(dp.Count)
			}
		}
	}
	assert.Equal(t, map[string]int64{
		"calculator/ok":              2,
		"calculator/ValidationError": 1,
		"missing/NotFoundError":      1,
	}, counts)
	assert.Equal(t, 4, histograms)
}
