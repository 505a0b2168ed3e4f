package telemetry

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.34.0"
)

func TestNewResource_MergesWithDefault(t *testing.T) {
	res, err := newResource("pbcli-test")
	require.NoError(t, err)

	assert.Equal(t, resource.Default().SchemaURL(), res.SchemaURL())
	name, ok := res.Set().Value(semconv.ServiceNameKey)
	require.True(t, ok)
	assert.Equal(t, "pbcli-test", name.AsString())
}

func TestInit_ExportsMetricsToRegistry(t *testing.T) {
	prevMeter := otel.GetMeterProvider()
	prevTracer := otel.GetTracerProvider()
	t.Cleanup(func() {
		otel.SetMeterProvider(prevMeter)
		otel.SetTracerProvider(prevTracer)
	})

	reg := promclient.NewRegistry()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	shutdown, err := Init(context.Background(), Config{ServiceName: "pbcli-test", Registerer: reg}, logger)
	require.NoError(t, err)

	counter, err := otel.Meter("telemetry-test").Int64Counter("pbcli_test_ops")
	require.NoError(t, err)
	counter.Add(context.Background(), 3)

	families, err := reg.Gather()
	require.NoError(t, err)

	found := false
	for _, mf := range families {
		if strings.HasPrefix(mf.GetName(), "pbcli_test_ops") {
			found = true
			require.NotEmpty(t, mf.GetMetric())
			assert.Equal(t, 3.0, mf.GetMetric()[0].GetCounter().GetValue())
		}
	}
	assert.True(t, found, "counter not exported")

	assert.NoError(t, shutdown(context.Background()))
}

func TestInit_TracerProviderOnlyWithEndpoint(t *testing.T) {
	prevMeter := otel.GetMeterProvider()
	prevTracer := otel.GetTracerProvider()
	t.Cleanup(func() {
		otel.SetMeterProvider(prevMeter)
		otel.SetTracerProvider(prevTracer)
	})

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	shutdown, err := Init(context.Background(), Config{
		ServiceName: "pbcli-test",
		Registerer:  promclient.NewRegistry(),
	}, logger)
	require.NoError(t, err)

	assert.Equal(t, prevTracer, otel.GetTracerProvider())
	assert.NoError(t, shutdown(context.Background()))
}
