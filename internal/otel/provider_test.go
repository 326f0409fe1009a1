package otel

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

func restoreGlobalMeter(t *testing.T) {
	prev := otel.GetMeterProvider()
	t.Cleanup(func() { otel.SetMeterProvider(prev) })
}

func TestNew_Disabled(t *testing.T) {
	p, err := New(Config{Enabled: false})
	require.NoError(t, err)

	assert.False(t, p.Enabled())
	assert.Nil(t, p.LoggerProvider())
	assert.Equal(t, noop.Meter{}, p.Meter("x"))

	counters, err := p.Counters(context.Background())
	require.NoError(t, err)
	assert.Nil(t, counters)

	assert.NoError(t, p.Flush(context.Background()))
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestNew_EnabledWithoutSink(t *testing.T) {
	_, err := New(Config{Enabled: true, ServiceName: "aimsolver"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no log writer or endpoint")
}

func TestNew_EnabledCollectsCounters(t *testing.T) {
	restoreGlobalMeter(t)

	var buf bytes.Buffer
	p, err := New(Config{
		Enabled:      true,
		ServiceName:  "aimsolver",
		BatchTimeout: time.Second,
		LogWriter:    &buf,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Shutdown(context.Background()) })

	assert.True(t, p.Enabled())
	require.NotNil(t, p.LoggerProvider())

	counter, err := otel.Meter("test").Int64Counter("trajectory.solves")
	require.NoError(t, err)
	ctx := context.Background()
	counter.Add(ctx, 2, metric.WithAttributes(attribute.String("mode", "ANGLE")))
	counter.Add(ctx, 3, metric.WithAttributes(attribute.String("mode", "VELOCITY")))

	counters, err := p.Counters(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), counters["trajectory.solves"])

	assert.NoError(t, p.Flush(ctx))
}
