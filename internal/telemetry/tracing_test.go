package telemetry

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/cancer-registry-edits/internal/domain"
)

func TestNewProvider(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := NewProvider(exporter, domain.TracingConfig{ServiceName: "registry-edits", SampleRatio: 1}, "1.0.0")

	ctx := context.Background()
	_, span := tp.Tracer("test").Start(ctx, "pipeline.run")
	span.End()
	require.NoError(t, tp.ForceFlush(ctx))

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "pipeline.run", spans[0].Name)

	attrs := spans[0].Resource.Attributes()
	assert.Contains(t, attrs, attribute.String("service.name", "registry-edits"))
	assert.Contains(t, attrs, attribute.String("service.version", "1.0.0"))

	require.NoError(t, tp.Shutdown(ctx))
}

func TestNewProvider_SampleRatioZero(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := NewProvider(exporter, domain.TracingConfig{ServiceName: "registry-edits", SampleRatio: 0}, "1.0.0")

	ctx := context.Background()
	_, span := tp.Tracer("test").Start(ctx, "pipeline.run")
	assert.False(t, span.IsRecording())
	span.End()
	require.NoError(t, tp.ForceFlush(ctx))

	assert.Empty(t, exporter.GetSpans())
}

func TestSetup_Disabled(t *testing.T) {
	before := otel.GetTracerProvider()

	shutdown, err := Setup(context.Background(), domain.TracingConfig{Enabled: false}, "1.0.0", logrus.New())
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
	assert.Equal(t, before, otel.GetTracerProvider())
}
