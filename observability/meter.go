package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/through2/logger"
	"github.com/kbukum/through2/stream"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string
	Insecure bool
	// Interval is the metric export interval.
	Interval time.Duration
}

// DefaultMeterConfig returns defaults for a local collector.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: "dev",
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter installs a global meter provider exporting over OTLP HTTP.
// Shut the returned provider down on exit to flush pending metrics.
func InitMeter(ctx context.Context, cfg MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(cfg.ServiceName, cfg.ServiceVersion, cfg.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	var readerOpts []sdkmetric.PeriodicReaderOption
	if cfg.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(cfg.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)

	logger.Get("observability").Info("meter initialized", logger.Fields(
		"service", cfg.ServiceName,
		"endpoint", cfg.Endpoint,
		"interval", cfg.Interval.String(),
	))
	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Attribute keys attached to stream telemetry.
const (
	AttrStreamName = "stream.name"
	AttrStreamMode = "stream.mode"
	AttrEvent      = "stream.event"
	AttrErrorCode  = "error.code"
)

// StreamMetrics records stream throughput and lifecycle counters.
type StreamMetrics struct {
	chunksIn  metric.Int64Counter
	chunksOut metric.Int64Counter
	bytesIn   metric.Int64Counter
	bytesOut  metric.Int64Counter
	events    metric.Int64Counter
	errors    metric.Int64Counter
	active    metric.Int64UpDownCounter
}

var _ stream.Observer = (*StreamMetrics)(nil)

// NewStreamMetrics creates the stream instruments on meter.
func NewStreamMetrics(meter metric.Meter) (*StreamMetrics, error) {
	var (
		m   StreamMetrics
		err error
	)
	counters := []struct {
		dst  *metric.Int64Counter
		name string
		desc string
		unit string
	}{
		{&m.chunksIn, "stream.chunks.in", "Chunks written to streams", "{chunk}"},
		{&m.chunksOut, "stream.chunks.out", "Chunks pushed by streams", "{chunk}"},
		{&m.bytesIn, "stream.bytes.in", "Bytes written to byte-mode streams", "By"},
		{&m.bytesOut, "stream.bytes.out", "Bytes pushed by byte-mode streams", "By"},
		{&m.events, "stream.events", "Lifecycle events emitted", "{event}"},
		{&m.errors, "stream.errors", "Streams torn down with an error", "{error}"},
	}
	for _, c := range counters {
		*c.dst, err = meter.Int64Counter(c.name, metric.WithDescription(c.desc), metric.WithUnit(c.unit))
		if err != nil {
			return nil, fmt.Errorf("creating %s counter: %w", c.name, err)
		}
	}

	m.active, err = meter.Int64UpDownCounter("stream.active",
		metric.WithDescription("Streams started and not yet closed"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating stream.active counter: %w", err)
	}
	return &m, nil
}

func (m *StreamMetrics) StreamStarted(info stream.Info) {
	m.active.Add(context.Background(), 1, streamAttrs(info))
}

func (m *StreamMetrics) ChunkWritten(info stream.Info, size int) {
	m.record(m.chunksIn, m.bytesIn, info, size)
}

func (m *StreamMetrics) ChunkPushed(info stream.Info, size int) {
	m.record(m.chunksOut, m.bytesOut, info, size)
}

func (m *StreamMetrics) EventEmitted(info stream.Info, ev stream.Event, err error) {
	ctx := context.Background()
	m.events.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrStreamName, info.Name),
		attribute.String(AttrEvent, string(ev)),
	))
	switch ev {
	case stream.EventError:
		m.errors.Add(ctx, 1, metric.WithAttributes(
			attribute.String(AttrStreamName, info.Name),
			attribute.String(AttrErrorCode, errorCode(err)),
		))
	case stream.EventClose:
		m.active.Add(ctx, -1, streamAttrs(info))
	}
}

func (m *StreamMetrics) record(chunks, bytes metric.Int64Counter, info stream.Info, size int) {
	ctx := context.Background()
	attrs := streamAttrs(info)
	chunks.Add(ctx, 1, attrs)
	if !info.ObjectMode {
		bytes.Add(ctx, int64(size), attrs)
	}
}

func streamAttrs(info stream.Info) metric.MeasurementOption {
	return metric.WithAttributes(
		attribute.String(AttrStreamName, info.Name),
		attribute.String(AttrStreamMode, mode(info)),
	)
}

func mode(info stream.Info) string {
	if info.ObjectMode {
		return "object"
	}
	return "bytes"
}
