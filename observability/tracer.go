package observability

import (
	"context"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"

	goerrors "github.com/kbukum/through2/errors"
	"github.com/kbukum/through2/logger"
	"github.com/kbukum/through2/stream"
)

// TracerConfig configures the OpenTelemetry tracer provider.
type TracerConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string
	Insecure bool
	// SampleRate is the sampling rate (0.0 to 1.0).
	SampleRate float64
}

// DefaultTracerConfig returns defaults for a local collector.
func DefaultTracerConfig(serviceName string) TracerConfig {
	return TracerConfig{
		ServiceName:    serviceName,
		ServiceVersion: "dev",
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		SampleRate:     1.0,
	}
}

// InitTracer installs a global tracer provider exporting over OTLP HTTP.
// Shut the returned provider down on exit to flush pending spans.
func InitTracer(ctx context.Context, cfg TracerConfig) (*sdktrace.TracerProvider, error) {
	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}

	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating trace exporter: %w", err)
	}

	res, err := newResource(cfg.ServiceName, cfg.ServiceVersion, cfg.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler(cfg.SampleRate)),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	logger.Get("observability").Info("tracer initialized", logger.Fields(
		"service", cfg.ServiceName,
		"endpoint", cfg.Endpoint,
		"sample_rate", cfg.SampleRate,
	))
	return tp, nil
}

func sampler(rate float64) sdktrace.Sampler {
	switch {
	case rate >= 1.0:
		return sdktrace.AlwaysSample()
	case rate <= 0:
		return sdktrace.NeverSample()
	default:
		return sdktrace.TraceIDRatioBased(rate)
	}
}

func newResource(serviceName, serviceVersion, environment string) (*resource.Resource, error) {
	return resource.Merge(
		resource.Default(),
		resource.NewSchemaless(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
			attribute.String("environment", environment),
		),
	)
}

// Tracer returns a named tracer from the global provider.
func Tracer(name string) trace.Tracer {
	return otel.Tracer(name)
}

// Span and attribute names used by StreamTracer.
const (
	SpanStream     = "stream"
	AttrStreamID   = "stream.id"
	AttrChunksIn   = "stream.chunks.in"
	AttrChunksOut  = "stream.chunks.out"
)

// StreamTracer records one span per stream, from start until close.
type StreamTracer struct {
	tracer trace.Tracer

	mu    sync.Mutex
	spans map[string]*streamSpan
}

type streamSpan struct {
	span      trace.Span
	chunksIn  int64
	chunksOut int64
	errored   bool
}

var _ stream.Observer = (*StreamTracer)(nil)

// NewStreamTracer creates a StreamTracer on tracer.
func NewStreamTracer(tracer trace.Tracer) *StreamTracer {
	return &StreamTracer{tracer: tracer, spans: make(map[string]*streamSpan)}
}

func (s *StreamTracer) StreamStarted(info stream.Info) {
	name := SpanStream
	if info.Name != "" {
		name += " " + info.Name
	}
	_, span := s.tracer.Start(context.Background(), name, trace.WithAttributes(
		attribute.String(AttrStreamID, info.ID),
		attribute.String(AttrStreamName, info.Name),
		attribute.String(AttrStreamMode, mode(info)),
	))

	s.mu.Lock()
	s.spans[info.ID] = &streamSpan{span: span}
	s.mu.Unlock()
}

func (s *StreamTracer) ChunkWritten(info stream.Info, _ int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ss := s.spans[info.ID]; ss != nil {
		ss.chunksIn++
	}
}

func (s *StreamTracer) ChunkPushed(info stream.Info, _ int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ss := s.spans[info.ID]; ss != nil {
		ss.chunksOut++
	}
}

func (s *StreamTracer) EventEmitted(info stream.Info, ev stream.Event, err error) {
	s.mu.Lock()
	ss := s.spans[info.ID]
	if ss == nil {
		s.mu.Unlock()
		return
	}
	if ev == stream.EventClose {
		delete(s.spans, info.ID)
	}
	if ev == stream.EventError {
		ss.errored = true
	}
	in, out, errored := ss.chunksIn, ss.chunksOut, ss.errored
	s.mu.Unlock()

	switch ev {
	case stream.EventError:
		ss.span.RecordError(err, trace.WithAttributes(attribute.String(AttrErrorCode, errorCode(err))))
		ss.span.SetStatus(codes.Error, err.Error())
	case stream.EventClose:
		ss.span.SetAttributes(
			attribute.Int64(AttrChunksIn, in),
			attribute.Int64(AttrChunksOut, out),
		)
		if !errored {
			ss.span.SetStatus(codes.Ok, "")
		}
		ss.span.End()
	default:
		ss.span.AddEvent(string(ev))
	}
}

// Active returns the number of streams with an open span.
func (s *StreamTracer) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.spans)
}

func errorCode(err error) string {
	if app, ok := goerrors.AsAppError(err); ok {
		return string(app.Code)
	}
	return "UNKNOWN"
}
