package stream

import (
	"github.com/kbukum/through2/logger"
)

const (
	// DefaultObjectHighWaterMark is the buffering threshold in object mode, in items.
	DefaultObjectHighWaterMark = 16
	// DefaultByteHighWaterMark is the buffering threshold in byte mode, in bytes.
	DefaultByteHighWaterMark = 16 * 1024
)

// Encoding names understood by the readable side in byte mode.
const (
	EncodingBuffer = "buffer"
	EncodingUTF8   = "utf8"
	EncodingHex    = "hex"
	EncodingBase64 = "base64"
)

// Options is the resolved configuration of a Transform.
type Options struct {
	// ObjectMode carries arbitrary values instead of byte slices.
	ObjectMode bool
	// HighWaterMark is the buffering threshold of each side. Counted in items
	// in object mode and in bytes otherwise.
	HighWaterMark int
	// Encoding decodes readable byte chunks into strings. In object mode it
	// is only passed through to the transform function as the encoding hint.
	Encoding string
	// AutoDestroy destroys the stream once its readable side has ended.
	AutoDestroy bool
	// Name labels the stream in logs and telemetry.
	Name string
	// Logger receives lifecycle logs. Defaults to logger.Get("stream").
	Logger *logger.Logger
	// Observer receives telemetry callbacks. Optional.
	Observer Observer

	hwmSet bool
}

// Option configures a Transform.
type Option func(*Options)

// WithObjectMode switches the stream between object and byte mode.
func WithObjectMode(on bool) Option {
	return func(o *Options) { o.ObjectMode = on }
}

// WithHighWaterMark sets the buffering threshold.
func WithHighWaterMark(n int) Option {
	return func(o *Options) {
		o.HighWaterMark = n
		o.hwmSet = true
	}
}

// WithEncoding sets the readable encoding.
func WithEncoding(enc string) Option {
	return func(o *Options) { o.Encoding = enc }
}

// WithAutoDestroy toggles destroying the stream after its readable side ends.
func WithAutoDestroy(on bool) Option {
	return func(o *Options) { o.AutoDestroy = on }
}

// WithName labels the stream.
func WithName(name string) Option {
	return func(o *Options) { o.Name = name }
}

// WithLogger sets the lifecycle logger.
func WithLogger(l *logger.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// WithObserver attaches a telemetry observer.
func WithObserver(obs Observer) Option {
	return func(o *Options) { o.Observer = obs }
}

// Resolve applies opts in order over the defaults. A later option for the
// same key wins.
func Resolve(opts ...Option) Options {
	o := Options{AutoDestroy: true}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if !o.hwmSet || o.HighWaterMark < 0 {
		if o.ObjectMode {
			o.HighWaterMark = DefaultObjectHighWaterMark
		} else {
			o.HighWaterMark = DefaultByteHighWaterMark
		}
	}
	if o.Logger == nil {
		o.Logger = logger.Get("stream")
	}
	return o
}
