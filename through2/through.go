package through2

import "github.com/kbukum/through2/stream"

type (
	// TransformFunc processes one chunk; see stream.TransformFunc.
	TransformFunc = stream.TransformFunc
	// FlushFunc produces trailing output; see stream.FlushFunc.
	FlushFunc = stream.FlushFunc
)

// Construct builds a T from a normalized configuration, transform and flush.
// transform is never nil; flush is nil when no flush step was given.
type Construct[T any] func(cfg []stream.Option, transform TransformFunc, flush FlushFunc) T

// Factory exposes a Construct strategy through the three call shapes.
type Factory[T any] struct {
	construct Construct[T]
}

// Through wraps construct in a Factory.
func Through[T any](construct Construct[T]) Factory[T] {
	return Factory[T]{construct: construct}
}

// New builds from configuration, transform and flush. Any of them may be nil.
func (f Factory[T]) New(cfg []stream.Option, transform TransformFunc, flush FlushFunc) T {
	return f.normalize(cfg, transform, flush)
}

// Funcs builds from a transform and a flush with empty configuration.
func (f Factory[T]) Funcs(transform TransformFunc, flush FlushFunc) T {
	return f.normalize(nil, transform, flush)
}

// Func builds from a transform alone.
func (f Factory[T]) Func(transform TransformFunc) T {
	return f.normalize(nil, transform, nil)
}

func (f Factory[T]) normalize(cfg []stream.Option, transform TransformFunc, flush FlushFunc) T {
	if cfg == nil {
		cfg = []stream.Option{}
	}
	if transform == nil {
		transform = stream.PassThrough
	}
	return f.construct(cfg, transform, flush)
}
