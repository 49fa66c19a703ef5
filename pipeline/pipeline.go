package pipeline

import (
	"context"
	"errors"
	"io"
)

// Iterator provides pull-based sequential access to a stream of values.
// Stream transforms satisfy Iterator[any].
type Iterator[T any] interface {
	// Next returns the next value. Returns (zero, false, nil) when exhausted.
	Next(ctx context.Context) (T, bool, error)
	// Close releases any resources held by the iterator.
	Close() error
}

// Pipeline represents a lazy, pull-based data pipeline.
type Pipeline[T any] struct {
	create func(ctx context.Context) Iterator[T]
}

// Runnable is a fully-configured pipeline ready to execute.
type Runnable struct {
	run func(ctx context.Context) error
}

// Run executes the pipeline until completion or context cancellation.
func (r *Runnable) Run(ctx context.Context) error {
	return r.run(ctx)
}

// --- Constructors ---

// From creates a pipeline from an existing Iterator.
func From[T any](iter Iterator[T]) *Pipeline[T] {
	return &Pipeline[T]{
		create: func(_ context.Context) Iterator[T] {
			return iter
		},
	}
}

// FromSlice creates a pipeline from a slice of values.
func FromSlice[T any](items []T) *Pipeline[T] {
	return &Pipeline[T]{
		create: func(_ context.Context) Iterator[T] {
			return &sliceIter[T]{items: items}
		},
	}
}

// FromFunc creates a pipeline from a factory that produces an Iterator.
func FromFunc[T any](fn func(ctx context.Context) Iterator[T]) *Pipeline[T] {
	return &Pipeline[T]{create: fn}
}

// FromReader creates a pipeline of byte chunks of at most size bytes read
// from r. Each chunk is a fresh slice.
func FromReader(r io.Reader, size int) *Pipeline[[]byte] {
	if size <= 0 {
		size = 32 * 1024
	}
	return &Pipeline[[]byte]{
		create: func(_ context.Context) Iterator[[]byte] {
			return &readerIter{r: r, buf: make([]byte, size)}
		},
	}
}

// Any widens a typed pipeline to Pipeline[any] for use with Through.
func Any[T any](p *Pipeline[T]) *Pipeline[any] {
	return Map(p, func(_ context.Context, v T) (any, error) {
		return v, nil
	})
}

// --- Terminals ---

// Drain creates a Runnable that pulls all values and sends each to sink.
func Drain[T any](p *Pipeline[T], sink func(context.Context, T) error) *Runnable {
	return &Runnable{
		run: func(ctx context.Context) error {
			iter := p.create(ctx)
			defer iter.Close()
			for {
				val, ok, err := iter.Next(ctx)
				if err != nil {
					return err
				}
				if !ok {
					return nil
				}
				if err := sink(ctx, val); err != nil {
					return err
				}
			}
		},
	}
}

// Collect runs the pipeline and returns all values as a slice.
func Collect[T any](ctx context.Context, p *Pipeline[T]) ([]T, error) {
	var out []T
	err := Drain(p, func(_ context.Context, v T) error {
		out = append(out, v)
		return nil
	}).Run(ctx)
	return out, err
}

// ForEach pulls all values and calls fn for each.
func ForEach[T any](ctx context.Context, p *Pipeline[T], fn func(context.Context, T) error) error {
	return Drain(p, fn).Run(ctx)
}

// Copy writes every value of p to w. Values must be []byte or string.
func Copy(ctx context.Context, p *Pipeline[any], w io.Writer) error {
	return Drain(p, func(_ context.Context, v any) error {
		var err error
		switch b := v.(type) {
		case []byte:
			_, err = w.Write(b)
		case string:
			_, err = io.WriteString(w, b)
		default:
			err = ErrNotBytes
		}
		return err
	}).Run(ctx)
}

// ErrNotBytes is returned by Copy for values that are neither []byte nor string.
var ErrNotBytes = errors.New("pipeline: value is not []byte or string")

// Iter returns the raw Iterator for this pipeline. The caller must Close() it.
func (p *Pipeline[T]) Iter(ctx context.Context) Iterator[T] {
	return p.create(ctx)
}

// --- Internal iterators ---

type sliceIter[T any] struct {
	items []T
	index int
}

func (it *sliceIter[T]) Next(_ context.Context) (T, bool, error) {
	if it.index >= len(it.items) {
		var zero T
		return zero, false, nil
	}
	val := it.items[it.index]
	it.index++
	return val, true, nil
}

func (it *sliceIter[T]) Close() error { return nil }

type readerIter struct {
	r   io.Reader
	buf []byte
	eof bool
}

func (it *readerIter) Next(ctx context.Context) ([]byte, bool, error) {
	for !it.eof {
		if err := ctx.Err(); err != nil {
			return nil, false, err
		}
		n, err := it.r.Read(it.buf)
		if errors.Is(err, io.EOF) {
			it.eof = true
		} else if err != nil {
			return nil, false, err
		}
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, it.buf[:n])
			return chunk, true, nil
		}
	}
	return nil, false, nil
}

// Close leaves the reader open; it belongs to the caller.
func (it *readerIter) Close() error { return nil }
