package through2

import (
	"sync/atomic"

	"github.com/kbukum/through2/stream"
)

// Transform is a stream transform with idempotent, deferred teardown.
type Transform struct {
	*stream.Transform
	destroyed atomic.Bool
}

func newTransform(cfg []stream.Option, transform TransformFunc, flush FlushFunc) *Transform {
	t := &Transform{}
	h := stream.Handlers{Transform: transform, Destroy: t.Destroy}
	if flush != nil {
		h.Flush = flush
	}
	t.Transform = stream.New(h, cfg...)
	return t
}

// Destroy tears the stream down once. On the stream's next turn it emits
// EventError when err is non-nil, then EventClose. Calls after the first do
// nothing.
func (t *Transform) Destroy(err error) {
	if !t.destroyed.CompareAndSwap(false, true) {
		return
	}
	t.Abort(err)
	t.Schedule(func() {
		if err != nil {
			t.Emit(stream.EventError, err)
		}
		t.Emit(stream.EventClose, nil)
	})
}

// Close destroys the stream without an error.
func (t *Transform) Close() error {
	t.Destroy(nil)
	return nil
}

// Destroyed reports whether Destroy has been called.
func (t *Transform) Destroyed() bool {
	return t.destroyed.Load()
}
