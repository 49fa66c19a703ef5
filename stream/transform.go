package stream

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	goerrors "github.com/kbukum/through2/errors"
	"github.com/kbukum/through2/logger"
)

// Callback completes a transform or flush step. A non-nil err destroys the
// stream with that error; otherwise a non-nil chunk is pushed.
type Callback func(err error, chunk any)

// TransformFunc processes one written chunk. It may push any number of
// chunks through t and must call done exactly once, possibly later and from
// another goroutine.
type TransformFunc func(t *Transform, chunk any, enc string, done Callback)

// FlushFunc runs once after the last chunk has been transformed.
type FlushFunc func(t *Transform, done Callback)

// Handlers are the overridable slots of a Transform.
type Handlers struct {
	// Transform handles each chunk. Nil means PassThrough.
	Transform TransformFunc
	// Flush is optional. Nil means no flush step.
	Flush FlushFunc
	// Destroy replaces the runtime's own teardown. The runtime calls it for
	// processing errors and for auto-destroy.
	Destroy func(err error)
}

// PassThrough forwards each chunk unchanged.
func PassThrough(_ *Transform, chunk any, _ string, done Callback) {
	done(nil, chunk)
}

type pendingWrite struct {
	chunk any
	enc   string
	size  int
}

// Transform is a duplex chunk stream whose output is computed by a
// TransformFunc.
type Transform struct {
	opts        Options
	info        Info
	log         *logger.Logger
	transform   TransformFunc
	flush       FlushFunc
	destroyHook func(error)

	loop      *loop
	done      chan struct{}
	closeOnce sync.Once

	// owned by the loop
	queue    []pendingWrite
	busy     bool
	ending   bool
	flushing bool

	mu           sync.Mutex
	changed      chan struct{}
	listeners    map[Event][]Listener
	writableLen  int
	writeEnded   bool
	readable     []any
	readableLen  int
	readEnded    bool
	endScheduled bool
	stalled      bool
	aborted      bool
	abortErr     error

	readMu  sync.Mutex
	partial []byte
}

// New creates a Transform and starts its loop.
func New(h Handlers, opts ...Option) *Transform {
	o := Resolve(opts...)
	fn := h.Transform
	if fn == nil {
		fn = PassThrough
	}

	t := &Transform{
		opts:        o,
		transform:   fn,
		flush:       h.Flush,
		destroyHook: h.Destroy,
		loop:        newLoop(),
		done:        make(chan struct{}),
		changed:     make(chan struct{}),
		listeners:   make(map[Event][]Listener),
	}
	t.info = Info{ID: uuid.NewString(), Name: o.Name, ObjectMode: o.ObjectMode}
	t.log = o.Logger.WithFields(logger.Fields(
		logger.FieldStreamID, t.info.ID,
		logger.FieldStream, o.Name,
	))

	t.log.Debug("stream created", logger.Fields(
		logger.FieldObjectMode, o.ObjectMode,
		logger.FieldHWM, o.HighWaterMark,
	))
	if o.Observer != nil {
		o.Observer.StreamStarted(t.info)
	}
	return t
}

// Options returns the resolved configuration.
func (t *Transform) Options() Options { return t.opts }

// Info returns the stream's identity.
func (t *Transform) Info() Info { return t.info }

// ID returns the stream's unique identifier.
func (t *Transform) ID() string { return t.info.ID }

// HasFlush reports whether a flush step is installed.
func (t *Transform) HasFlush() bool { return t.flush != nil }

// Done is closed once EventClose has been emitted.
func (t *Transform) Done() <-chan struct{} { return t.done }

// Err returns the error the stream was torn down with, if any.
func (t *Transform) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.abortErr
}

// Aborted reports whether the stream has been torn down.
func (t *Transform) Aborted() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.aborted
}

// ReadableLength returns the buffered readable length.
func (t *Transform) ReadableLength() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.readableLen
}

// Schedule queues fn on the stream's loop. fn never runs before Schedule
// returns. It reports false once the stream has closed.
func (t *Transform) Schedule(fn func()) bool {
	return t.loop.schedule(fn)
}

// --- Writable side ---

// WriteChunk queues chunk for transformation, blocking while the writable
// buffer is at the high-water mark.
func (t *Transform) WriteChunk(ctx context.Context, chunk any) error {
	c, err := t.normalize(chunk)
	if err != nil {
		return err
	}
	size := t.sizeOf(c)

	t.mu.Lock()
	for {
		if t.aborted {
			t.mu.Unlock()
			return goerrors.Destroyed("write")
		}
		if t.writeEnded {
			t.mu.Unlock()
			return goerrors.WriteAfterEnd()
		}
		if !(t.writableLen > 0 && t.writableLen >= t.opts.HighWaterMark) {
			break
		}
		ch := t.changed
		t.mu.Unlock()
		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}
		t.mu.Lock()
	}
	// Queued under mu so a concurrent End cannot schedule ahead of it.
	w := pendingWrite{chunk: c, enc: t.encodingHint(), size: size}
	if !t.loop.schedule(func() {
		t.queue = append(t.queue, w)
		t.advance()
	}) {
		t.mu.Unlock()
		return goerrors.Destroyed("write")
	}
	t.writableLen += size
	t.mu.Unlock()

	if t.opts.Observer != nil {
		t.opts.Observer.ChunkWritten(t.info, size)
	}
	return nil
}

// Write implements io.Writer. p is copied before it is queued.
func (t *Transform) Write(p []byte) (int, error) {
	b := make([]byte, len(p))
	copy(b, p)
	if err := t.WriteChunk(context.Background(), b); err != nil {
		return 0, err
	}
	return len(p), nil
}

// End signals that no more chunks will be written. Calling it again is a no-op.
func (t *Transform) End() error {
	t.mu.Lock()
	if t.aborted {
		t.mu.Unlock()
		return goerrors.Destroyed("end")
	}
	if t.writeEnded {
		t.mu.Unlock()
		return nil
	}
	if !t.loop.schedule(func() {
		t.ending = true
		t.advance()
	}) {
		t.mu.Unlock()
		return goerrors.Destroyed("end")
	}
	t.writeEnded = true
	t.signal()
	t.mu.Unlock()
	return nil
}

// advance starts the next queued chunk, or the flush step once input has
// ended. Runs on the loop.
func (t *Transform) advance() {
	if t.busy || t.flushing {
		return
	}
	t.mu.Lock()
	if t.aborted {
		t.mu.Unlock()
		return
	}
	if len(t.queue) > 0 && t.readableFull() {
		t.stalled = true
		t.mu.Unlock()
		return
	}
	t.mu.Unlock()

	if len(t.queue) == 0 {
		if t.ending {
			t.runFlush()
		}
		return
	}

	w := t.queue[0]
	t.queue[0] = pendingWrite{}
	t.queue = t.queue[1:]
	t.busy = true

	var called atomic.Bool
	t.invoke("transform", func() {
		t.transform(t, w.chunk, w.enc, func(err error, out any) {
			if !called.CompareAndSwap(false, true) {
				t.Destroy(goerrors.MultipleCallback("transform"))
				return
			}
			t.loop.schedule(func() { t.afterTransform(w, err, out) })
		})
	})
}

func (t *Transform) afterTransform(w pendingWrite, err error, out any) {
	t.busy = false
	t.release(w.size)
	if err != nil {
		t.Destroy(err)
		return
	}
	if out != nil {
		t.Push(out)
	}
	t.advance()
}

func (t *Transform) runFlush() {
	t.flushing = true
	if t.flush == nil {
		t.finish()
		return
	}

	var called atomic.Bool
	t.invoke("flush", func() {
		t.flush(t, func(err error, out any) {
			if !called.CompareAndSwap(false, true) {
				t.Destroy(goerrors.MultipleCallback("flush"))
				return
			}
			t.loop.schedule(func() {
				if err != nil {
					t.Destroy(err)
					return
				}
				if out != nil {
					t.Push(out)
				}
				t.log.Debug("flushed")
				t.finish()
			})
		})
	})
}

// finish ends the readable side and emits EventFinish. Runs on the loop.
func (t *Transform) finish() {
	t.mu.Lock()
	if t.aborted {
		t.mu.Unlock()
		return
	}
	t.readEnded = true
	t.signal()
	t.mu.Unlock()

	t.Emit(EventFinish, nil)
}

func (t *Transform) release(size int) {
	t.mu.Lock()
	t.writableLen -= size
	t.signal()
	t.mu.Unlock()
}

// invoke runs caller code, turning a panic into a destroy.
func (t *Transform) invoke(step string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			t.Destroy(goerrors.Internal(fmt.Errorf("%s panicked: %v", step, r)).
				WithDetail("step", step))
		}
	}()
	fn()
}

// --- Teardown ---

// Destroy tears the stream down. It dispatches to the Handlers.Destroy
// override when one was installed, otherwise to Teardown.
func (t *Transform) Destroy(err error) {
	if t.destroyHook != nil {
		t.destroyHook(err)
		return
	}
	t.Teardown(err)
}

// Teardown is the runtime's own destroy: abort, then emit EventError (if err
// is non-nil) and EventClose on a later turn.
func (t *Transform) Teardown(err error) {
	t.Abort(err)
	t.Schedule(func() {
		if err != nil {
			t.Emit(EventError, err)
		}
		t.Emit(EventClose, nil)
	})
}

// Abort marks the stream torn down, drops buffered data and wakes blocked
// readers and writers. It emits nothing. It reports false if the stream was
// already aborted.
func (t *Transform) Abort(err error) bool {
	t.mu.Lock()
	if t.aborted {
		t.mu.Unlock()
		return false
	}
	t.aborted = true
	t.abortErr = err
	t.readable = nil
	t.readableLen = 0
	t.signal()
	t.mu.Unlock()

	if err != nil {
		t.log.WithError(err).Debug("stream aborted")
	} else {
		t.log.Debug("stream aborted")
	}
	return true
}

// --- helpers ---

// signal wakes every goroutine waiting on a state change. Caller holds mu.
func (t *Transform) signal() {
	close(t.changed)
	t.changed = make(chan struct{})
}

// readableFull reports whether the readable buffer reached the high-water
// mark. Caller holds mu.
func (t *Transform) readableFull() bool {
	return t.readableLen > 0 && t.readableLen >= t.opts.HighWaterMark
}

func (t *Transform) normalize(chunk any) (any, error) {
	if chunk == nil {
		return nil, goerrors.NullChunk()
	}
	if t.opts.ObjectMode {
		return chunk, nil
	}
	switch c := chunk.(type) {
	case []byte:
		return c, nil
	case string:
		return []byte(c), nil
	default:
		return nil, goerrors.InvalidChunk(chunk)
	}
}

func (t *Transform) sizeOf(chunk any) int {
	if t.opts.ObjectMode {
		return 1
	}
	return len(chunk.([]byte))
}

func (t *Transform) encodingHint() string {
	if t.opts.ObjectMode {
		return t.opts.Encoding
	}
	return EncodingBuffer
}

func (t *Transform) fields(ev Event) map[string]interface{} {
	return logger.Fields(logger.FieldEvent, string(ev))
}
