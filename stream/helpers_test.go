package stream

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"
)

type recorder struct {
	mu     sync.Mutex
	events []Event
	errs   []error
}

func record(t *Transform) *recorder {
	r := &recorder{}
	for _, ev := range []Event{EventError, EventClose, EventFinish, EventEnd} {
		t.On(ev, func(err error) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.events = append(r.events, ev)
			if err != nil {
				r.errs = append(r.errs, err)
			}
		})
	}
	return r
}

func (r *recorder) snapshot() ([]Event, []error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...), append([]error(nil), r.errs...)
}

func waitDone(t *testing.T, tr *Transform) {
	t.Helper()
	select {
	case <-tr.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for close")
	}
}

// drain writes chunks, ends the stream and returns everything read back.
func drain(t *testing.T, tr *Transform, chunks ...any) []any {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	writeErr := make(chan error, 1)
	go func() {
		for _, c := range chunks {
			if err := tr.WriteChunk(ctx, c); err != nil {
				writeErr <- err
				return
			}
		}
		writeErr <- tr.End()
	}()

	var out []any
	for {
		v, ok, err := tr.Next(ctx)
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		if !ok {
			break
		}
		out = append(out, v)
	}
	if err := <-writeErr; err != nil {
		t.Fatalf("write: %v", err)
	}
	return out
}

// syncBuffer is a bytes.Buffer safe for the loop goroutine to write to.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
