package through2

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/kbukum/through2/stream"
)

// recorder captures lifecycle events in delivery order.
type recorder struct {
	mu     sync.Mutex
	events []stream.Event
	errs   []error
}

func record(t *Transform) *recorder {
	r := &recorder{}
	for _, ev := range []stream.Event{stream.EventError, stream.EventClose, stream.EventFinish, stream.EventEnd} {
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

func (r *recorder) snapshot() ([]stream.Event, []error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]stream.Event(nil), r.events...), append([]error(nil), r.errs...)
}

func (r *recorder) count(ev stream.Event) int {
	events, _ := r.snapshot()
	n := 0
	for _, e := range events {
		if e == ev {
			n++
		}
	}
	return n
}

func waitClosed(t *testing.T, tr *Transform) {
	t.Helper()
	select {
	case <-tr.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for close")
	}
}

// collect writes chunks, ends the stream and reads everything back.
func collect(t *testing.T, tr *Transform, chunks ...any) []any {
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

func asString(v any) string {
	switch b := v.(type) {
	case []byte:
		return string(b)
	case string:
		return b
	default:
		return ""
	}
}
