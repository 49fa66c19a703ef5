package pipeline_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	goerrors "github.com/kbukum/through2/errors"
	"github.com/kbukum/through2/pipeline"
	"github.com/kbukum/through2/stream"
	"github.com/kbukum/through2/through2"
)

func addOne(_ *stream.Transform, chunk any, _ string, done stream.Callback) {
	n := chunk.(int)
	done(nil, n+1)
}

func TestThrough_ObjectStage(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	src := pipeline.Any(pipeline.FromSlice([]int{1, 2, 3}))
	out := pipeline.Through(src, func() pipeline.Stage {
		return through2.Obj.Func(addOne)
	})
	got, err := pipeline.Collect(ctx, out)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 || got[0] != 2 || got[1] != 3 || got[2] != 4 {
		t.Errorf("got %v, want [2 3 4]", got)
	}
}

func TestThrough_Chained(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	src := pipeline.Any(pipeline.FromSlice([]int{10}))
	once := pipeline.Through(src, func() pipeline.Stage { return through2.Obj.Func(addOne) })
	twice := pipeline.Through(once, func() pipeline.Stage { return through2.Obj.Func(addOne) })
	got, err := pipeline.Collect(ctx, twice)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != 12 {
		t.Errorf("got %v, want [12]", got)
	}
}

func TestThrough_ManyItemsUnderBackpressure(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	items := make([]int, 200)
	for i := range items {
		items[i] = i
	}
	out := pipeline.Through(pipeline.Any(pipeline.FromSlice(items)), func() pipeline.Stage {
		return through2.Obj.New([]stream.Option{stream.WithHighWaterMark(2)}, addOne, nil)
	})
	got, err := pipeline.Collect(ctx, out)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(items) {
		t.Fatalf("expected %d items, got %d", len(items), len(got))
	}
	for i, v := range got {
		if v != i+1 {
			t.Fatalf("item %d: got %v, want %d", i, v, i+1)
		}
	}
}

func TestThrough_ByteStage(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	src := pipeline.Any(pipeline.FromReader(strings.NewReader("hello world"), 64))
	out := pipeline.Through(src, func() pipeline.Stage {
		return through2.Default.Func(func(_ *stream.Transform, chunk any, _ string, done stream.Callback) {
			done(nil, string(chunk.([]byte))+" add string")
		})
	})
	var buf bytes.Buffer
	if err := pipeline.Copy(ctx, out, &buf); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "hello world add string" {
		t.Errorf("got %q", buf.String())
	}
}

func TestThrough_TransformErrorReachesReader(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	boom := errors.New("boom")
	src := pipeline.Any(pipeline.FromSlice([]int{1, 2, 3}))
	out := pipeline.Through(src, func() pipeline.Stage {
		return through2.Obj.Func(func(_ *stream.Transform, chunk any, _ string, done stream.Callback) {
			if chunk.(int) == 2 {
				done(boom, nil)
				return
			}
			done(nil, chunk)
		})
	})
	_, err := pipeline.Collect(ctx, out)
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
}

func TestThrough_UpstreamErrorReachesReader(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	upstream := errors.New("upstream failed")
	src := pipeline.Map(pipeline.FromSlice([]int{1, 2}), func(_ context.Context, n int) (any, error) {
		if n == 2 {
			return nil, upstream
		}
		return n, nil
	})
	out := pipeline.Through(src, func() pipeline.Stage { return through2.Obj.Func(nil) })
	_, err := pipeline.Collect(ctx, out)
	if !errors.Is(err, upstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}
}

func TestThrough_RejectedWriteReachesReader(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	src := pipeline.Any(pipeline.FromSlice([]int{1}))
	out := pipeline.Through(src, func() pipeline.Stage { return through2.New(nil, nil, nil) })
	_, err := pipeline.Collect(ctx, out)
	if !goerrors.HasCode(err, goerrors.ErrCodeInvalidChunk) {
		t.Fatalf("expected INVALID_CHUNK, got %v", err)
	}
	if ctx.Err() != nil {
		t.Fatal("collect waited for the deadline")
	}
}
