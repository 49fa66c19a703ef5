package stream

import (
	"bytes"
	"context"
	"io"
	"reflect"
	"testing"
	"time"

	goerrors "github.com/kbukum/through2/errors"
)

func TestPush_StallsWhileReadableFull(t *testing.T) {
	more := make(chan bool, 4)
	tr := New(Handlers{Transform: func(s *Transform, chunk any, _ string, done Callback) {
		more <- s.Push(chunk)
		done(nil, nil)
	}}, WithObjectMode(true), WithHighWaterMark(1))
	defer tr.Close()
	ctx := context.Background()

	_ = tr.WriteChunk(ctx, 1)
	if <-more {
		t.Error("expected Push to report a full buffer")
	}
	_ = tr.WriteChunk(ctx, 2)

	select {
	case <-more:
		t.Fatal("transform ran while the readable buffer was full")
	case <-time.After(50 * time.Millisecond):
	}
	if n := tr.ReadableLength(); n != 1 {
		t.Errorf("expected one buffered chunk, got %d", n)
	}

	if c, _, _ := tr.Next(ctx); c != 1 {
		t.Errorf("got %v", c)
	}
	select {
	case <-more:
	case <-time.After(5 * time.Second):
		t.Fatal("transform did not resume after read")
	}
	if c, _, _ := tr.Next(ctx); c != 2 {
		t.Errorf("got %v", c)
	}
}

func TestPush_NilReportsRoom(t *testing.T) {
	tr := New(Handlers{}, WithObjectMode(true), WithHighWaterMark(1))
	if !tr.Push(nil) {
		t.Error("expected room in an empty buffer")
	}
	tr.Push("x")
	if tr.Push(nil) {
		t.Error("expected no room in a full buffer")
	}
	if tr.ReadableLength() != 1 {
		t.Errorf("nil push must not buffer anything")
	}
	tr.Close()
	if tr.Push(nil) {
		t.Error("expected no room once torn down")
	}
}

func TestPush_AfterEndDestroys(t *testing.T) {
	tr := New(Handlers{}, WithObjectMode(true), WithAutoDestroy(false))
	rec := record(tr)
	drain(t, tr)

	if tr.Push("late") {
		t.Error("expected push after end to fail")
	}
	waitDone(t, tr)
	_, errs := rec.snapshot()
	if len(errs) != 1 || !goerrors.HasCode(errs[0], goerrors.ErrCodePushAfterEOF) {
		t.Errorf("expected PUSH_AFTER_EOF, got %v", errs)
	}
}

func TestNext_EndEventAndAutoDestroy(t *testing.T) {
	tr := New(Handlers{}, WithObjectMode(true))
	rec := record(tr)
	drain(t, tr, 1)

	// a second read at the end must not emit end twice
	if _, ok, _ := tr.Next(context.Background()); ok {
		t.Error("expected end of data")
	}
	waitDone(t, tr)

	events, _ := rec.snapshot()
	if !reflect.DeepEqual(events, []Event{EventFinish, EventEnd, EventClose}) {
		t.Errorf("got %v", events)
	}
	if _, ok, err := tr.Next(context.Background()); ok || err != nil {
		t.Errorf("expected clean end after close, got %v %v", ok, err)
	}
}

func TestNext_PrematureClose(t *testing.T) {
	tr := New(Handlers{}, WithObjectMode(true))
	go tr.Close()
	_, _, err := tr.Next(context.Background())
	if !goerrors.HasCode(err, goerrors.ErrCodePrematureClose) {
		t.Errorf("expected PREMATURE_CLOSE, got %v", err)
	}
}

func TestNext_ContextCancel(t *testing.T) {
	tr := New(Handlers{}, WithObjectMode(true))
	defer tr.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, _, err := tr.Next(ctx); err != context.DeadlineExceeded {
		t.Errorf("got %v", err)
	}
}

func TestNext_Encodings(t *testing.T) {
	tests := []struct {
		enc  string
		want any
	}{
		{"", []byte("hi")},
		{EncodingUTF8, "hi"},
		{"utf-8", "hi"},
		{EncodingHex, "6869"},
		{EncodingBase64, "aGk="},
	}
	for _, tt := range tests {
		t.Run("enc="+tt.enc, func(t *testing.T) {
			got := drain(t, New(Handlers{}, WithEncoding(tt.enc)), "hi")
			if len(got) != 1 || !reflect.DeepEqual(got[0], tt.want) {
				t.Errorf("got %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestRead_IOReader(t *testing.T) {
	tr := New(Handlers{}, WithHighWaterMark(4))
	go func() {
		_, _ = io.Copy(tr, bytes.NewReader([]byte("hello streaming world")))
		_ = tr.End()
	}()

	got, err := io.ReadAll(tr)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "hello streaming world" {
		t.Errorf("got %q", got)
	}
}

func TestRead_RejectsObjects(t *testing.T) {
	tr := New(Handlers{}, WithObjectMode(true))
	defer tr.Close()
	go func() { _ = tr.WriteChunk(context.Background(), 7) }()

	if _, err := tr.Read(make([]byte, 8)); !goerrors.HasCode(err, goerrors.ErrCodeInvalidChunk) {
		t.Errorf("expected INVALID_CHUNK, got %v", err)
	}
}

func TestPipe_ToWriter(t *testing.T) {
	tr := New(Handlers{Transform: func(s *Transform, chunk any, _ string, done Callback) {
		done(nil, bytes.ToUpper(chunk.([]byte)))
	}})
	go func() {
		_ = tr.WriteChunk(context.Background(), "abc")
		_ = tr.WriteChunk(context.Background(), "def")
		_ = tr.End()
	}()

	var out bytes.Buffer
	if err := tr.Pipe(context.Background(), &out); err != nil {
		t.Fatal(err)
	}
	if out.String() != "ABCDEF" {
		t.Errorf("got %q", out.String())
	}
}

func TestPipeTo_EndsDestination(t *testing.T) {
	src := New(Handlers{}, WithObjectMode(true))
	dst := New(Handlers{Transform: func(_ *Transform, chunk any, _ string, done Callback) {
		done(nil, chunk.(int)*10)
	}}, WithObjectMode(true))

	go func() {
		for i := 1; i <= 3; i++ {
			_ = src.WriteChunk(context.Background(), i)
		}
		_ = src.End()
	}()

	pipeErr := make(chan error, 1)
	go func() { pipeErr <- src.PipeTo(context.Background(), dst) }()

	var got []any
	for {
		v, ok, err := dst.Next(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		if !ok {
			break
		}
		got = append(got, v)
	}
	if err := <-pipeErr; err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, []any{10, 20, 30}) {
		t.Errorf("got %v", got)
	}
}
