package stream

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"io"

	goerrors "github.com/kbukum/through2/errors"
)

// Push appends chunk to the readable buffer. It reports whether more chunks
// can be pushed before the buffer reaches the high-water mark; false also
// means the stream is torn down. A nil chunk is ignored.
func (t *Transform) Push(chunk any) bool {
	if chunk == nil {
		t.mu.Lock()
		defer t.mu.Unlock()
		return !t.aborted && !t.readableFull()
	}
	c, err := t.normalize(chunk)
	if err != nil {
		t.Destroy(err)
		return false
	}
	size := t.sizeOf(c)

	t.mu.Lock()
	if t.aborted {
		t.mu.Unlock()
		return false
	}
	if t.readEnded {
		t.mu.Unlock()
		t.Destroy(goerrors.PushAfterEOF())
		return false
	}
	t.readable = append(t.readable, c)
	t.readableLen += size
	t.signal()
	more := !t.readableFull()
	t.mu.Unlock()

	if t.opts.Observer != nil {
		t.opts.Observer.ChunkPushed(t.info, size)
	}
	return more
}

// Next returns the next readable chunk, blocking until one is pushed or the
// readable side ends. It returns (nil, false, nil) at the end. Next and Close
// make a Transform a pipeline iterator.
func (t *Transform) Next(ctx context.Context) (any, bool, error) {
	t.mu.Lock()
	for {
		if t.aborted {
			err, clean := t.abortErr, t.readEnded && len(t.readable) == 0
			t.mu.Unlock()
			switch {
			case err != nil:
				return nil, false, err
			case clean:
				return nil, false, nil
			default:
				return nil, false, goerrors.PrematureClose()
			}
		}
		if len(t.readable) > 0 {
			c := t.readable[0]
			t.readable[0] = nil
			t.readable = t.readable[1:]
			t.readableLen -= t.sizeOf(c)
			resume := t.stalled && !t.readableFull()
			if resume {
				t.stalled = false
			}
			t.mu.Unlock()

			if resume {
				t.loop.schedule(t.advance)
			}
			return t.decode(c), true, nil
		}
		if t.readEnded {
			first := !t.endScheduled
			t.endScheduled = true
			t.mu.Unlock()
			if first {
				t.loop.schedule(t.emitEnd)
			}
			return nil, false, nil
		}
		ch := t.changed
		t.mu.Unlock()
		select {
		case <-ch:
		case <-ctx.Done():
			return nil, false, ctx.Err()
		}
		t.mu.Lock()
	}
}

// Close destroys the stream without an error.
func (t *Transform) Close() error {
	t.Destroy(nil)
	return nil
}

// Read implements io.Reader over the readable side. Chunks must be []byte or
// string. Read is not meant to be mixed with Next.
func (t *Transform) Read(p []byte) (int, error) {
	t.readMu.Lock()
	defer t.readMu.Unlock()

	if len(t.partial) == 0 {
		c, ok, err := t.Next(context.Background())
		if err != nil {
			return 0, err
		}
		if !ok {
			return 0, io.EOF
		}
		b, err := toBytes(c)
		if err != nil {
			return 0, err
		}
		t.partial = b
	}
	n := copy(p, t.partial)
	t.partial = t.partial[n:]
	return n, nil
}

// Pipe copies every readable chunk to w until the readable side ends.
func (t *Transform) Pipe(ctx context.Context, w io.Writer) error {
	for {
		c, ok, err := t.Next(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		b, err := toBytes(c)
		if err != nil {
			return err
		}
		if _, err := w.Write(b); err != nil {
			return err
		}
	}
}

// ChunkWriter is the writable half of a stream.
type ChunkWriter interface {
	WriteChunk(ctx context.Context, chunk any) error
	End() error
}

// PipeTo writes every readable chunk into dst and ends dst once the readable
// side ends. A read error is returned without ending dst.
func (t *Transform) PipeTo(ctx context.Context, dst ChunkWriter) error {
	for {
		c, ok, err := t.Next(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return dst.End()
		}
		if err := dst.WriteChunk(ctx, c); err != nil {
			return err
		}
	}
}

// emitEnd runs on the loop after a reader observed the end of data.
func (t *Transform) emitEnd() {
	if t.Aborted() {
		return
	}
	t.Emit(EventEnd, nil)
	if t.opts.AutoDestroy {
		t.Destroy(nil)
	}
}

func (t *Transform) decode(c any) any {
	if t.opts.ObjectMode {
		return c
	}
	b := c.([]byte)
	switch t.opts.Encoding {
	case EncodingUTF8, "utf-8":
		return string(b)
	case EncodingHex:
		return hex.EncodeToString(b)
	case EncodingBase64:
		return base64.StdEncoding.EncodeToString(b)
	default:
		return b
	}
}

func toBytes(c any) ([]byte, error) {
	switch v := c.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, goerrors.InvalidChunk(c)
	}
}
