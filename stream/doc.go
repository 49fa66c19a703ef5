// Package stream is the chunk streaming runtime the through2 factories build on.
//
// A Transform has a writable side (WriteChunk, Write, End) and a readable side
// (Push, Next, Read, Pipe). Each written chunk is handed to a TransformFunc,
// one at a time; the next chunk is not delivered until the previous one has
// called its completion callback. After End, the optional FlushFunc runs once
// and the readable side ends.
//
// Every Transform owns a loop that executes its work in FIFO order, one task
// at a time. Handler code and event listeners run on that loop. The loop's
// goroutine is started when work is queued and exits when the queue drains,
// so a stream that is idle or never used holds no goroutine. Schedule queues a task
// for a later turn and never runs it synchronously, which lets teardown code
// defer notifications until the current handler has returned.
//
// Backpressure follows the io.Pipe model: writers block while the buffered
// writable length is at the high-water mark, and the transform stalls while
// the readable buffer is full. Reading and writing large volumes therefore
// needs a concurrent reader.
//
// # Usage
//
//	upper := stream.New(stream.Handlers{
//	    Transform: func(t *stream.Transform, chunk any, _ string, done stream.Callback) {
//	        done(nil, bytes.ToUpper(chunk.([]byte)))
//	    },
//	})
//	go func() {
//	    _, _ = io.Copy(upper, os.Stdin)
//	    _ = upper.End()
//	}()
//	err := upper.Pipe(ctx, os.Stdout)
package stream
