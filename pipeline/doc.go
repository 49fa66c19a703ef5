// Package pipeline composes pull-based pipelines around stream transforms.
//
// Pipelines are lazy: no work happens until values are pulled via Collect,
// Drain or ForEach. Each stage pulls from the previous one on demand.
//
// Through places a transform stage in a pipeline. Upstream values are
// written into the stage from a pump goroutine while downstream pulls the
// stage's readable side, so the stage's own backpressure governs the flow.
//
//	src := pipeline.FromSlice([]any{map[string]int{"in": 101}})
//	out := pipeline.Through(src, func() pipeline.Stage {
//	    return through2.Obj.Func(addOne)
//	})
//	results, err := pipeline.Collect(ctx, out)
//
// Byte sources plug in with FromReader and drain with Copy:
//
//	chunks := pipeline.Any(pipeline.FromReader(os.Stdin, 32*1024))
//	err := pipeline.Copy(ctx, pipeline.Through(chunks, newUpper), os.Stdout)
package pipeline
