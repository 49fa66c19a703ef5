// Package through2 builds ready-to-use stream transforms from plain functions.
//
// Callers supply a per-chunk TransformFunc, an optional FlushFunc and
// optional configuration. Three factories share one normalizer:
//
//   - Default builds a single *Transform.
//   - Obj builds a *Transform in object mode with a high-water mark of 16.
//   - Ctor builds a *Constructor whose New merges per-instance options over
//     the options given to the factory.
//
// Each factory accepts three call shapes:
//
//	through2.Default.New(cfg, transform, flush) // configuration, transform, flush
//	through2.Default.Funcs(transform, flush)    // transform and flush
//	through2.Default.Func(transform)            // transform only
//
// A nil transform becomes a pass-through. A nil flush means no flush step.
//
// Every *Transform carries an idempotent Destroy: the first call tears the
// stream down and emits error (if given) and close on the stream's next turn;
// later calls do nothing.
//
//	t := through2.Obj.Func(func(s *stream.Transform, chunk any, _ string, done stream.Callback) {
//	    in := chunk.(map[string]int)
//	    done(nil, map[string]int{"out": in["in"] + 1})
//	})
package through2
