package through2

import "github.com/kbukum/through2/stream"

// ObjectHighWaterMark is the buffering threshold Obj applies unless
// overridden.
const ObjectHighWaterMark = 16

var (
	// Default builds one transform with the given configuration.
	Default = Through(newTransform)

	// Obj builds one transform in object mode with a high-water mark of
	// ObjectHighWaterMark. Caller options override both.
	Obj = Through(func(cfg []stream.Option, transform TransformFunc, flush FlushFunc) *Transform {
		merged := make([]stream.Option, 0, len(cfg)+2)
		merged = append(merged,
			stream.WithObjectMode(true),
			stream.WithHighWaterMark(ObjectHighWaterMark),
		)
		return newTransform(append(merged, cfg...), transform, flush)
	})

	// Ctor builds a reusable Constructor.
	Ctor = Through(func(cfg []stream.Option, transform TransformFunc, flush FlushFunc) *Constructor {
		return &Constructor{base: cfg, transform: transform, flush: flush}
	})
)

// New is Default.New.
func New(cfg []stream.Option, transform TransformFunc, flush FlushFunc) *Transform {
	return Default.New(cfg, transform, flush)
}

// NewObj is Obj.New.
func NewObj(cfg []stream.Option, transform TransformFunc, flush FlushFunc) *Transform {
	return Obj.New(cfg, transform, flush)
}

// NewCtor is Ctor.New.
func NewCtor(cfg []stream.Option, transform TransformFunc, flush FlushFunc) *Constructor {
	return Ctor.New(cfg, transform, flush)
}

// Constructor produces independent transforms sharing one transform and
// flush function.
type Constructor struct {
	base      []stream.Option
	transform TransformFunc
	flush     FlushFunc
}

// New builds a transform whose configuration is the constructor's base
// options followed by override. Override wins on collision.
func (c *Constructor) New(override ...stream.Option) *Transform {
	return newTransform(c.merged(override), c.transform, c.flush)
}

// Options resolves the configuration New would use for override.
func (c *Constructor) Options(override ...stream.Option) stream.Options {
	return stream.Resolve(c.merged(override)...)
}

func (c *Constructor) merged(override []stream.Option) []stream.Option {
	cfg := make([]stream.Option, 0, len(c.base)+len(override))
	cfg = append(cfg, c.base...)
	return append(cfg, override...)
}
