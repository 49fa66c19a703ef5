package commands

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	goerrors "github.com/kbukum/through2/errors"
	"github.com/kbukum/through2/pipeline"
	"github.com/kbukum/through2/stream"
	"github.com/kbukum/through2/through2"
	"github.com/kbukum/through2/version"
)

func newAppendCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "append <suffix>",
		Short: "Append suffix to every chunk",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fn := appendSuffix([]byte(args[0]))
			return a.run(cmd, "append", func() pipeline.Stage {
				return through2.New(a.streamOptions(), fn, nil)
			})
		},
	}
}

func newReplaceCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "replace <old> <new>",
		Short: "Replace old with new inside every chunk",
		Long: `Replace old with new inside every chunk.

Matches that span two chunks are not replaced; raise --chunk-size if the
input is larger than one chunk.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctor := through2.Ctor.New(a.streamOptions(), replaceAll([]byte(args[0]), []byte(args[1])), nil)
			return a.run(cmd, "replace", func() pipeline.Stage {
				return ctor.New()
			})
		},
	}
}

func newCountCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "count",
		Short: "Print the number of input bytes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd, "count", func() pipeline.Stage {
				var n int
				return through2.New(a.streamOptions(),
					func(_ *stream.Transform, chunk any, _ string, done stream.Callback) {
						b, err := chunkBytes(chunk)
						if err != nil {
							done(err, nil)
							return
						}
						n += len(b)
						done(nil, nil)
					},
					func(_ *stream.Transform, done stream.Callback) {
						done(nil, strconv.Itoa(n)+"\n")
					},
				)
			})
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), appName, version.Get().String())
			return err
		},
	}
}

func appendSuffix(suffix []byte) through2.TransformFunc {
	return func(_ *stream.Transform, chunk any, _ string, done stream.Callback) {
		b, err := chunkBytes(chunk)
		if err != nil {
			done(err, nil)
			return
		}
		out := make([]byte, 0, len(b)+len(suffix))
		done(nil, append(append(out, b...), suffix...))
	}
}

func replaceAll(old, repl []byte) through2.TransformFunc {
	return func(_ *stream.Transform, chunk any, _ string, done stream.Callback) {
		b, err := chunkBytes(chunk)
		if err != nil {
			done(err, nil)
			return
		}
		done(nil, bytes.ReplaceAll(b, old, repl))
	}
}

// chunkBytes accepts the chunk types stdin produces in either stream mode.
func chunkBytes(chunk any) ([]byte, error) {
	switch c := chunk.(type) {
	case []byte:
		return c, nil
	case string:
		return []byte(c), nil
	default:
		return nil, goerrors.InvalidChunk(chunk)
	}
}
