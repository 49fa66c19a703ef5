package pipeline

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Stage is a duplex transform that can sit inside a pipeline.
type Stage interface {
	Iterator[any]
	WriteChunk(ctx context.Context, chunk any) error
	End() error
	Destroy(err error)
}

// Through feeds p into a fresh stage from newStage and yields the stage's
// output. An upstream error or a rejected write destroys the stage with that
// error, which the downstream reader then receives.
func Through(p *Pipeline[any], newStage func() Stage) *Pipeline[any] {
	return &Pipeline[any]{
		create: func(ctx context.Context) Iterator[any] {
			source := p.create(ctx)
			stage := newStage()
			pumpCtx, cancel := context.WithCancel(ctx)

			var g errgroup.Group
			g.Go(func() error {
				for {
					val, ok, err := source.Next(pumpCtx)
					if err != nil {
						stage.Destroy(err)
						return err
					}
					if !ok {
						return stage.End()
					}
					if err := stage.WriteChunk(pumpCtx, val); err != nil {
						stage.Destroy(err)
						return err
					}
				}
			})

			return &stageIter{
				stage: stage,
				closer: func() error {
					cancel()
					stage.Destroy(nil)
					_ = g.Wait()
					return source.Close()
				},
			}
		},
	}
}

type stageIter struct {
	stage  Stage
	closer func() error
}

func (it *stageIter) Next(ctx context.Context) (any, bool, error) {
	return it.stage.Next(ctx)
}

func (it *stageIter) Close() error { return it.closer() }
