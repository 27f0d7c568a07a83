package decision

import (
	"context"
	"fmt"

	"bitgyeol/internal/logger"
)

// Pipeline runs its stages strictly in order and stops at the first
// failure. A failed stage means no later stage runs and no decision is
// produced for the cycle.
type Pipeline struct {
	provider SnapshotProvider
	stages   []Stage
}

func NewPipeline(provider SnapshotProvider, stages ...Stage) *Pipeline {
	return &Pipeline{provider: provider, stages: stages}
}

// Run executes one full pass and returns the run context. On error the
// returned context still carries the results of the stages that completed.
func (p *Pipeline) Run(ctx context.Context) (*Context, error) {
	run := NewContext(p.provider)
	logger.Infof("run %s: pipeline started (%d stages)", run.TraceID, len(p.stages))

	for _, stage := range p.stages {
		select {
		case <-ctx.Done():
			return run, fmt.Errorf("run %s aborted before %s: %w", run.TraceID, stage.Name(), ctx.Err())
		default:
		}

		if err := stage.Run(ctx, run); err != nil {
			return run, fmt.Errorf("stage %s: %w", stage.Name(), err)
		}
		logger.Infof("run %s: stage %s completed", run.TraceID, stage.Name())
	}
	return run, nil
}

// FinalText returns the reconciled decision text of a completed run.
func (p *Pipeline) FinalText(run *Context) (string, bool) {
	res, ok := run.Result(StageFinalDecision)
	if !ok {
		return "", false
	}
	return res.Text, true
}
