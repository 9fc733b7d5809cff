package placement

import (
	"context"
	"log/slog"
)

// Step is one unit of work in an order placement. Compensate undoes the
// effects of a successful Execute.
type Step interface {
	Name() string
	Execute(ctx context.Context) error
	Compensate(ctx context.Context) error
}

// Orchestrator runs steps in order and compensates the completed ones in
// reverse when a later step fails.
type Orchestrator struct {
	steps  []Step
	logger *slog.Logger
}

func NewOrchestrator(logger *slog.Logger, steps ...Step) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{steps: steps, logger: logger}
}

// Start returns the error of the first failing step, after rollback.
func (o *Orchestrator) Start(ctx context.Context) error {
	done := make([]Step, 0, len(o.steps))

	for _, step := range o.steps {
		o.logger.DebugContext(ctx, "executing step", "step", step.Name())
		if err := step.Execute(ctx); err != nil {
			o.logger.DebugContext(ctx, "step failed, rolling back", "step", step.Name(), "error", err)
			o.rollback(ctx, done)
			return err
		}
		done = append(done, step)
	}
	return nil
}

// rollback ignores cancellation of ctx so a disconnected client cannot
// leave stock reserved.
func (o *Orchestrator) rollback(ctx context.Context, steps []Step) {
	ctx = context.WithoutCancel(ctx)
	for i := len(steps) - 1; i >= 0; i-- {
		step := steps[i]
		if err := step.Compensate(ctx); err != nil {
			o.logger.ErrorContext(ctx, "failed to compensate step", "step", step.Name(), "error", err)
		}
	}
}
