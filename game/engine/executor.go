package engine

import (
	"context"
	"time"
)

// DefaultStepDuration is the per-tile duration used when a scenario does not
// set one.
const DefaultStepDuration = 100 * time.Millisecond

// Executor walks a unit along a computed path one tile at a time. It is the
// only place in the subsystem where execution suspends.
type Executor struct {
	stepDuration time.Duration
}

// NewExecutor returns an executor that spends stepDuration per tile entered.
// Durations below zero are treated as zero (steps still yield to
// cancellation checks).
func NewExecutor(stepDuration time.Duration) *Executor {
	if stepDuration < 0 {
		stepDuration = 0
	}
	return &Executor{stepDuration: stepDuration}
}

// StepDuration returns the configured per-tile duration.
func (e *Executor) StepDuration() time.Duration {
	return e.stepDuration
}

// ExecResult reports where an execution ended. FinalPosition is always a tile
// on the original path: the destination when Completed, otherwise the last
// fully-completed step.
type ExecResult struct {
	FinalPosition  Position `json:"final_position"`
	StepsCompleted int      `json:"steps_completed"`
	Completed      bool     `json:"completed"`
}

// Animate advances along path, one step duration per tile. Cancellation is
// cooperative: ctx is checked at each step boundary, never mid-tile, and a
// canceled run reports the last fully-completed step. onStep, if non-nil, is
// called after each completed step with the new position, the 1-based step
// number and the total step count. A nil or single-position path completes
// immediately.
func (e *Executor) Animate(ctx context.Context, path Path, onStep func(pos Position, step, total int)) ExecResult {
	if len(path) == 0 {
		return ExecResult{Completed: true}
	}
	pos := path[0]
	total := len(path) - 1
	if total == 0 {
		return ExecResult{FinalPosition: pos, Completed: true}
	}

	timer := time.NewTimer(e.stepDuration)
	defer timer.Stop()

	for i := 1; i < len(path); i++ {
		select {
		case <-ctx.Done():
			return ExecResult{FinalPosition: pos, StepsCompleted: i - 1}
		case <-timer.C:
		}
		pos = path[i]
		if onStep != nil {
			onStep(pos, i, total)
		}
		if i < len(path)-1 {
			timer.Reset(e.stepDuration)
		}
	}
	return ExecResult{FinalPosition: pos, StepsCompleted: total, Completed: true}
}
