package board

import (
	"context"
	"time"
)

// Stoppable is polled by long running passes between steps.
type Stoppable interface {
	StopRequested() bool
}

// TimeLimit requests a stop once its deadline has passed.
type TimeLimit struct {
	deadline time.Time
}

// NewTimeLimit returns a limit that expires after d.
func NewTimeLimit(d time.Duration) *TimeLimit {
	return &TimeLimit{deadline: time.Now().Add(d)}
}

func (t *TimeLimit) StopRequested() bool {
	return t != nil && !time.Now().Before(t.deadline)
}

type contextStop struct {
	ctx context.Context
}

// ContextStop requests a stop once ctx is done.
func ContextStop(ctx context.Context) Stoppable {
	return contextStop{ctx: ctx}
}

func (c contextStop) StopRequested() bool {
	return c.ctx.Err() != nil
}

func stopRequested(s Stoppable) bool {
	return s != nil && s.StopRequested()
}
