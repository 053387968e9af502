package section

import (
	"context"
	"time"

	"github.com/pavelanni/rapm/internal/timing"
)

// Input yields at most one resolved event per frame. It must not block.
type Input interface {
	Poll(now time.Time) (Event, bool)
}

// Renderer draws a frame from the controller's view.
type Renderer interface {
	Render(v View)
}

// InputFunc adapts a function to Input.
type InputFunc func(now time.Time) (Event, bool)

// Poll calls f.
func (f InputFunc) Poll(now time.Time) (Event, bool) { return f(now) }

// RunOption configures Run.
type RunOption func(*runConfig)

type runConfig struct {
	frame time.Duration
}

// WithFrameInterval paces the loop; zero runs frames back to back, which is
// only sensible with a simulated clock.
func WithFrameInterval(d time.Duration) RunOption {
	return func(rc *runConfig) { rc.frame = d }
}

// Run is the cooperative frame loop: read the clock once, render, poll one
// event, apply one transition. It returns when the phase is finalized.
// Context cancellation stops the loop without finalizing; it exists for
// process shutdown, not as a participant abort.
func (c *Controller) Run(ctx context.Context, clock timing.Clock, in Input, r Renderer, opts ...RunOption) error {
	rc := runConfig{frame: 16 * time.Millisecond}
	for _, o := range opts {
		o(&rc)
	}

	var tick *time.Ticker
	if rc.frame > 0 {
		tick = time.NewTicker(rc.frame)
		defer tick.Stop()
	}

	for c.state != StateFinalized {
		if err := ctx.Err(); err != nil {
			return err
		}
		now := clock.Now()
		if r != nil {
			r.Render(c.View(now))
		}
		ev, ok := in.Poll(now)
		if !ok {
			ev = NoEvent
		}
		c.Step(now, ev)

		if tick != nil && c.state != StateFinalized {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-tick.C:
			}
		}
	}
	return nil
}
