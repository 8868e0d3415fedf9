package liveness

import (
	"context"
	"time"

	"github.com/gridwatch/gridwatch-core/internal/infrastructure/logging"
)

// DefaultSweepInterval is how often the periodic sweep runs.
const DefaultSweepInterval = 30 * time.Second

// Runner drives the periodic sweep on a fixed interval.
//
// Sweeps run synchronously inside the loop, so a slow sweep delays the
// next tick rather than overlapping it.
type Runner struct {
	engine   *Engine
	interval time.Duration
	logger   *logging.Logger
}

// NewRunner creates a sweep runner.
//
// Parameters:
//   - engine: Engine whose Sweep is invoked each tick
//   - interval: Time between sweeps; DefaultSweepInterval when zero
//   - logger: Structured logger
//
// Returns:
//   - *Runner: Runner ready for Run
func NewRunner(engine *Engine, interval time.Duration, logger *logging.Logger) *Runner {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Runner{
		engine:   engine,
		interval: interval,
		logger:   logger.With("component", "sweep"),
	}
}

// Run sweeps once immediately, then on every interval tick until the
// context is cancelled. Sweep errors are logged and the loop continues.
//
// Parameters:
//   - ctx: Context whose cancellation stops the loop
func (r *Runner) Run(ctx context.Context) {
	r.logger.Info("sweep runner started", "interval", r.interval.String())

	r.sweep(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("sweep runner stopped")
			return
		case <-ticker.C:
			r.sweep(ctx)
		}
	}
}

func (r *Runner) sweep(ctx context.Context) {
	if err := r.engine.Sweep(ctx, time.Now().UTC()); err != nil {
		r.logger.Error("sweep failed", "error", err)
	}
}
