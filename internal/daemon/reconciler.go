package daemon

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/1broseidon/deskshell/internal/desktop"
)

// ViewportSource reports the size of the surface the desktop is shown on.
type ViewportSource interface {
	Viewport() (width, height int, err error)
}

// ReconcilerConfig holds configuration for the reconciler.
type ReconcilerConfig struct {
	Interval time.Duration
	Logger   zerolog.Logger
}

// Reconciler periodically compares the viewport source with the engine and
// pushes a SetViewport when they drift. It backs up event-driven sources that
// can miss resizes.
type Reconciler struct {
	interval time.Duration
	source   ViewportSource
	loop     *Loop
	logger   zerolog.Logger
}

// NewReconciler creates a reconciler for loop fed by source.
func NewReconciler(cfg ReconcilerConfig, loop *Loop, source ViewportSource) *Reconciler {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &Reconciler{
		interval: interval,
		source:   source,
		loop:     loop,
		logger:   cfg.Logger,
	}
}

// Run starts the reconciliation loop. Blocks until context is cancelled.
func (r *Reconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info().Dur("interval", r.interval).Msg("reconciler started")
	r.reconcile(ctx)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info().Msg("reconciler stopped")
			return
		case <-ticker.C:
			r.reconcile(ctx)
		}
	}
}

// ReconcileNow triggers an immediate reconciliation pass.
func (r *Reconciler) ReconcileNow(ctx context.Context) {
	r.reconcile(ctx)
}

func (r *Reconciler) reconcile(ctx context.Context) {
	defer func() {
		if err := recover(); err != nil {
			r.logger.Error().Interface("panic", err).Msg("reconciler panic recovered")
		}
	}()

	width, height, err := r.source.Viewport()
	if err != nil {
		r.logger.Warn().Err(err).Msg("reconciler: failed to read viewport")
		return
	}
	if width <= 0 || height <= 0 {
		return
	}

	err = r.loop.Do(ctx, func(d *desktop.Desktop) {
		current := d.Snapshot().Viewport
		if current.Width == width && current.Height == height {
			return
		}
		r.logger.Debug().
			Int("width", width).
			Int("height", height).
			Msg("reconciler: viewport drift corrected")
		d.SetViewport(width, height)
	})
	if err != nil && ctx.Err() == nil {
		r.logger.Warn().Err(err).Msg("reconciler: failed to apply viewport")
	}
}
