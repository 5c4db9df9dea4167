// Package daemon hosts the desktop engine behind a single goroutine and wires
// it to the IPC server, configuration reloads and viewport sources.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/1broseidon/deskshell/internal/desktop"
)

// ErrStopped is returned by Loop methods once Run has returned.
var ErrStopped = errors.New("daemon loop stopped")

type job struct {
	fn   func()
	done chan error
}

// Loop serializes every access to a desktop.Desktop onto the goroutine that
// calls Run.
type Loop struct {
	desk     *desktop.Desktop
	jobs     chan job
	stopped  chan struct{}
	revision atomic.Uint64
	logger   zerolog.Logger
}

// NewLoop creates a loop owning desk. Nothing runs until Run is called.
func NewLoop(desk *desktop.Desktop, logger zerolog.Logger) *Loop {
	l := &Loop{
		desk:    desk,
		jobs:    make(chan job),
		stopped: make(chan struct{}),
		logger:  logger,
	}
	desk.Subscribe(l.observe)
	return l
}

// observe runs on the loop goroutine after every state change.
func (l *Loop) observe(snap desktop.Snapshot) {
	rev := l.revision.Add(1)
	l.logger.Debug().
		Uint64("revision", rev).
		Str("mode", string(snap.Mode)).
		Str("active", string(snap.Active)).
		Int("open", len(snap.Open)).
		Bool("dragging", snap.Dragging).
		Msg("desktop changed")
}

// Revision counts desktop state changes. Presentation layers compare it to
// decide whether to fetch a new snapshot.
func (l *Loop) Revision() uint64 {
	return l.revision.Load()
}

// Run executes submitted work until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	defer close(l.stopped)
	l.logger.Info().Msg("desktop loop started")

	for {
		select {
		case <-ctx.Done():
			l.logger.Info().Msg("desktop loop stopped")
			return nil
		case j := <-l.jobs:
			l.run(j)
		}
	}
}

func (l *Loop) run(j job) {
	var err error
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error().Interface("panic", r).Msg("desktop command panic recovered")
			err = fmt.Errorf("desktop command panicked: %v", r)
		}
		j.done <- err
	}()
	j.fn()
}

func (l *Loop) submit(ctx context.Context, fn func()) error {
	j := job{fn: fn, done: make(chan error, 1)}
	select {
	case l.jobs <- j:
	case <-ctx.Done():
		return ctx.Err()
	case <-l.stopped:
		return ErrStopped
	}
	select {
	case err := <-j.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-l.stopped:
		return ErrStopped
	}
}

// Do runs fn on the loop goroutine and waits for it to finish.
func (l *Loop) Do(ctx context.Context, fn func(*desktop.Desktop)) error {
	return l.submit(ctx, func() {
		fn(l.desk)
	})
}

// Snapshot returns the current desktop state.
func (l *Loop) Snapshot(ctx context.Context) (desktop.Snapshot, error) {
	var snap desktop.Snapshot
	err := l.Do(ctx, func(d *desktop.Desktop) {
		snap = d.Snapshot()
	})
	return snap, err
}

// Replace swaps in a new desktop, e.g. after a configuration reload. The
// viewport, reported icon bounds and subscribers move to next.
func (l *Loop) Replace(ctx context.Context, next *desktop.Desktop) error {
	if next == nil {
		return fmt.Errorf("replace: desktop is nil")
	}
	return l.submit(ctx, func() {
		next.Carry(l.desk)
		l.desk = next
	})
}
