package x11

import (
	"context"
	"fmt"
	"strings"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xprop"
	"github.com/BurntSushi/xgbutil/xwindow"
	"github.com/rs/zerolog"
)

// Measure selects which part of the screen counts as the viewport.
type Measure string

const (
	MeasureRoot     Measure = "root"
	MeasureWorkarea Measure = "workarea"
	MeasureMonitor  Measure = "monitor"
)

// ParseMeasure validates a measure name. Empty means the whole root window.
func ParseMeasure(name string) (Measure, error) {
	switch Measure(strings.ToLower(strings.TrimSpace(name))) {
	case "", MeasureRoot:
		return MeasureRoot, nil
	case MeasureWorkarea:
		return MeasureWorkarea, nil
	case MeasureMonitor:
		return MeasureMonitor, nil
	}
	return "", fmt.Errorf("unknown viewport measure %q (expected root, workarea or monitor)", name)
}

// ViewportSource reports the X11 screen size to the daemon and pushes
// changes as they happen.
type ViewportSource struct {
	conn    *Connection
	measure Measure
	logger  zerolog.Logger
}

func NewViewportSource(conn *Connection, measure Measure, logger zerolog.Logger) *ViewportSource {
	return &ViewportSource{conn: conn, measure: measure, logger: logger}
}

// Viewport measures the screen.
func (s *ViewportSource) Viewport() (int, int, error) {
	switch s.measure {
	case MeasureWorkarea:
		wa, err := s.conn.Workarea()
		if err != nil {
			return 0, 0, err
		}
		return wa.Width, wa.Height, nil

	case MeasureMonitor:
		monitors, err := s.conn.Monitors()
		if err != nil {
			return 0, 0, err
		}
		x, y, err := s.conn.Pointer()
		if err != nil {
			x, y = 0, 0
		}
		mon, ok := monitorAt(monitors, x, y)
		if !ok {
			return 0, 0, fmt.Errorf("no monitors found")
		}
		bounds := mon.Bounds
		if wa, err := s.conn.Workarea(); err == nil {
			bounds = clip(bounds, wa)
		}
		return bounds.Width, bounds.Height, nil

	default:
		return s.conn.RootSize()
	}
}

// Watch listens for root window reconfiguration and work area changes and
// reports the new size until ctx is done.
func (s *ViewportSource) Watch(ctx context.Context, onChange func(width, height int)) error {
	xu := s.conn.XUtil
	root := xwindow.New(xu, s.conn.Root)
	if err := root.Listen(xproto.EventMaskStructureNotify, xproto.EventMaskPropertyChange); err != nil {
		return fmt.Errorf("failed to listen on root window: %w", err)
	}

	notify := func() {
		w, h, err := s.Viewport()
		if err != nil {
			s.logger.Debug().Err(err).Msg("viewport measure failed")
			return
		}
		onChange(w, h)
	}

	xevent.ConfigureNotifyFun(func(_ *xgbutil.XUtil, _ xevent.ConfigureNotifyEvent) {
		notify()
	}).Connect(xu, s.conn.Root)

	xevent.PropertyNotifyFun(func(xu *xgbutil.XUtil, ev xevent.PropertyNotifyEvent) {
		name, err := xprop.AtomName(xu, ev.Atom)
		if err != nil || name != "_NET_WORKAREA" {
			return
		}
		notify()
	}).Connect(xu, s.conn.Root)

	done := make(chan struct{})
	go func() {
		defer close(done)
		xevent.Main(xu)
	}()

	select {
	case <-ctx.Done():
		xevent.Quit(xu)
		return nil
	case <-done:
		return fmt.Errorf("x11 event loop exited")
	}
}
