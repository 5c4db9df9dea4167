package daemon

import (
	"context"
	"fmt"
	"sync"

	"github.com/1broseidon/deskshell/internal/desktop"
	"github.com/1broseidon/deskshell/internal/geometry"
)

// Local drives an in-process desktop through the same calls ipc.Client
// makes against the daemon. Presentation code uses it when no daemon is
// running.
type Local struct {
	mu      sync.Mutex
	desk    *desktop.Desktop
	rebuild func() (*desktop.Desktop, error)
}

// NewLocal wraps desk. rebuild, when non-nil, backs Reload.
func NewLocal(desk *desktop.Desktop, rebuild func() (*desktop.Desktop, error)) *Local {
	return &Local{desk: desk, rebuild: rebuild}
}

func (l *Local) do(fn func(d *desktop.Desktop) error) (*desktop.Snapshot, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := fn(l.desk); err != nil {
		return nil, err
	}
	snap := l.desk.Snapshot()
	return &snap, nil
}

func (l *Local) app(name string, fn func(d *desktop.Desktop, id desktop.AppID)) (*desktop.Snapshot, error) {
	return l.do(func(d *desktop.Desktop) error {
		id, err := d.Catalog().Parse(name)
		if err != nil {
			return err
		}
		fn(d, id)
		return nil
	})
}

func none(*desktop.Desktop) error { return nil }

func (l *Local) Snapshot(context.Context) (*desktop.Snapshot, error) {
	return l.do(none)
}

// Reload rebuilds the desktop, keeping the viewport and reported icon bounds.
func (l *Local) Reload(context.Context) (*desktop.Snapshot, error) {
	if l.rebuild == nil {
		return nil, fmt.Errorf("reload is not supported without a configuration source")
	}
	next, err := l.rebuild()
	if err != nil {
		return nil, err
	}
	return l.do(func(d *desktop.Desktop) error {
		next.Carry(d)
		l.desk = next
		return nil
	})
}

func (l *Local) Open(_ context.Context, app string) (*desktop.Snapshot, error) {
	return l.app(app, (*desktop.Desktop).Open)
}

func (l *Local) Close(_ context.Context, app string) (*desktop.Snapshot, error) {
	return l.app(app, (*desktop.Desktop).Close)
}

func (l *Local) Minimize(_ context.Context, app string) (*desktop.Snapshot, error) {
	return l.app(app, (*desktop.Desktop).Minimize)
}

func (l *Local) ToggleMaximize(_ context.Context, app string) (*desktop.Snapshot, error) {
	return l.app(app, (*desktop.Desktop).ToggleMaximize)
}

func (l *Local) Focus(_ context.Context, app string) (*desktop.Snapshot, error) {
	return l.app(app, (*desktop.Desktop).Focus)
}

func (l *Local) TaskbarClick(_ context.Context, app string) (*desktop.Snapshot, error) {
	return l.app(app, (*desktop.Desktop).TaskbarClick)
}

func (l *Local) ClickIcon(_ context.Context, app string) (*desktop.Snapshot, error) {
	return l.app(app, (*desktop.Desktop).ClickIcon)
}

func (l *Local) DoubleClickIcon(_ context.Context, app string) (*desktop.Snapshot, error) {
	return l.app(app, (*desktop.Desktop).DoubleClickIcon)
}

func (l *Local) StartDrag(_ context.Context, app string, ev desktop.PointerEvent) (*desktop.Snapshot, error) {
	return l.app(app, func(d *desktop.Desktop, id desktop.AppID) { d.StartDrag(id, ev) })
}

func (l *Local) StartResize(_ context.Context, app string, dir desktop.Direction, ev desktop.PointerEvent) (*desktop.Snapshot, error) {
	return l.app(app, func(d *desktop.Desktop, id desktop.AppID) { d.StartResize(id, dir, ev) })
}

func (l *Local) PointerMove(_ context.Context, ev desktop.PointerEvent) (*desktop.Snapshot, error) {
	return l.do(func(d *desktop.Desktop) error {
		d.PointerMove(ev)
		return nil
	})
}

func (l *Local) PointerUp(_ context.Context, ev desktop.PointerEvent) (*desktop.Snapshot, error) {
	return l.do(func(d *desktop.Desktop) error {
		d.PointerUp(ev)
		return nil
	})
}

func (l *Local) LostPointerCapture(_ context.Context, pointerID int) (*desktop.Snapshot, error) {
	return l.do(func(d *desktop.Desktop) error {
		d.LostPointerCapture(pointerID)
		return nil
	})
}

func (l *Local) DesktopPointerDown(_ context.Context, ev desktop.PointerEvent, target desktop.Target) (*desktop.Snapshot, error) {
	return l.do(func(d *desktop.Desktop) error {
		d.DesktopPointerDown(ev, target)
		return nil
	})
}

func (l *Local) SetForeground(_ context.Context, mode desktop.ViewMode, app string) (*desktop.Snapshot, error) {
	if !mode.SingleApp() {
		return nil, fmt.Errorf("mode %q has no foreground app", mode)
	}
	if app == "" {
		return l.do(func(d *desktop.Desktop) error {
			d.SetForegroundApp(mode, desktop.NoApp)
			return nil
		})
	}
	return l.app(app, func(d *desktop.Desktop, id desktop.AppID) { d.SetForegroundApp(mode, id) })
}

func (l *Local) GoHome(context.Context) (*desktop.Snapshot, error) {
	return l.do(func(d *desktop.Desktop) error {
		d.GoHome()
		return nil
	})
}

func (l *Local) ToggleStartMenu(context.Context) (*desktop.Snapshot, error) {
	return l.do(func(d *desktop.Desktop) error {
		d.ToggleStartMenu()
		return nil
	})
}

func (l *Local) SetViewport(_ context.Context, width, height int) (*desktop.Snapshot, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("viewport must be positive, got %dx%d", width, height)
	}
	return l.do(func(d *desktop.Desktop) error {
		d.SetViewport(width, height)
		return nil
	})
}

func (l *Local) SetIconBounds(_ context.Context, icons map[string]geometry.Rect) (*desktop.Snapshot, error) {
	return l.do(func(d *desktop.Desktop) error {
		located := make(desktop.StaticIcons, len(icons))
		for name, r := range icons {
			id, err := d.Catalog().Parse(name)
			if err != nil {
				return err
			}
			located[id] = r
		}
		d.SetIcons(located)
		return nil
	})
}
