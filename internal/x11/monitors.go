package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"

	"github.com/1broseidon/deskshell/internal/geometry"
)

// Monitor is one active RandR output in root-window coordinates.
type Monitor struct {
	Name   string
	Bounds geometry.Rect
}

// Monitors lists the active outputs.
func (c *Connection) Monitors() ([]Monitor, error) {
	if err := randr.Init(c.XUtil.Conn()); err != nil {
		return nil, fmt.Errorf("randr init failed: %w", err)
	}
	resources, err := randr.GetScreenResources(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var monitors []Monitor
	for i, crtc := range resources.Crtcs {
		info, err := randr.GetCrtcInfo(c.XUtil.Conn(), crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}
		if info.Width == 0 || info.Height == 0 || len(info.Outputs) == 0 {
			continue
		}

		name := fmt.Sprintf("crtc-%d", i)
		if out, err := randr.GetOutputInfo(c.XUtil.Conn(), info.Outputs[0], resources.ConfigTimestamp).Reply(); err == nil {
			name = string(out.Name)
		}
		monitors = append(monitors, Monitor{
			Name: name,
			Bounds: geometry.Rect{
				Top:    int(info.Y),
				Left:   int(info.X),
				Width:  int(info.Width),
				Height: int(info.Height),
			},
		})
	}
	return monitors, nil
}

// RootSize returns the size of the root window.
func (c *Connection) RootSize() (int, int, error) {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(c.Root)).Reply()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to get root geometry: %w", err)
	}
	return int(geom.Width), int(geom.Height), nil
}

// Workarea returns _NET_WORKAREA for the current desktop.
func (c *Connection) Workarea() (geometry.Rect, error) {
	areas, err := ewmh.WorkareaGet(c.XUtil)
	if err != nil {
		return geometry.Rect{}, fmt.Errorf("failed to read _NET_WORKAREA: %w", err)
	}
	current := 0
	if d, err := ewmh.CurrentDesktopGet(c.XUtil); err == nil {
		current = int(d)
	}
	rects := make([]geometry.Rect, len(areas))
	for i, wa := range areas {
		rects[i] = geometry.Rect{Top: int(wa.Y), Left: int(wa.X), Width: int(wa.Width), Height: int(wa.Height)}
	}
	return workareaFor(rects, current)
}

// Pointer returns the pointer position on the root window.
func (c *Connection) Pointer() (int, int, error) {
	p, err := xproto.QueryPointer(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to query pointer: %w", err)
	}
	return int(p.RootX), int(p.RootY), nil
}

func workareaFor(areas []geometry.Rect, desktop int) (geometry.Rect, error) {
	if len(areas) == 0 {
		return geometry.Rect{}, fmt.Errorf("no work areas reported")
	}
	if desktop < 0 || desktop >= len(areas) {
		desktop = 0
	}
	return areas[desktop], nil
}

// monitorAt picks the monitor containing (x, y), falling back to the first.
func monitorAt(monitors []Monitor, x, y int) (Monitor, bool) {
	if len(monitors) == 0 {
		return Monitor{}, false
	}
	for _, m := range monitors {
		if m.Bounds.Contains(x, y) {
			return m, true
		}
	}
	return monitors[0], true
}

// clip intersects a monitor with the work area. Panels and docks live
// outside the work area. A disjoint work area leaves the monitor as is.
func clip(mon, workarea geometry.Rect) geometry.Rect {
	x1 := max(mon.Left, workarea.Left)
	y1 := max(mon.Top, workarea.Top)
	x2 := min(mon.Right(), workarea.Right())
	y2 := min(mon.Bottom(), workarea.Bottom())
	if x2 <= x1 || y2 <= y1 {
		return mon
	}
	return geometry.Rect{Top: y1, Left: x1, Width: x2 - x1, Height: y2 - y1}
}
