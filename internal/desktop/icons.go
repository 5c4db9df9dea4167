package desktop

import "github.com/1broseidon/deskshell/internal/geometry"

// IconLocator reports the on-screen bounding box of a desktop icon in
// viewport coordinates. The presentation layer owns icon placement.
type IconLocator interface {
	IconBounds(id AppID) (geometry.Rect, bool)
}

// StaticIcons is an IconLocator backed by a fixed map, typically filled in by
// a remote presentation layer.
type StaticIcons map[AppID]geometry.Rect

// IconBounds implements IconLocator.
func (s StaticIcons) IconBounds(id AppID) (geometry.Rect, bool) {
	r, ok := s[id]
	return r, ok
}

// IconColumn lays icons out top to bottom in catalog order.
type IconColumn struct {
	Catalog Catalog
	Left    int
	Top     int
	Width   int
	Height  int
	Gap     int
}

// IconBounds implements IconLocator.
func (c IconColumn) IconBounds(id AppID) (geometry.Rect, bool) {
	for i, app := range c.Catalog {
		if app.ID != id {
			continue
		}
		return geometry.Rect{
			Top:    c.Top + i*(c.Height+c.Gap),
			Left:   c.Left,
			Width:  c.Width,
			Height: c.Height,
		}, true
	}
	return geometry.Rect{}, false
}
