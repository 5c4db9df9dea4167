package desktop

import "github.com/1broseidon/deskshell/internal/geometry"

// WorkspaceFunc returns the current workspace rectangle in viewport
// coordinates, or false when no workspace is laid out.
type WorkspaceFunc func() (geometry.Rect, bool)

// ShellLayout describes the desktop chrome that surrounds the workspace: an
// icon column on the left, a widget rail on the right and a taskbar along the
// bottom.
type ShellLayout struct {
	IconColumnWidth int
	WidgetRailWidth int
	TaskbarHeight   int
}

// Workspace carves the workspace out of a viewport of the given size.
func (l ShellLayout) Workspace(viewportWidth, viewportHeight int) (geometry.Rect, bool) {
	r := geometry.Rect{
		Top:    0,
		Left:   l.IconColumnWidth,
		Width:  viewportWidth - l.IconColumnWidth - l.WidgetRailWidth,
		Height: viewportHeight - l.TaskbarHeight,
	}
	if r.Empty() {
		return geometry.Rect{}, false
	}
	return r, true
}

// WidgetRail returns the rail rectangle for a viewport.
func (l ShellLayout) WidgetRail(viewportWidth, viewportHeight int) geometry.Rect {
	return geometry.Rect{
		Top:    0,
		Left:   viewportWidth - l.WidgetRailWidth,
		Width:  l.WidgetRailWidth,
		Height: max(0, viewportHeight-l.TaskbarHeight),
	}
}

// Taskbar returns the taskbar rectangle for a viewport.
func (l ShellLayout) Taskbar(viewportWidth, viewportHeight int) geometry.Rect {
	return geometry.Rect{
		Top:    viewportHeight - l.TaskbarHeight,
		Left:   0,
		Width:  viewportWidth,
		Height: l.TaskbarHeight,
	}
}
