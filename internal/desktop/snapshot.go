package desktop

import (
	"sort"

	"github.com/1broseidon/deskshell/internal/geometry"
)

// Size is a viewport size in pixels.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// WindowView is the read-only projection of one window.
type WindowView struct {
	ID           AppID          `json:"id"`
	Title        string         `json:"title"`
	Frame        geometry.Rect  `json:"frame"`
	Open         bool           `json:"open"`
	Minimized    bool           `json:"minimized"`
	Maximized    bool           `json:"maximized"`
	RestoreFrame *geometry.Rect `json:"restore_frame,omitempty"`
	// ZIndex is zero for windows that are not on the focus stack.
	ZIndex int  `json:"z_index,omitempty"`
	Active bool `json:"active"`
}

// Visible reports whether the window is painted on the desktop.
func (w WindowView) Visible() bool {
	return w.Open && !w.Minimized
}

// GestureView describes the in-flight gesture.
type GestureView struct {
	Kind      string `json:"kind"`
	App       AppID  `json:"app"`
	PointerID int    `json:"pointer_id"`
	Direction string `json:"direction,omitempty"`
}

// Snapshot is an immutable copy of everything the presentation layer may
// query.
type Snapshot struct {
	Mode          ViewMode       `json:"mode"`
	Viewport      Size           `json:"viewport"`
	Workspace     *geometry.Rect `json:"workspace,omitempty"`
	Windows       []WindowView   `json:"windows"`
	Open          []AppID        `json:"open"`
	Focus         []AppID        `json:"focus"`
	Active        AppID          `json:"active,omitempty"`
	Selection     []AppID        `json:"selection"`
	SelectionBox  *SelectionBox  `json:"selection_box,omitempty"`
	Gesture       *GestureView   `json:"gesture,omitempty"`
	Dragging      bool           `json:"dragging"`
	PhoneApp      AppID          `json:"phone_app,omitempty"`
	TabletApp     AppID          `json:"tablet_app,omitempty"`
	StartMenuOpen bool           `json:"start_menu_open"`
}

// Window looks up a window by id.
func (s Snapshot) Window(id AppID) (WindowView, bool) {
	for _, w := range s.Windows {
		if w.ID == id {
			return w, true
		}
	}
	return WindowView{}, false
}

// PaintOrder returns visible windows bottom to top.
func (s Snapshot) PaintOrder() []WindowView {
	var visible []WindowView
	for _, w := range s.Windows {
		if w.Visible() {
			visible = append(visible, w)
		}
	}
	sort.SliceStable(visible, func(i, j int) bool {
		return visible[i].ZIndex < visible[j].ZIndex
	})
	return visible
}

// Foreground returns the foreground app of a single-app mode.
func (s Snapshot) Foreground(mode ViewMode) AppID {
	switch mode {
	case ModePhone:
		return s.PhoneApp
	case ModeTablet:
		return s.TabletApp
	default:
		return NoApp
	}
}

// IsSelected reports whether id is in the icon selection.
func (s Snapshot) IsSelected(id AppID) bool {
	for _, sel := range s.Selection {
		if sel == id {
			return true
		}
	}
	return false
}
