package desktop

import (
	"fmt"
	"strings"

	"github.com/1broseidon/deskshell/internal/geometry"
)

// Target classifies what a desktop pointer-down landed on. The presentation
// layer decides this from its own element tree.
type Target int

const (
	TargetBackground Target = iota
	TargetWindow
	TargetTaskbar
	TargetStartMenu
	TargetStartButton
	TargetWidgetRail
	TargetIcon
)

var targetNames = map[Target]string{
	TargetBackground:  "background",
	TargetWindow:      "window",
	TargetTaskbar:     "taskbar",
	TargetStartMenu:   "start-menu",
	TargetStartButton: "start-button",
	TargetWidgetRail:  "widget-rail",
	TargetIcon:        "icon",
}

func (t Target) String() string {
	if name, ok := targetNames[t]; ok {
		return name
	}
	return "unknown"
}

// ParseTarget validates a target name.
func ParseTarget(name string) (Target, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	if normalized == "" {
		return TargetBackground, nil
	}
	for t, n := range targetNames {
		if n == normalized {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown pointer target %q", name)
}

// SelectionBox is the rubber band drawn across the desktop background.
type SelectionBox struct {
	Active   bool `json:"active"`
	StartX   int  `json:"start_x"`
	StartY   int  `json:"start_y"`
	CurrentX int  `json:"current_x"`
	CurrentY int  `json:"current_y"`
}

// Bounds returns the axis-aligned rectangle spanned by the box.
func (b SelectionBox) Bounds() geometry.Rect {
	return geometry.BoxFromPoints(b.StartX, b.StartY, b.CurrentX, b.CurrentY)
}

// Degenerate reports whether the box has not moved from its anchor.
func (b SelectionBox) Degenerate() bool {
	return b.StartX == b.CurrentX && b.StartY == b.CurrentY
}

// SelectIcons returns every catalog icon not disjoint from box, in catalog
// order. A degenerate box selects nothing.
func SelectIcons(catalog Catalog, icons IconLocator, box SelectionBox) []AppID {
	if icons == nil || box.Degenerate() {
		return nil
	}
	bounds := box.Bounds()
	var selected []AppID
	for _, app := range catalog {
		r, ok := icons.IconBounds(app.ID)
		if !ok {
			continue
		}
		if r.Overlaps(bounds) {
			selected = append(selected, app.ID)
		}
	}
	return selected
}
