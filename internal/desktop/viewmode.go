package desktop

import (
	"fmt"
	"strings"
)

// ViewMode is the presentation variant derived from viewport width.
type ViewMode string

const (
	ModeDesktop ViewMode = "desktop"
	ModeTablet  ViewMode = "tablet"
	ModePhone   ViewMode = "phone"
)

// ParseViewMode validates a mode name.
func ParseViewMode(name string) (ViewMode, error) {
	switch ViewMode(strings.ToLower(strings.TrimSpace(name))) {
	case ModeDesktop:
		return ModeDesktop, nil
	case ModeTablet:
		return ModeTablet, nil
	case ModePhone:
		return ModePhone, nil
	default:
		return "", fmt.Errorf("unknown view mode %q (expected desktop, tablet or phone)", name)
	}
}

// SingleApp reports whether the mode shows one foreground application
// instead of free-floating windows.
func (m ViewMode) SingleApp() bool {
	return m == ModePhone || m == ModeTablet
}

// ModeFor derives the view mode from a viewport width.
func (b Breakpoints) ModeFor(width int) ViewMode {
	switch {
	case width < b.PhoneBelow:
		return ModePhone
	case width <= b.TabletMax:
		return ModeTablet
	default:
		return ModeDesktop
	}
}

// DockApps returns the applications pinned to the dock of a single-app mode.
// The phone dock is truncated to dockSize entries; the tablet dock shows the
// whole catalog. Desktop mode has no dock.
func DockApps(catalog Catalog, mode ViewMode, dockSize int) []AppSpec {
	switch mode {
	case ModePhone:
		if dockSize < len(catalog) {
			return append([]AppSpec(nil), catalog[:max(0, dockSize)]...)
		}
		return append([]AppSpec(nil), catalog...)
	case ModeTablet:
		return append([]AppSpec(nil), catalog...)
	default:
		return nil
	}
}
