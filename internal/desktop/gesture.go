package desktop

import (
	"fmt"
	"strings"

	"github.com/1broseidon/deskshell/internal/geometry"
)

// Button identifies a pointer button using DOM numbering.
type Button int

const (
	ButtonPrimary   Button = 0
	ButtonAuxiliary Button = 1
	ButtonSecondary Button = 2
)

// PointerEvent is a pointer sample in viewport coordinates.
type PointerEvent struct {
	PointerID int    `json:"pointer_id"`
	X         int    `json:"x"`
	Y         int    `json:"y"`
	Button    Button `json:"button"`
}

// Direction is a resize handle: one edge or a corner formed by two edges.
type Direction uint8

const (
	EdgeTop Direction = 1 << iota
	EdgeRight
	EdgeBottom
	EdgeLeft
)

// Corner handles.
const (
	CornerTopLeft     = EdgeTop | EdgeLeft
	CornerTopRight    = EdgeTop | EdgeRight
	CornerBottomLeft  = EdgeBottom | EdgeLeft
	CornerBottomRight = EdgeBottom | EdgeRight
)

// Directions lists the eight valid resize handles.
var Directions = []Direction{
	EdgeTop, EdgeRight, EdgeBottom, EdgeLeft,
	CornerTopLeft, CornerTopRight, CornerBottomLeft, CornerBottomRight,
}

// Has reports whether d includes edge.
func (d Direction) Has(edge Direction) bool {
	return d&edge != 0
}

// Valid reports whether d is one of the eight handles.
func (d Direction) Valid() bool {
	for _, v := range Directions {
		if d == v {
			return true
		}
	}
	return false
}

func (d Direction) String() string {
	var parts []string
	if d.Has(EdgeTop) {
		parts = append(parts, "top")
	}
	if d.Has(EdgeBottom) {
		parts = append(parts, "bottom")
	}
	if d.Has(EdgeLeft) {
		parts = append(parts, "left")
	}
	if d.Has(EdgeRight) {
		parts = append(parts, "right")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "-")
}

// ParseDirection accepts the handle names produced by Direction.String.
func ParseDirection(name string) (Direction, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	for _, d := range Directions {
		if d.String() == normalized {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown resize direction %q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Direction) UnmarshalText(text []byte) error {
	parsed, err := ParseDirection(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// GestureKind tags the active gesture.
type GestureKind int

const (
	GestureMove GestureKind = iota
	GestureResize
)

func (k GestureKind) String() string {
	switch k {
	case GestureMove:
		return "move"
	case GestureResize:
		return "resize"
	default:
		return "unknown"
	}
}

// Gesture is the single in-flight pointer interaction. Move gestures use the
// offset fields; resize gestures use Direction, StartX/StartY and StartFrame.
type Gesture struct {
	Kind      GestureKind
	App       AppID
	PointerID int

	OffsetX int
	OffsetY int

	Direction  Direction
	StartX     int
	StartY     int
	StartFrame geometry.Rect
}

// MoveFrame positions frame so that its origin sits at (left, top), clamped
// to keep the whole frame inside a workspace of the given size.
func MoveFrame(frame geometry.Rect, left, top int, workspace geometry.Rect) geometry.Rect {
	frame.Left = geometry.Clamp(left, 0, max(0, workspace.Width-frame.Width))
	frame.Top = geometry.Clamp(top, 0, max(0, workspace.Height-frame.Height))
	return frame
}

// ResizeFrame applies a pointer delta to start for handle dir. Each edge is
// clamped on its own, then the opposite edge is held fixed, then a final pass
// keeps the frame inside the workspace.
func ResizeFrame(start geometry.Rect, dir Direction, dx, dy int, workspace geometry.Rect, minWidth, minHeight int) geometry.Rect {
	next := start

	if dir.Has(EdgeRight) {
		next.Width = geometry.Clamp(start.Width+dx, minWidth, workspace.Width-start.Left)
	}
	if dir.Has(EdgeBottom) {
		next.Height = geometry.Clamp(start.Height+dy, minHeight, workspace.Height-start.Top)
	}
	if dir.Has(EdgeLeft) {
		next.Left = geometry.Clamp(start.Left+dx, 0, start.Left+start.Width-minWidth)
		next.Width = start.Width + (start.Left - next.Left)
	}
	if dir.Has(EdgeTop) {
		next.Top = geometry.Clamp(start.Top+dy, 0, start.Top+start.Height-minHeight)
		next.Height = start.Height + (start.Top - next.Top)
	}

	next.Width = min(next.Width, workspace.Width-next.Left)
	next.Height = min(next.Height, workspace.Height-next.Top)
	return next
}
