package geometry

// Rect describes a rectangle in viewport pixels. A window frame and the
// workspace bounds share this shape.
type Rect struct {
	Top    int `json:"top" yaml:"top"`
	Left   int `json:"left" yaml:"left"`
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// Clamp bounds value to [min, max]. A degenerate range (max <= min) resolves
// to min, so callers never produce geometry outside the lower bound.
func Clamp(value, min, max int) int {
	if max <= min {
		return min
	}
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() int {
	return r.Left + r.Width
}

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() int {
	return r.Top + r.Height
}

// Translate moves r by (dx, dy).
func (r Rect) Translate(dx, dy int) Rect {
	r.Left += dx
	r.Top += dy
	return r
}

// Empty reports whether the rect covers no area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Contains reports whether the point lies inside r. The right and bottom
// edges are exclusive.
func (r Rect) Contains(x, y int) bool {
	return x >= r.Left && x < r.Right() && y >= r.Top && y < r.Bottom()
}

// Overlaps reports whether r and other are not disjoint. Edges are inclusive:
// rects that only touch along a border overlap.
func (r Rect) Overlaps(other Rect) bool {
	return !(r.Right() < other.Left ||
		r.Left > other.Right() ||
		r.Bottom() < other.Top ||
		r.Top > other.Bottom())
}

// Within reports whether r lies fully inside a bounds rect of the given size
// anchored at the origin.
func (r Rect) Within(width, height int) bool {
	return r.Left >= 0 && r.Top >= 0 && r.Right() <= width && r.Bottom() <= height
}

// Inset shrinks r by margin on every side and floors the result at
// minWidth x minHeight. The origin becomes (margin, margin) relative to r.
func (r Rect) Inset(margin, minWidth, minHeight int) Rect {
	width := r.Width - 2*margin
	if width < minWidth {
		width = minWidth
	}
	height := r.Height - 2*margin
	if height < minHeight {
		height = minHeight
	}
	return Rect{Top: margin, Left: margin, Width: width, Height: height}
}

// BoxFromPoints returns the axis-aligned rect spanned by two corners.
func BoxFromPoints(x1, y1, x2, y2 int) Rect {
	left, right := x1, x2
	if right < left {
		left, right = right, left
	}
	top, bottom := y1, y2
	if bottom < top {
		top, bottom = bottom, top
	}
	return Rect{Top: top, Left: left, Width: right - left, Height: bottom - top}
}
