package tui

import "strings"

type border struct {
	h, v, tl, tr, bl, br rune
}

var (
	singleBorder = border{'─', '│', '┌', '┐', '└', '┘'}
	doubleBorder = border{'═', '║', '╔', '╗', '╚', '╝'}
	dottedBorder = border{'┄', '┆', '┌', '┐', '└', '┘'}
)

// canvas is a fixed-size grid of runes. Writes outside it are dropped.
type canvas struct {
	cells         [][]rune
	width, height int
}

func newCanvas(width, height int) *canvas {
	width, height = max(0, width), max(0, height)
	cells := make([][]rune, height)
	for i := range cells {
		cells[i] = []rune(strings.Repeat(" ", width))
	}
	return &canvas{cells: cells, width: width, height: height}
}

func (c *canvas) set(col, row int, r rune) {
	if col < 0 || row < 0 || col >= c.width || row >= c.height {
		return
	}
	c.cells[row][col] = r
}

func (c *canvas) at(col, row int) rune {
	if col < 0 || row < 0 || col >= c.width || row >= c.height {
		return 0
	}
	return c.cells[row][col]
}

// text writes s from (col, row), truncated to limit runes when limit > 0.
func (c *canvas) text(col, row int, s string, limit int) {
	for i, r := range []rune(s) {
		if limit > 0 && i >= limit {
			return
		}
		c.set(col+i, row, r)
	}
}

// centered writes s centred inside r on the given row.
func (c *canvas) centered(r cellRect, row int, s string) {
	runes := []rune(s)
	inner := r.cols - 2
	if inner <= 0 {
		return
	}
	if len(runes) > inner {
		runes = runes[:inner]
	}
	c.text(r.col+1+(inner-len(runes))/2, row, string(runes), 0)
}

func (c *canvas) fill(r cellRect, ch rune) {
	for row := r.row; row < r.row+r.rows; row++ {
		for col := r.col; col < r.col+r.cols; col++ {
			c.set(col, row, ch)
		}
	}
}

// box draws the outline of r. Rectangles smaller than 2x2 are skipped.
func (c *canvas) box(r cellRect, b border) {
	if r.cols < 2 || r.rows < 2 {
		return
	}
	x1, y1, x2, y2 := r.col, r.row, r.lastCol(), r.lastRow()
	for x := x1; x <= x2; x++ {
		c.set(x, y1, b.h)
		c.set(x, y2, b.h)
	}
	for y := y1; y <= y2; y++ {
		c.set(x1, y, b.v)
		c.set(x2, y, b.v)
	}
	c.set(x1, y1, b.tl)
	c.set(x2, y1, b.tr)
	c.set(x1, y2, b.bl)
	c.set(x2, y2, b.br)
}

// panel clears r and outlines it.
func (c *canvas) panel(r cellRect, b border) {
	c.fill(r, ' ')
	c.box(r, b)
}

func (c *canvas) lines() []string {
	out := make([]string, c.height)
	for i, row := range c.cells {
		out[i] = string(row)
	}
	return out
}
