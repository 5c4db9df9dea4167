package tui

import (
	"github.com/1broseidon/deskshell/internal/desktop"
	"github.com/1broseidon/deskshell/internal/geometry"
)

const (
	iconRows          = 2
	startButtonLabel  = "[ Start ]"
	taskButtonCols    = 16
	startMenuCols     = 24
	windowButtons     = "[_][□][x]"
	homeLabel         = "‹ Home"
	tileCols, tileGap = 14, 2
	tileRows          = 3
)

// grid converts between terminal cells and viewport pixels.
type grid struct {
	cellW, cellH int
}

// viewport is the pixel size of a cols x rows drawing area.
func (g grid) viewport(cols, rows int) desktop.Size {
	return desktop.Size{Width: cols * g.cellW, Height: rows * g.cellH}
}

// point returns the pixel at the centre of a cell.
func (g grid) point(col, row int) (int, int) {
	return col*g.cellW + g.cellW/2, row*g.cellH + g.cellH/2
}

// cells covers a pixel rectangle with whole cells.
func (g grid) cells(r geometry.Rect) cellRect {
	col := floorDiv(r.Left, g.cellW)
	row := floorDiv(r.Top, g.cellH)
	endCol := ceilDiv(r.Left+r.Width, g.cellW)
	endRow := ceilDiv(r.Top+r.Height, g.cellH)
	return cellRect{
		col:  col,
		row:  row,
		cols: max(1, endCol-col),
		rows: max(1, endRow-row),
	}
}

// pixels is the inverse of cells for cell-aligned rectangles.
func (g grid) pixels(c cellRect) geometry.Rect {
	return geometry.Rect{
		Top:    c.row * g.cellH,
		Left:   c.col * g.cellW,
		Width:  c.cols * g.cellW,
		Height: c.rows * g.cellH,
	}
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && a < 0 {
		q--
	}
	return q
}

func ceilDiv(a, b int) int {
	return -floorDiv(-a, b)
}

type cellRect struct {
	col, row, cols, rows int
}

func (c cellRect) contains(col, row int) bool {
	return col >= c.col && col < c.col+c.cols && row >= c.row && row < c.row+c.rows
}

func (c cellRect) lastCol() int { return c.col + c.cols - 1 }
func (c cellRect) lastRow() int { return c.row + c.rows - 1 }

// hitKind classifies what a terminal cell shows.
type hitKind int

const (
	hitBackground hitKind = iota
	hitIcon
	hitWindowBody
	hitTitle
	hitMinimize
	hitMaximize
	hitClose
	hitResize
	hitTaskbar
	hitTaskButton
	hitStartButton
	hitStartMenu
	hitStartMenuItem
	hitWidgetRail
	hitTile
	hitHome
)

type hit struct {
	kind hitKind
	app  desktop.AppID
	dir  desktop.Direction
}

// target maps a hit to the pointer target the engine expects.
func (h hit) target() desktop.Target {
	switch h.kind {
	case hitIcon:
		return desktop.TargetIcon
	case hitWindowBody, hitTitle, hitMinimize, hitMaximize, hitClose, hitResize:
		return desktop.TargetWindow
	case hitTaskbar, hitTaskButton:
		return desktop.TargetTaskbar
	case hitStartButton:
		return desktop.TargetStartButton
	case hitStartMenu, hitStartMenuItem:
		return desktop.TargetStartMenu
	case hitWidgetRail:
		return desktop.TargetWidgetRail
	default:
		return desktop.TargetBackground
	}
}

// shell holds everything needed to place chrome on the terminal.
type shell struct {
	grid     grid
	layout   desktop.ShellLayout
	dockSize int
	cols     int
	rows     int
}

func (s shell) size() desktop.Size {
	return s.grid.viewport(s.cols, s.rows)
}

func (s shell) railCols() int {
	return ceilDiv(s.layout.IconColumnWidth, s.grid.cellW)
}

func (s shell) taskbar() cellRect {
	vp := s.size()
	return s.grid.cells(s.layout.Taskbar(vp.Width, vp.Height))
}

func (s shell) widgetRail() cellRect {
	vp := s.size()
	return s.grid.cells(s.layout.WidgetRail(vp.Width, vp.Height))
}

// icons places the desktop icons in the icon column, top to bottom in
// catalog order.
func (s shell) icons(catalog desktop.Catalog) map[desktop.AppID]cellRect {
	out := make(map[desktop.AppID]cellRect, len(catalog))
	width := max(1, s.railCols()-2)
	for i, app := range catalog {
		out[app.ID] = cellRect{col: 1, row: 1 + i*(iconRows+1), cols: width, rows: iconRows}
	}
	return out
}

// iconBounds reports the icon cells in viewport pixels.
func (s shell) iconBounds(catalog desktop.Catalog) map[string]geometry.Rect {
	out := make(map[string]geometry.Rect, len(catalog))
	for id, c := range s.icons(catalog) {
		out[string(id)] = s.grid.pixels(c)
	}
	return out
}

// window returns the cells covered by a window frame.
func (s shell) window(ws geometry.Rect, w desktop.WindowView) cellRect {
	return s.grid.cells(w.Frame.Translate(ws.Left, ws.Top))
}

func (s shell) startButton() cellRect {
	tb := s.taskbar()
	return cellRect{col: tb.col, row: tb.row, cols: len(startButtonLabel), rows: tb.rows}
}

// taskButtons lays out one button per open window after the start button.
func (s shell) taskButtons(snap desktop.Snapshot) map[desktop.AppID]cellRect {
	tb := s.taskbar()
	out := make(map[desktop.AppID]cellRect, len(snap.Open))
	col := tb.col + len(startButtonLabel) + 1
	for _, id := range snap.Open {
		if col+taskButtonCols > tb.col+tb.cols {
			break
		}
		out[id] = cellRect{col: col, row: tb.row, cols: taskButtonCols, rows: tb.rows}
		col += taskButtonCols + 1
	}
	return out
}

func (s shell) startMenu(catalog desktop.Catalog) cellRect {
	tb := s.taskbar()
	rows := len(catalog) + 2
	return cellRect{col: tb.col, row: tb.row - rows, cols: startMenuCols, rows: rows}
}

// tiles lays the home screen grid out below the status bar.
func (s shell) tiles(catalog desktop.Catalog) map[desktop.AppID]cellRect {
	perRow := max(1, (s.cols-tileGap)/(tileCols+tileGap))
	out := make(map[desktop.AppID]cellRect, len(catalog))
	for i, app := range catalog {
		out[app.ID] = cellRect{
			col:  tileGap + (i%perRow)*(tileCols+tileGap),
			row:  2 + (i/perRow)*(tileRows+1),
			cols: tileCols,
			rows: tileRows,
		}
	}
	return out
}

// dock places the dock buttons on the last row.
func (s shell) dock(apps []desktop.AppSpec) map[desktop.AppID]cellRect {
	out := make(map[desktop.AppID]cellRect, len(apps))
	col := 1
	for _, app := range apps {
		width := len([]rune(app.Title)) + 2
		if col+width > s.cols {
			break
		}
		out[app.ID] = cellRect{col: col, row: s.rows - 1, cols: width, rows: 1}
		col += width + 1
	}
	return out
}

func (s shell) homeButton() cellRect {
	return cellRect{col: 1, row: 1, cols: len([]rune(homeLabel)), rows: 1}
}

// catalogOf rebuilds the application catalog from a snapshot, which lists
// every window in catalog order.
func catalogOf(snap desktop.Snapshot) desktop.Catalog {
	catalog := make(desktop.Catalog, 0, len(snap.Windows))
	for _, w := range snap.Windows {
		catalog = append(catalog, desktop.AppSpec{ID: w.ID, Title: w.Title})
	}
	return catalog
}

// hitTest finds what the cell at (col, row) shows. The topmost element wins.
func (s shell) hitTest(snap desktop.Snapshot, col, row int) hit {
	catalog := catalogOf(snap)
	if snap.Mode.SingleApp() {
		return s.hitSingleApp(snap, catalog, col, row)
	}

	if s.taskbar().contains(col, row) {
		if s.startButton().contains(col, row) {
			return hit{kind: hitStartButton}
		}
		for id, r := range s.taskButtons(snap) {
			if r.contains(col, row) {
				return hit{kind: hitTaskButton, app: id}
			}
		}
		return hit{kind: hitTaskbar}
	}

	if snap.StartMenuOpen {
		menu := s.startMenu(catalog)
		if menu.contains(col, row) {
			i := row - menu.row - 1
			if i >= 0 && i < len(catalog) {
				return hit{kind: hitStartMenuItem, app: catalog[i].ID}
			}
			return hit{kind: hitStartMenu}
		}
	}

	if snap.Workspace != nil {
		order := snap.PaintOrder()
		for i := len(order) - 1; i >= 0; i-- {
			w := order[i]
			r := s.window(*snap.Workspace, w)
			if r.contains(col, row) {
				return windowHit(r, w.ID, col, row)
			}
		}
	}

	if s.widgetRail().contains(col, row) {
		return hit{kind: hitWidgetRail}
	}
	for id, r := range s.icons(catalog) {
		if r.contains(col, row) {
			return hit{kind: hitIcon, app: id}
		}
	}
	return hit{kind: hitBackground}
}

// windowHit splits a window into its chrome regions. The title row drags,
// except for its corners and the caption buttons at its right end.
func windowHit(r cellRect, id desktop.AppID, col, row int) hit {
	x1, y1, x2, y2 := r.col, r.row, r.lastCol(), r.lastRow()
	resize := func(dir desktop.Direction) hit {
		return hit{kind: hitResize, app: id, dir: dir}
	}
	switch {
	case row == y1 && col == x1:
		return resize(desktop.CornerTopLeft)
	case row == y1 && col == x2:
		return resize(desktop.CornerTopRight)
	case row == y2 && col == x1:
		return resize(desktop.CornerBottomLeft)
	case row == y2 && col == x2:
		return resize(desktop.CornerBottomRight)
	case row == y1:
		buttons := x2 - len([]rune(windowButtons))
		switch {
		case col >= buttons && col < buttons+3:
			return hit{kind: hitMinimize, app: id}
		case col >= buttons+3 && col < buttons+6:
			return hit{kind: hitMaximize, app: id}
		case col >= buttons+6 && col < x2:
			return hit{kind: hitClose, app: id}
		}
		return hit{kind: hitTitle, app: id}
	case row == y2:
		return resize(desktop.EdgeBottom)
	case col == x1:
		return resize(desktop.EdgeLeft)
	case col == x2:
		return resize(desktop.EdgeRight)
	}
	return hit{kind: hitWindowBody, app: id}
}

func (s shell) hitSingleApp(snap desktop.Snapshot, catalog desktop.Catalog, col, row int) hit {
	if snap.Foreground(snap.Mode) != desktop.NoApp {
		if s.homeButton().contains(col, row) {
			return hit{kind: hitHome}
		}
		return hit{kind: hitWindowBody, app: snap.Foreground(snap.Mode)}
	}
	for id, r := range s.dock(desktop.DockApps(catalog, snap.Mode, s.dockSize)) {
		if r.contains(col, row) {
			return hit{kind: hitTile, app: id}
		}
	}
	for id, r := range s.tiles(catalog) {
		if r.contains(col, row) {
			return hit{kind: hitTile, app: id}
		}
	}
	return hit{kind: hitBackground}
}
