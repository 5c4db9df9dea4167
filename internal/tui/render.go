package tui

import (
	"fmt"
	"time"

	"github.com/1broseidon/deskshell/internal/desktop"
)

// draw paints a snapshot onto a fresh canvas the size of the shell.
func (s shell) draw(snap desktop.Snapshot, now time.Time) *canvas {
	c := newCanvas(s.cols, s.rows)
	if snap.Mode.SingleApp() {
		s.drawSingleApp(c, snap, now)
		return c
	}
	s.drawDesktop(c, snap, now)
	return c
}

func (s shell) drawDesktop(c *canvas, snap desktop.Snapshot, now time.Time) {
	catalog := catalogOf(snap)

	icons := s.icons(catalog)
	for _, app := range catalog {
		r := icons[app.ID]
		label := app.Title
		if snap.IsSelected(app.ID) {
			label = "[" + label + "]"
		}
		c.centered(cellRect{col: r.col - 1, row: r.row, cols: r.cols + 2, rows: 1}, r.row, "▣")
		c.centered(cellRect{col: r.col - 1, row: r.row + 1, cols: r.cols + 2, rows: 1}, r.row+1, label)
	}

	rail := s.widgetRail()
	c.box(rail, singleBorder)
	c.centered(rail, rail.row+1, formatDate(now))
	c.centered(rail, rail.row+2, formatClock(now))
	c.centered(rail, rail.row+4, fmt.Sprintf("%d open", len(snap.Open)))

	if snap.Workspace != nil {
		for _, w := range snap.PaintOrder() {
			s.drawWindow(c, s.window(*snap.Workspace, w), w)
		}
	}

	if box := snap.SelectionBox; box != nil && box.Active && !box.Degenerate() {
		c.box(s.grid.cells(box.Bounds()), dottedBorder)
	}

	if snap.StartMenuOpen {
		menu := s.startMenu(catalog)
		c.panel(menu, singleBorder)
		for i, app := range catalog {
			c.text(menu.col+2, menu.row+1+i, app.Title, menu.cols-3)
		}
	}

	tb := s.taskbar()
	c.fill(tb, ' ')
	c.text(tb.col, tb.row, startButtonLabel, 0)
	for id, r := range s.taskButtons(snap) {
		w, _ := snap.Window(id)
		label := w.Title
		switch {
		case w.Minimized:
			label = "_" + label
		case snap.Active == id:
			label = "*" + label
		}
		c.text(r.col, r.row, "["+padTo(label, r.cols-2)+"]", r.cols)
	}
	clock := formatClock(now)
	c.text(tb.lastCol()-len(clock), tb.row, clock, 0)
}

// drawWindow outlines a window with its title and caption buttons. The active
// window gets a double border.
func (s shell) drawWindow(c *canvas, r cellRect, w desktop.WindowView) {
	b := singleBorder
	if w.Active {
		b = doubleBorder
	}
	c.panel(r, b)

	buttons := []rune(windowButtons)
	titleRoom := r.cols - len(buttons) - 4
	if titleRoom > 0 {
		c.text(r.col+2, r.row, " "+w.Title+" ", titleRoom)
	}
	if r.cols > len(buttons)+2 {
		c.text(r.lastCol()-len(buttons), r.row, windowButtons, 0)
	}
	if r.rows > 3 {
		c.centered(r, r.row+r.rows/2, w.Title)
	}
}

func (s shell) drawSingleApp(c *canvas, snap desktop.Snapshot, now time.Time) {
	c.text(1, 0, formatClock(now), 0)
	mode := string(snap.Mode)
	c.text(s.cols-len(mode)-1, 0, mode, 0)

	if id := snap.Foreground(snap.Mode); id != desktop.NoApp {
		w, _ := snap.Window(id)
		c.text(s.homeButton().col, s.homeButton().row, homeLabel, 0)
		card := cellRect{col: 0, row: 2, cols: s.cols, rows: s.rows - 2}
		c.box(card, doubleBorder)
		c.centered(card, card.row+1, w.Title)
		return
	}

	catalog := catalogOf(snap)
	tiles := s.tiles(catalog)
	for _, app := range catalog {
		r := tiles[app.ID]
		c.box(r, singleBorder)
		c.centered(r, r.row+1, app.Title)
	}
	apps := desktop.DockApps(catalog, snap.Mode, s.dockSize)
	dock := s.dock(apps)
	for _, app := range apps {
		if r, ok := dock[app.ID]; ok {
			c.text(r.col, r.row, "["+app.Title+"]", 0)
		}
	}
}

func padTo(s string, width int) string {
	runes := []rune(s)
	if width <= 0 {
		return ""
	}
	if len(runes) > width {
		return string(runes[:width])
	}
	for len(runes) < width {
		runes = append(runes, ' ')
	}
	return string(runes)
}
