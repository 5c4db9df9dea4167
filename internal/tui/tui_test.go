package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/1broseidon/deskshell/internal/config"
	"github.com/1broseidon/deskshell/internal/daemon"
	"github.com/1broseidon/deskshell/internal/desktop"
	"github.com/1broseidon/deskshell/internal/geometry"
)

var fixedNow = time.Date(2026, time.March, 2, 12, 34, 56, 0, time.UTC)

// newTestModel sizes a 200x57 terminal: 1600x896 pixels above the help bar,
// which is desktop mode with the terminal window open.
func newTestModel(t *testing.T, cols, rows int) (model, *daemon.Local) {
	t.Helper()
	cfg := config.DefaultConfig()
	local := daemon.NewLocal(cfg.NewDesktop(), nil)
	m := newModel(local, newShell(cfg), func() time.Time { return fixedNow }, zerolog.Nop())
	return update(t, m, tea.WindowSizeMsg{Width: cols, Height: rows}), local
}

func update(t *testing.T, m model, msg tea.Msg) model {
	t.Helper()
	next, _ := m.Update(msg)
	out := next.(model)
	if out.err != nil {
		t.Fatalf("update %T: %v", msg, out.err)
	}
	return out
}

func press(col, row int) tea.MouseMsg {
	return tea.MouseMsg{X: col, Y: row, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}
}

func motion(col, row int) tea.MouseMsg {
	return tea.MouseMsg{X: col, Y: row, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft}
}

func release(col, row int) tea.MouseMsg {
	return tea.MouseMsg{X: col, Y: row, Action: tea.MouseActionRelease, Button: tea.MouseButtonNone}
}

func keyPress(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestGridCells(t *testing.T) {
	g := grid{cellW: 8, cellH: 16}
	tests := []struct {
		name string
		in   geometry.Rect
		want cellRect
	}{
		{"aligned", geometry.Rect{Top: 16, Left: 8, Width: 80, Height: 32}, cellRect{col: 1, row: 1, cols: 10, rows: 2}},
		{"partial cells", geometry.Rect{Top: 100, Left: 316, Width: 760, Height: 530}, cellRect{col: 39, row: 6, cols: 96, rows: 34}},
		{"tiny", geometry.Rect{Top: 3, Left: 3, Width: 1, Height: 1}, cellRect{col: 0, row: 0, cols: 1, rows: 1}},
		{"negative origin", geometry.Rect{Top: -8, Left: -4, Width: 8, Height: 16}, cellRect{col: -1, row: -1, cols: 2, rows: 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := g.cells(tt.in); got != tt.want {
				t.Fatalf("cells(%+v) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}

	if x, y := g.point(3, 2); x != 28 || y != 40 {
		t.Fatalf("point(3,2) = (%d,%d), want (28,40)", x, y)
	}
}

func TestWindowHit(t *testing.T) {
	r := cellRect{col: 10, row: 5, cols: 20, rows: 10}
	tests := []struct {
		col, row int
		kind     hitKind
		dir      desktop.Direction
	}{
		{10, 5, hitResize, desktop.CornerTopLeft},
		{29, 5, hitResize, desktop.CornerTopRight},
		{10, 14, hitResize, desktop.CornerBottomLeft},
		{29, 14, hitResize, desktop.CornerBottomRight},
		{15, 14, hitResize, desktop.EdgeBottom},
		{10, 8, hitResize, desktop.EdgeLeft},
		{29, 8, hitResize, desktop.EdgeRight},
		{15, 5, hitTitle, 0},
		{20, 5, hitMinimize, 0},
		{24, 5, hitMaximize, 0},
		{28, 5, hitClose, 0},
		{15, 8, hitWindowBody, 0},
	}
	for _, tt := range tests {
		got := windowHit(r, desktop.AppAbout, tt.col, tt.row)
		if got.kind != tt.kind || got.dir != tt.dir || got.app != desktop.AppAbout {
			t.Errorf("windowHit(%d,%d) = %+v, want kind %d dir %s", tt.col, tt.row, got, tt.kind, tt.dir)
		}
	}
}

func TestHitTest_Desktop(t *testing.T) {
	m, _ := newTestModel(t, 200, 57)
	tests := []struct {
		name     string
		col, row int
		want     hit
	}{
		{"icon", 3, 1, hit{kind: hitIcon, app: desktop.AppAbout}},
		{"second icon", 3, 5, hit{kind: hitIcon, app: desktop.AppExperience}},
		{"background", 20, 2, hit{kind: hitBackground}},
		{"title", 60, 6, hit{kind: hitTitle, app: desktop.AppTerminal}},
		{"close", 132, 6, hit{kind: hitClose, app: desktop.AppTerminal}},
		{"body", 60, 20, hit{kind: hitWindowBody, app: desktop.AppTerminal}},
		{"resize corner", 134, 39, hit{kind: hitResize, app: desktop.AppTerminal, dir: desktop.CornerBottomRight}},
		{"widget rail", 180, 10, hit{kind: hitWidgetRail}},
		{"start button", 2, 54, hit{kind: hitStartButton}},
		{"task button", 12, 55, hit{kind: hitTaskButton, app: desktop.AppTerminal}},
		{"taskbar", 100, 54, hit{kind: hitTaskbar}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.shell.hitTest(m.snap, tt.col, tt.row); got != tt.want {
				t.Fatalf("hitTest(%d,%d) = %+v, want %+v", tt.col, tt.row, got, tt.want)
			}
		})
	}

	if got := (hit{kind: hitTitle}).target(); got != desktop.TargetWindow {
		t.Fatalf("title target = %s", got)
	}
	if got := (hit{kind: hitBackground}).target(); got != desktop.TargetBackground {
		t.Fatalf("background target = %s", got)
	}
}

func TestModel_ResizeReportsViewportAndIcons(t *testing.T) {
	m, local := newTestModel(t, 200, 57)

	if m.snap.Mode != desktop.ModeDesktop || m.snap.Viewport != (desktop.Size{Width: 1600, Height: 896}) {
		t.Fatalf("mode=%s viewport=%+v", m.snap.Mode, m.snap.Viewport)
	}
	if ws := m.snap.Workspace; ws == nil || *ws != (geometry.Rect{Top: 0, Left: 96, Width: 1280, Height: 864}) {
		t.Fatalf("workspace = %+v", m.snap.Workspace)
	}

	// Rubber band over the first icon's reported bounds.
	m = update(t, m, press(2, 0))
	m = update(t, m, motion(12, 3))
	m = update(t, m, release(12, 3))
	snap, _ := local.Snapshot(context.Background())
	if len(snap.Selection) != 1 || snap.Selection[0] != desktop.AppAbout {
		t.Fatalf("selection = %v", snap.Selection)
	}
	if snap.SelectionBox != nil {
		t.Fatal("selection box should end with the release")
	}
}

func TestModel_DragWindowByTitle(t *testing.T) {
	m, _ := newTestModel(t, 200, 57)

	m = update(t, m, press(60, 6))
	if !m.snap.Dragging {
		t.Fatal("expected a drag gesture after pressing the title bar")
	}
	m = update(t, m, motion(50, 10))
	m = update(t, m, release(50, 10))

	w, _ := m.snap.Window(desktop.AppTerminal)
	if w.Frame.Left != 140 || w.Frame.Top != 164 {
		t.Fatalf("frame = %+v, want left 140 top 164", w.Frame)
	}
	if m.snap.Dragging || m.pressed {
		t.Fatal("gesture should end on release")
	}
}

func TestModel_CaptionButtons(t *testing.T) {
	m, _ := newTestModel(t, 200, 57)

	m = update(t, m, press(129, 6))
	m = update(t, m, release(129, 6))
	if w, _ := m.snap.Window(desktop.AppTerminal); !w.Maximized {
		t.Fatal("maximize button should maximize")
	}

	// Maximized: frame {8,8,1264,848} sits at cells 13..170 x 0..53.
	m = update(t, m, press(168, 0))
	m = update(t, m, release(168, 0))
	if w, _ := m.snap.Window(desktop.AppTerminal); w.Open {
		t.Fatalf("close button should close, got %+v", w)
	}
}

func TestModel_IconDoubleClickOpens(t *testing.T) {
	m, _ := newTestModel(t, 200, 57)

	m = update(t, m, press(3, 1))
	m = update(t, m, release(3, 1))
	if !m.snap.IsSelected(desktop.AppAbout) {
		t.Fatalf("selection = %v", m.snap.Selection)
	}
	if w, _ := m.snap.Window(desktop.AppAbout); w.Open {
		t.Fatal("single click should not open")
	}

	m = update(t, m, press(3, 1))
	m = update(t, m, release(3, 1))
	if m.snap.Active != desktop.AppAbout {
		t.Fatalf("active = %q, want about", m.snap.Active)
	}
}

func TestModel_TaskbarAndStartMenu(t *testing.T) {
	m, _ := newTestModel(t, 200, 57)

	m = update(t, m, press(12, 54))
	m = update(t, m, release(12, 54))
	if w, _ := m.snap.Window(desktop.AppTerminal); !w.Minimized {
		t.Fatal("taskbar click on the active window should minimize it")
	}

	m = update(t, m, press(2, 54))
	m = update(t, m, release(2, 54))
	if !m.snap.StartMenuOpen {
		t.Fatal("start button should open the menu")
	}

	// Menu rows 45..53, items from 46 in catalog order.
	m = update(t, m, press(3, 47))
	m = update(t, m, release(3, 47))
	if m.snap.Active != desktop.AppExperience || m.snap.StartMenuOpen {
		t.Fatalf("active=%q menu=%v", m.snap.Active, m.snap.StartMenuOpen)
	}
}

func TestModel_Keys(t *testing.T) {
	m, _ := newTestModel(t, 200, 57)

	m = update(t, m, keyPress("1"))
	if m.snap.Active != desktop.AppAbout {
		t.Fatalf("active = %q", m.snap.Active)
	}
	m = update(t, m, keyPress("m"))
	if w, _ := m.snap.Window(desktop.AppAbout); w.Minimized || m.snap.Active != desktop.AppAbout {
		t.Fatal("window management keys are not bound")
	}
	m = update(t, m, keyPress("s"))
	if !m.snap.StartMenuOpen {
		t.Fatal("s should open the start menu")
	}
	m = update(t, m, keyPress("?"))
	if !m.help.ShowAll {
		t.Fatal("? should toggle full help")
	}

	if _, cmd := m.Update(keyPress("q")); cmd == nil {
		t.Fatal("q should quit")
	}

	next, _ := m.Update(keyPress("r"))
	if next.(model).err == nil {
		t.Fatal("reload without a rebuild func should surface an error")
	}
}

func TestModel_RefreshPicksUpOutsideChanges(t *testing.T) {
	m, local := newTestModel(t, 200, 57)
	if m.snap.Active != desktop.AppTerminal {
		t.Fatalf("active = %q", m.snap.Active)
	}

	// Another client closes the terminal and opens projects.
	ctx := context.Background()
	if _, err := local.Close(ctx, "terminal"); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	if _, err := local.Open(ctx, "projects"); err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	if m.snap.Active != desktop.AppTerminal {
		t.Fatal("snapshot should be stale until the next refresh")
	}

	next, cmd := m.Update(refreshMsg{})
	m = next.(model)
	if cmd == nil {
		t.Fatal("refresh should schedule the next refresh")
	}
	if m.snap.Active != desktop.AppProjects {
		t.Fatalf("active after refresh = %q, want projects", m.snap.Active)
	}
	if hit := m.shell.hitTest(m.snap, 132, 6); hit.app == desktop.AppTerminal {
		t.Fatal("hit testing should use the refreshed geometry")
	}
}

func TestModel_PhoneHome(t *testing.T) {
	// 80x41 is 640x640 pixels.
	m, _ := newTestModel(t, 80, 41)
	if m.snap.Mode != desktop.ModePhone {
		t.Fatalf("mode = %s", m.snap.Mode)
	}

	m = update(t, m, press(5, 3))
	if m.snap.PhoneApp != desktop.AppAbout {
		t.Fatalf("phone app = %q", m.snap.PhoneApp)
	}
	if !strings.Contains(m.View(), homeLabel) {
		t.Fatal("foreground card should offer the home button")
	}

	m = update(t, m, press(2, 1))
	if m.snap.PhoneApp != desktop.NoApp {
		t.Fatalf("phone app after home = %q", m.snap.PhoneApp)
	}

	// The dock on the last row holds the first five apps.
	m = update(t, m, press(2, 39))
	if m.snap.PhoneApp != desktop.AppAbout {
		t.Fatalf("dock tap: phone app = %q", m.snap.PhoneApp)
	}
}

func TestDraw_Desktop(t *testing.T) {
	m, _ := newTestModel(t, 200, 57)
	c := m.shell.draw(m.snap, fixedNow)

	if got := c.at(39, 6); got != '╔' {
		t.Fatalf("active window corner = %q, want double border", got)
	}
	out := strings.Join(c.lines(), "\n")
	for _, want := range []string{"Security-Terminal", startButtonLabel, "12:34:56", "Monday, Mar 2, 2026", windowButtons, "About.me"} {
		if !strings.Contains(out, want) {
			t.Errorf("render missing %q", want)
		}
	}
}

func TestCanvasClipsWrites(t *testing.T) {
	c := newCanvas(4, 2)
	c.text(2, 0, "hello", 0)
	c.set(-1, 0, 'x')
	c.set(0, 5, 'x')
	c.box(cellRect{col: 0, row: 0, cols: 1, rows: 1}, singleBorder)

	got := c.lines()
	if got[0] != "  he" || got[1] != "    " {
		t.Fatalf("lines = %q", got)
	}
}

func TestClockFormats(t *testing.T) {
	if got := formatClock(fixedNow); got != "12:34:56" {
		t.Fatalf("formatClock() = %q", got)
	}
	if got := formatDate(fixedNow); got != "Monday, Mar 2, 2026" {
		t.Fatalf("formatDate() = %q", got)
	}
}
