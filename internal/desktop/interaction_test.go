package desktop

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/deskshell/internal/geometry"
)

func at(pointer, x, y int) PointerEvent {
	return PointerEvent{PointerID: pointer, X: x, Y: y}
}

func TestDragMovesAndClamps(t *testing.T) {
	d := newTestDesktop(t)
	// terminal starts at left 220, top 100 inside a workspace anchored at x=100.
	d.StartDrag(AppTerminal, at(1, 100+220+10, 100+5))
	g, ok := d.Gesture()
	require.True(t, ok)
	assert.Equal(t, GestureMove, g.Kind)
	assert.Equal(t, 10, g.OffsetX)
	assert.Equal(t, 5, g.OffsetY)

	d.PointerMove(at(1, 100+300+10, 200+5))
	assert.Equal(t, geometry.Rect{Top: 200, Left: 300, Width: 760, Height: 530}, frameOf(t, d, AppTerminal))

	d.PointerMove(at(1, 5000, 5000))
	assert.Equal(t, geometry.Rect{Top: 270, Left: 440, Width: 760, Height: 530}, frameOf(t, d, AppTerminal))

	d.PointerMove(at(1, -500, -500))
	assert.Equal(t, geometry.Rect{Top: 0, Left: 0, Width: 760, Height: 530}, frameOf(t, d, AppTerminal))

	d.PointerUp(at(1, -500, -500))
	_, ok = d.Gesture()
	assert.False(t, ok)
	assert.False(t, d.Snapshot().Dragging)
}

func TestDragFocusesWindow(t *testing.T) {
	d := newTestDesktop(t)
	d.Open(AppAbout)
	d.StartDrag(AppTerminal, at(1, 400, 150))
	assert.Equal(t, AppTerminal, d.Snapshot().Active)
}

func TestGesturePreconditions(t *testing.T) {
	t.Run("maximized window", func(t *testing.T) {
		d := newTestDesktop(t)
		d.ToggleMaximize(AppTerminal)
		d.StartDrag(AppTerminal, at(1, 200, 200))
		d.StartResize(AppTerminal, EdgeRight, at(1, 200, 200))
		_, ok := d.Gesture()
		assert.False(t, ok)
	})

	t.Run("single-app mode", func(t *testing.T) {
		d := newTestDesktop(t)
		d.SetViewport(900, 700)
		d.StartDrag(AppTerminal, at(1, 200, 200))
		_, ok := d.Gesture()
		assert.False(t, ok)
	})

	t.Run("closed window", func(t *testing.T) {
		d := newTestDesktop(t)
		d.StartDrag(AppAbout, at(1, 200, 200))
		d.StartResize(AppAbout, EdgeRight, at(1, 200, 200))
		_, ok := d.Gesture()
		assert.False(t, ok)

		d.PointerMove(at(1, 400, 400))
		snap := d.Snapshot()
		assert.Equal(t, []AppID{AppTerminal}, snap.Open)
		assert.Equal(t, []AppID{AppTerminal}, snap.Focus)
		assert.Equal(t, DefaultCatalog()[0].Frame, frameOf(t, d, AppAbout))
	})

	t.Run("minimized window", func(t *testing.T) {
		d := newTestDesktop(t)
		d.Open(AppAbout)
		d.Minimize(AppTerminal)
		d.StartResize(AppTerminal, EdgeRight, at(1, 200, 200))
		d.StartDrag(AppTerminal, at(1, 200, 200))
		_, ok := d.Gesture()
		assert.False(t, ok)

		snap := d.Snapshot()
		assert.Equal(t, AppAbout, snap.Active)
		assert.Equal(t, []AppID{AppAbout}, snap.Focus)
	})

	t.Run("invalid direction", func(t *testing.T) {
		d := newTestDesktop(t)
		d.StartResize(AppTerminal, EdgeLeft|EdgeRight, at(1, 200, 200))
		d.StartResize(AppTerminal, 0, at(1, 200, 200))
		_, ok := d.Gesture()
		assert.False(t, ok)
	})
}

func TestNewGestureSupersedesOld(t *testing.T) {
	d := newTestDesktop(t)
	d.Open(AppAbout)
	d.StartDrag(AppTerminal, at(1, 400, 150))
	d.StartResize(AppAbout, CornerBottomRight, at(2, 700, 500))

	g, ok := d.Gesture()
	require.True(t, ok)
	assert.Equal(t, AppAbout, g.App)
	assert.Equal(t, GestureResize, g.Kind)
	assert.Equal(t, 2, g.PointerID)
}

func TestForeignPointerUpKeepsGesture(t *testing.T) {
	d := newTestDesktop(t)
	d.StartDrag(AppTerminal, at(1, 400, 150))
	before := frameOf(t, d, AppTerminal)

	d.PointerMove(at(2, 600, 400))
	assert.Equal(t, before, frameOf(t, d, AppTerminal), "foreign pointer does not move the window")

	d.PointerUp(at(2, 600, 400))
	_, ok := d.Gesture()
	assert.True(t, ok)

	d.LostPointerCapture(2)
	_, ok = d.Gesture()
	assert.True(t, ok)

	d.LostPointerCapture(1)
	_, ok = d.Gesture()
	assert.False(t, ok)
}

func TestModeSwitchMidGesture(t *testing.T) {
	d := newTestDesktop(t)
	d.StartDrag(AppTerminal, at(1, 400, 150))
	before := frameOf(t, d, AppTerminal)

	d.SetViewport(600, 900)
	require.Equal(t, ModePhone, d.Mode())

	d.PointerMove(at(1, 800, 500))
	assert.Equal(t, before, frameOf(t, d, AppTerminal), "moves are ignored without a workspace")
	_, ok := d.Gesture()
	assert.True(t, ok, "gesture stays open across the mode switch")

	d.PointerUp(at(1, 800, 500))
	_, ok = d.Gesture()
	assert.False(t, ok)
}

func TestResizeKeepsOppositeEdgeFixed(t *testing.T) {
	ws := geometry.Rect{Width: 1200, Height: 800}
	start := geometry.Rect{Top: 100, Left: 100, Width: 200, Height: 200}

	right := ResizeFrame(start, EdgeRight, 50, 0, ws, 100, 100)
	assert.Equal(t, 100, right.Left)
	assert.Equal(t, 250, right.Width)

	left := ResizeFrame(start, EdgeLeft, 50, 0, ws, 100, 100)
	assert.Equal(t, 150, left.Left)
	assert.Equal(t, 150, left.Width)
	assert.Equal(t, start.Right(), left.Right())
}

func TestResizeFrameDirections(t *testing.T) {
	ws := geometry.Rect{Width: 1200, Height: 800}
	start := geometry.Rect{Top: 200, Left: 300, Width: 400, Height: 300}

	tests := []struct {
		name   string
		dir    Direction
		dx, dy int
		want   geometry.Rect
	}{
		{"top grows", EdgeTop, 0, -50, geometry.Rect{Top: 150, Left: 300, Width: 400, Height: 350}},
		{"top stops at min", EdgeTop, 0, 500, geometry.Rect{Top: 280, Left: 300, Width: 400, Height: 220}},
		{"top stops at workspace", EdgeTop, 0, -900, geometry.Rect{Top: 0, Left: 300, Width: 400, Height: 500}},
		{"right stops at workspace", EdgeRight, 2000, 0, geometry.Rect{Top: 200, Left: 300, Width: 900, Height: 300}},
		{"right stops at min", EdgeRight, -300, 0, geometry.Rect{Top: 200, Left: 300, Width: 320, Height: 300}},
		{"bottom", EdgeBottom, 0, 80, geometry.Rect{Top: 200, Left: 300, Width: 400, Height: 380}},
		{"bottom stops at workspace", EdgeBottom, 0, 900, geometry.Rect{Top: 200, Left: 300, Width: 400, Height: 600}},
		{"left stops at min", EdgeLeft, 300, 0, geometry.Rect{Top: 200, Left: 380, Width: 320, Height: 300}},
		{"top-left", CornerTopLeft, -100, -100, geometry.Rect{Top: 100, Left: 200, Width: 500, Height: 400}},
		{"top-right", CornerTopRight, 100, -100, geometry.Rect{Top: 100, Left: 300, Width: 500, Height: 400}},
		{"bottom-left", CornerBottomLeft, -100, 100, geometry.Rect{Top: 200, Left: 200, Width: 500, Height: 400}},
		{"bottom-right", CornerBottomRight, 100, 100, geometry.Rect{Top: 200, Left: 300, Width: 500, Height: 400}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResizeFrame(start, tt.dir, tt.dx, tt.dy, ws, DefaultMinWindowWidth, DefaultMinWindowHeight)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResizeGestureUsesStartFrame(t *testing.T) {
	d := newTestDesktop(t)
	d.StartResize(AppTerminal, EdgeRight, at(1, 1080, 300))
	d.PointerMove(at(1, 1130, 300))
	d.PointerMove(at(1, 1180, 300))

	frame := frameOf(t, d, AppTerminal)
	assert.Equal(t, 220, frame.Left)
	assert.Equal(t, 860, frame.Width, "deltas are measured from the gesture start, not accumulated")
}

func TestFrameContainmentProperty(t *testing.T) {
	// Large enough to hold every designed initial frame.
	ws := geometry.Rect{Left: 100, Width: 1400, Height: 900}
	d := New(DefaultCatalog(), DefaultSettings(), WithWorkspace(func() (geometry.Rect, bool) {
		return ws, true
	}))
	for _, app := range d.Catalog() {
		d.Open(app.ID)
	}

	rng := rand.New(rand.NewSource(7))
	ids := d.Catalog().IDs()
	point := func() PointerEvent {
		return at(1, rng.Intn(1800)-200, rng.Intn(1200)-200)
	}

	for i := 0; i < 500; i++ {
		id := ids[rng.Intn(len(ids))]
		if rng.Intn(2) == 0 {
			d.StartDrag(id, point())
		} else {
			d.StartResize(id, Directions[rng.Intn(len(Directions))], point())
		}
		for j := 0; j < 5; j++ {
			d.PointerMove(point())
		}
		d.PointerUp(at(1, 0, 0))

		for _, w := range d.Snapshot().Windows {
			if w.Maximized {
				continue
			}
			require.Truef(t, w.Frame.Within(ws.Width, ws.Height),
				"step %d: %s frame %+v escapes workspace", i, w.ID, w.Frame)
			require.GreaterOrEqualf(t, w.Frame.Width, DefaultMinWindowWidth, "step %d: %s", i, w.ID)
			require.GreaterOrEqualf(t, w.Frame.Height, DefaultMinWindowHeight, "step %d: %s", i, w.ID)
		}
	}
}

func testIcons() StaticIcons {
	return StaticIcons{
		AppAbout:    {Top: 10, Left: 10, Width: 64, Height: 64},
		AppSkills:   {Top: 100, Left: 10, Width: 64, Height: 64},
		AppHandbook: {Top: 400, Left: 10, Width: 64, Height: 64},
	}
}

func TestRubberBandSelection(t *testing.T) {
	icons := testIcons()
	d := newTestDesktop(t, WithIcons(icons))

	d.DesktopPointerDown(at(3, 0, 0), TargetBackground)
	require.NotNil(t, d.Snapshot().SelectionBox)
	assert.Empty(t, d.Snapshot().Selection)

	d.PointerMove(at(3, 80, 120))
	snap := d.Snapshot()
	assert.Equal(t, []AppID{AppAbout, AppSkills}, snap.Selection)

	bounds := snap.SelectionBox.Bounds()
	for _, id := range snap.Selection {
		assert.True(t, icons[id].Overlaps(bounds), "%s selected but disjoint", id)
	}

	d.PointerUp(at(9, 80, 120))
	snap = d.Snapshot()
	assert.Nil(t, snap.SelectionBox, "any pointer-up ends the box")
	assert.Equal(t, []AppID{AppAbout, AppSkills}, snap.Selection, "selection survives the box")
}

func TestRubberBandShrinksSelection(t *testing.T) {
	d := newTestDesktop(t, WithIcons(testIcons()))
	d.DesktopPointerDown(at(1, 0, 0), TargetBackground)
	d.PointerMove(at(1, 80, 500))
	assert.Len(t, d.Snapshot().Selection, 3)

	d.PointerMove(at(1, 80, 50))
	assert.Equal(t, []AppID{AppAbout}, d.Snapshot().Selection)
}

func TestZeroAreaBoxSelectsNothing(t *testing.T) {
	d := newTestDesktop(t, WithIcons(testIcons()))
	d.ClickIcon(AppAbout)

	d.DesktopPointerDown(at(1, 20, 20), TargetBackground)
	d.PointerMove(at(1, 20, 20))
	assert.Empty(t, d.Snapshot().Selection)
}

func TestSelectionStartRequirements(t *testing.T) {
	tests := []struct {
		name   string
		width  int
		button Button
		target Target
	}{
		{"secondary button", 1600, ButtonSecondary, TargetBackground},
		{"window target", 1600, ButtonPrimary, TargetWindow},
		{"taskbar target", 1600, ButtonPrimary, TargetTaskbar},
		{"icon target", 1600, ButtonPrimary, TargetIcon},
		{"tablet mode", 1000, ButtonPrimary, TargetBackground},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newTestDesktop(t, WithIcons(testIcons()))
			d.SetViewport(tt.width, 900)
			d.ClickIcon(AppSkills)

			d.DesktopPointerDown(PointerEvent{PointerID: 1, Button: tt.button}, tt.target)
			snap := d.Snapshot()
			assert.Nil(t, snap.SelectionBox)
			assert.Equal(t, []AppID{AppSkills}, snap.Selection)
		})
	}
}

func TestDoubleClickIconOpens(t *testing.T) {
	d := newTestDesktop(t)
	d.DoubleClickIcon(AppProjects)

	snap := d.Snapshot()
	assert.Contains(t, snap.Open, AppProjects)
	assert.Equal(t, AppProjects, snap.Active)
	assert.Equal(t, []AppID{AppProjects}, snap.Selection)
}

func TestParseDirection(t *testing.T) {
	for _, dir := range Directions {
		parsed, err := ParseDirection(dir.String())
		require.NoError(t, err)
		assert.Equal(t, dir, parsed)
	}
	_, err := ParseDirection("sideways")
	assert.Error(t, err)

	var d Direction
	require.NoError(t, d.UnmarshalText([]byte("Top-Right")))
	assert.Equal(t, CornerTopRight, d)
}

func TestParseTarget(t *testing.T) {
	target, err := ParseTarget("")
	require.NoError(t, err)
	assert.Equal(t, TargetBackground, target)

	target, err = ParseTarget("start-menu")
	require.NoError(t, err)
	assert.Equal(t, TargetStartMenu, target)

	_, err = ParseTarget("desk")
	assert.Error(t, err)
}
