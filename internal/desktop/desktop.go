// Package desktop implements the window/desktop interaction engine: window
// geometry, focus and paint order, minimize/maximize transitions, pointer
// driven move and resize gestures, rubber-band icon selection and the
// responsive desktop/tablet/phone mode switch.
//
// A Desktop is not safe for concurrent use. Drive it from a single goroutine
// (see internal/daemon) and hand Snapshots to presentation code.
package desktop

import (
	"reflect"

	"github.com/rs/zerolog"

	"github.com/1broseidon/deskshell/internal/geometry"
)

// Option configures a Desktop.
type Option func(*Desktop)

// WithWorkspace sets the function queried for workspace bounds.
func WithWorkspace(fn WorkspaceFunc) Option {
	return func(d *Desktop) {
		d.workspace = fn
	}
}

// WithShellLayout derives workspace bounds from the current viewport and the
// given chrome sizes.
func WithShellLayout(layout ShellLayout) Option {
	return func(d *Desktop) {
		d.workspace = func() (geometry.Rect, bool) {
			return layout.Workspace(d.viewport.Width, d.viewport.Height)
		}
	}
}

// WithIcons sets the icon locator used for rubber-band selection.
func WithIcons(icons IconLocator) Option {
	return func(d *Desktop) {
		d.icons = icons
	}
}

// WithLogger attaches a logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(d *Desktop) {
		d.log = logger
	}
}

// Desktop is the shell controller. It owns the window registry, the single
// in-flight gesture, the icon selection and the view-mode state.
type Desktop struct {
	settings Settings
	catalog  Catalog
	registry *Registry

	workspace WorkspaceFunc
	icons     IconLocator
	log       zerolog.Logger

	gesture   *Gesture
	selection []AppID
	box       *SelectionBox

	mode       ViewMode
	viewport   Size
	foreground map[ViewMode]AppID

	startMenuOpen bool

	// iconsReported is set once SetIcons replaces the configured locator.
	iconsReported bool

	observers *observerSet
}

type observerSet struct {
	fns  map[int]func(Snapshot)
	next int
}

// New builds a Desktop for catalog. Windows listed in settings.InitialOpen
// start open. The view mode is desktop until the first SetViewport.
func New(catalog Catalog, settings Settings, opts ...Option) *Desktop {
	d := &Desktop{
		settings:   settings,
		catalog:    catalog,
		registry:   NewRegistry(catalog, settings),
		log:        zerolog.Nop(),
		mode:       ModeDesktop,
		foreground: make(map[ViewMode]AppID, 2),
		observers:  &observerSet{fns: make(map[int]func(Snapshot))},
	}
	for _, opt := range opts {
		opt(d)
	}
	for _, id := range settings.InitialOpen {
		d.registry.Open(id)
	}
	return d
}

// Catalog returns the application catalog.
func (d *Desktop) Catalog() Catalog {
	return d.catalog
}

// Settings returns the engine constants.
func (d *Desktop) Settings() Settings {
	return d.settings
}

// Registry exposes the window registry for read access.
func (d *Desktop) Registry() *Registry {
	return d.registry
}

// Mode returns the current view mode.
func (d *Desktop) Mode() ViewMode {
	return d.mode
}

// SetIcons replaces the icon locator, e.g. when a remote presentation layer
// reports new icon positions. An active selection box is re-evaluated.
func (d *Desktop) SetIcons(icons IconLocator) {
	d.mutate(func() {
		d.icons = icons
		d.iconsReported = true
		if d.box != nil && d.box.Active {
			d.selection = SelectIcons(d.catalog, d.icons, *d.box)
		}
	})
}

// Subscribe registers fn to receive a snapshot after every command that
// changed observable state. The returned func unregisters it.
func (d *Desktop) Subscribe(fn func(Snapshot)) func() {
	set := d.observers
	id := set.next
	set.next++
	set.fns[id] = fn
	return func() {
		delete(set.fns, id)
	}
}

// Carry moves presentation state from prev, the desktop d replaces after a
// configuration reload: the viewport, icon bounds reported through SetIcons
// and the observers, which replace any registered on d and then receive d's
// snapshot. Window state is not carried.
func (d *Desktop) Carry(prev *Desktop) {
	if prev == nil || prev == d {
		return
	}
	if vp := prev.viewport; vp.Width > 0 && vp.Height > 0 {
		d.SetViewport(vp.Width, vp.Height)
	}
	if prev.iconsReported {
		d.icons = prev.icons
		d.iconsReported = true
	}
	d.observers = prev.observers
	prev.observers = &observerSet{fns: make(map[int]func(Snapshot))}
	d.notify(d.Snapshot())
}

// mutate runs fn and notifies observers when the snapshot changed.
func (d *Desktop) mutate(fn func()) {
	if len(d.observers.fns) == 0 {
		fn()
		return
	}
	before := d.Snapshot()
	fn()
	after := d.Snapshot()
	if reflect.DeepEqual(before, after) {
		return
	}
	d.notify(after)
}

func (d *Desktop) notify(snap Snapshot) {
	for _, obs := range d.observers.fns {
		obs(snap)
	}
}

// workspaceBounds queries the workspace. It is unavailable outside desktop
// mode.
func (d *Desktop) workspaceBounds() (geometry.Rect, bool) {
	if d.mode != ModeDesktop || d.workspace == nil {
		return geometry.Rect{}, false
	}
	return d.workspace()
}

// Open shows an application. On the desktop the window is opened,
// un-minimized, focused and becomes the icon selection; in phone and tablet
// modes it becomes that mode's foreground app.
func (d *Desktop) Open(id AppID) {
	if !d.catalog.Has(id) {
		return
	}
	d.mutate(func() {
		if d.mode.SingleApp() {
			d.foreground[d.mode] = id
			return
		}
		d.registry.Open(id)
		d.selection = []AppID{id}
		d.startMenuOpen = false
	})
}

// Close removes a window from the desktop.
func (d *Desktop) Close(id AppID) {
	d.mutate(func() {
		d.registry.Close(id)
	})
}

// Minimize hides a window.
func (d *Desktop) Minimize(id AppID) {
	d.mutate(func() {
		d.registry.Minimize(id)
	})
}

// ToggleMaximize maximizes or restores a window against the current
// workspace.
func (d *Desktop) ToggleMaximize(id AppID) {
	d.mutate(func() {
		ws, ok := d.workspaceBounds()
		d.registry.ToggleMaximize(id, ws, ok)
	})
}

// Focus raises a window, e.g. after a click on its body.
func (d *Desktop) Focus(id AppID) {
	d.mutate(func() {
		d.registry.Focus(id)
	})
}

// TaskbarClick applies the taskbar policy: a minimized window is restored,
// the active window is minimized, any other window is focused.
func (d *Desktop) TaskbarClick(id AppID) {
	st, ok := d.registry.State(id)
	if !ok || !d.registry.IsOpen(id) {
		return
	}
	if st.Minimized {
		d.Open(id)
		return
	}
	if active, ok := d.registry.Active(); ok && active == id {
		d.Minimize(id)
		return
	}
	d.Focus(id)
}

// SetForegroundApp sets the foreground app of a single-app mode. NoApp
// returns that mode to its home screen.
func (d *Desktop) SetForegroundApp(mode ViewMode, id AppID) {
	if !mode.SingleApp() {
		return
	}
	if id != NoApp && !d.catalog.Has(id) {
		return
	}
	d.mutate(func() {
		d.foreground[mode] = id
	})
}

// GoHome clears the foreground app of the current mode.
func (d *Desktop) GoHome() {
	d.SetForegroundApp(d.mode, NoApp)
}

// ToggleStartMenu opens or closes the start menu.
func (d *Desktop) ToggleStartMenu() {
	d.mutate(func() {
		d.startMenuOpen = !d.startMenuOpen
	})
}

// SetViewport records a new viewport size and re-derives the view mode. A
// mode change returns both single-app modes to their home screens. While in
// desktop mode maximized windows are re-fitted to the new workspace.
func (d *Desktop) SetViewport(width, height int) {
	d.mutate(func() {
		d.viewport = Size{Width: width, Height: height}
		next := d.settings.Breakpoints.ModeFor(width)
		if next != d.mode {
			d.log.Info().
				Str("from", string(d.mode)).
				Str("to", string(next)).
				Int("width", width).
				Msg("view mode changed")
			d.mode = next
			d.foreground[ModePhone] = NoApp
			d.foreground[ModeTablet] = NoApp
		}
		if ws, ok := d.workspaceBounds(); ok {
			d.registry.OnWorkspaceResize(ws)
		}
	})
}

// Snapshot copies the current state for presentation.
func (d *Desktop) Snapshot() Snapshot {
	snap := Snapshot{
		Mode:          d.mode,
		Viewport:      d.viewport,
		Windows:       make([]WindowView, 0, len(d.catalog)),
		Open:          d.registry.OpenWindows(),
		Focus:         d.registry.Stack().IDs(),
		Selection:     append([]AppID{}, d.selection...),
		Dragging:      d.gesture != nil,
		PhoneApp:      d.foreground[ModePhone],
		TabletApp:     d.foreground[ModeTablet],
		StartMenuOpen: d.startMenuOpen,
	}
	if ws, ok := d.workspaceBounds(); ok {
		snap.Workspace = &ws
	}
	active, hasActive := d.registry.Active()
	if hasActive {
		snap.Active = active
	}
	for _, app := range d.catalog {
		st, _ := d.registry.State(app.ID)
		z, _ := d.registry.Stack().ZIndex(app.ID)
		snap.Windows = append(snap.Windows, WindowView{
			ID:           app.ID,
			Title:        app.Title,
			Frame:        st.Frame,
			Open:         d.registry.IsOpen(app.ID),
			Minimized:    st.Minimized,
			Maximized:    st.Maximized,
			RestoreFrame: st.RestoreFrame,
			ZIndex:       z,
			Active:       hasActive && active == app.ID,
		})
	}
	if d.box != nil {
		box := *d.box
		snap.SelectionBox = &box
	}
	if g := d.gesture; g != nil {
		view := &GestureView{Kind: g.Kind.String(), App: g.App, PointerID: g.PointerID}
		if g.Kind == GestureResize {
			view.Direction = g.Direction.String()
		}
		snap.Gesture = view
	}
	return snap
}
