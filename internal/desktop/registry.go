package desktop

import "github.com/1broseidon/deskshell/internal/geometry"

// WindowState is the per-application window record. RestoreFrame is set only
// while Maximized is true.
type WindowState struct {
	Frame        geometry.Rect
	Minimized    bool
	Maximized    bool
	RestoreFrame *geometry.Rect
}

// Registry owns window state for every catalog application, the open-window
// list and the focus stack. State is created once per application and never
// destroyed; closing a window only removes it from the open list.
type Registry struct {
	settings Settings
	catalog  Catalog
	states   map[AppID]*WindowState
	open     []AppID
	stack    *FocusStack
}

// NewRegistry creates a registry with every catalog window closed at its
// designed initial frame.
func NewRegistry(catalog Catalog, settings Settings) *Registry {
	r := &Registry{
		settings: settings,
		catalog:  catalog,
		states:   make(map[AppID]*WindowState, len(catalog)),
		stack:    NewFocusStack(settings.ZBase),
	}
	for _, app := range catalog {
		r.states[app.ID] = &WindowState{Frame: app.Frame}
	}
	return r
}

// State returns a copy of the window state for id.
func (r *Registry) State(id AppID) (WindowState, bool) {
	st, ok := r.states[id]
	if !ok {
		return WindowState{}, false
	}
	out := *st
	if st.RestoreFrame != nil {
		restore := *st.RestoreFrame
		out.RestoreFrame = &restore
	}
	return out, true
}

// IsOpen reports whether id is in the open-window list.
func (r *Registry) IsOpen(id AppID) bool {
	for _, entry := range r.open {
		if entry == id {
			return true
		}
	}
	return false
}

// OpenWindows returns a copy of the open-window list.
func (r *Registry) OpenWindows() []AppID {
	out := make([]AppID, len(r.open))
	copy(out, r.open)
	return out
}

// Stack exposes the focus stack.
func (r *Registry) Stack() *FocusStack {
	return r.stack
}

// Active returns the topmost window that is open and not minimized.
func (r *Registry) Active() (AppID, bool) {
	ids := r.stack.ids
	for i := len(ids) - 1; i >= 0; i-- {
		id := ids[i]
		st, ok := r.states[id]
		if !ok || st.Minimized || !r.IsOpen(id) {
			continue
		}
		return id, true
	}
	return NoApp, false
}

// Focus brings id to the top of the stack.
func (r *Registry) Focus(id AppID) {
	if _, ok := r.states[id]; !ok {
		return
	}
	r.stack.Focus(id)
}

// Open adds id to the open list, clears its minimized flag and focuses it.
func (r *Registry) Open(id AppID) {
	st, ok := r.states[id]
	if !ok {
		return
	}
	if !r.IsOpen(id) {
		r.open = append(r.open, id)
	}
	st.Minimized = false
	r.stack.Focus(id)
}

// Close removes id from the open list and the focus stack. Frame and
// maximized state are kept for the next Open.
func (r *Registry) Close(id AppID) {
	if _, ok := r.states[id]; !ok {
		return
	}
	for i, entry := range r.open {
		if entry == id {
			r.open = append(r.open[:i], r.open[i+1:]...)
			break
		}
	}
	r.stack.Remove(id)
}

// Minimize hides id. A minimized window cannot be active, so it leaves the
// focus stack.
func (r *Registry) Minimize(id AppID) {
	st, ok := r.states[id]
	if !ok {
		return
	}
	st.Minimized = true
	r.stack.Remove(id)
}

// ToggleMaximize flips id between maximized and restored. Maximizing needs
// workspace bounds; when available is false the frame is left alone. The
// window is focused either way.
func (r *Registry) ToggleMaximize(id AppID, workspace geometry.Rect, available bool) {
	st, ok := r.states[id]
	if !ok {
		return
	}
	if st.Maximized && st.RestoreFrame != nil {
		st.Frame = *st.RestoreFrame
		st.RestoreFrame = nil
		st.Maximized = false
	} else if available {
		restore := st.Frame
		st.RestoreFrame = &restore
		st.Frame = r.maximizedFrame(workspace)
		st.Maximized = true
		st.Minimized = false
	}
	r.stack.Focus(id)
}

// UpdateFrame replaces the frame of id without touching its flags.
func (r *Registry) UpdateFrame(id AppID, frame geometry.Rect) {
	st, ok := r.states[id]
	if !ok {
		return
	}
	st.Frame = frame
}

// OnWorkspaceResize re-fits every maximized window to the new workspace.
// Restored windows keep their manual placement.
func (r *Registry) OnWorkspaceResize(workspace geometry.Rect) {
	for _, app := range r.catalog {
		st := r.states[app.ID]
		if !st.Maximized {
			continue
		}
		st.Frame = r.maximizedFrame(workspace)
	}
}

func (r *Registry) maximizedFrame(workspace geometry.Rect) geometry.Rect {
	return workspace.Inset(
		r.settings.MaximizeInset,
		r.settings.MaximizeMinWidth,
		r.settings.MaximizeMinHeight,
	)
}
