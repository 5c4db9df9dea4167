package desktop

// StartDrag begins moving a window. It is declined outside desktop mode,
// without a workspace, and for unknown, closed, minimized or maximized
// windows. Starting a gesture replaces any gesture already in flight.
func (d *Desktop) StartDrag(id AppID, ev PointerEvent) {
	st, ok := d.registry.State(id)
	if !ok || !d.registry.IsOpen(id) || st.Minimized || st.Maximized {
		return
	}
	ws, ok := d.workspaceBounds()
	if !ok {
		return
	}
	d.mutate(func() {
		d.gesture = &Gesture{
			Kind:      GestureMove,
			App:       id,
			PointerID: ev.PointerID,
			OffsetX:   ev.X - ws.Left - st.Frame.Left,
			OffsetY:   ev.Y - ws.Top - st.Frame.Top,
		}
		d.registry.Focus(id)
	})
	d.log.Debug().Str("app", string(id)).Int("pointer", ev.PointerID).Msg("drag started")
}

// StartResize begins resizing a window from handle dir. Preconditions match
// StartDrag. Deltas are measured against the frame captured here.
func (d *Desktop) StartResize(id AppID, dir Direction, ev PointerEvent) {
	if !dir.Valid() {
		return
	}
	st, ok := d.registry.State(id)
	if !ok || !d.registry.IsOpen(id) || st.Minimized || st.Maximized {
		return
	}
	if _, ok := d.workspaceBounds(); !ok {
		return
	}
	d.mutate(func() {
		d.gesture = &Gesture{
			Kind:       GestureResize,
			App:        id,
			PointerID:  ev.PointerID,
			Direction:  dir,
			StartX:     ev.X,
			StartY:     ev.Y,
			StartFrame: st.Frame,
		}
		d.registry.Focus(id)
	})
	d.log.Debug().
		Str("app", string(id)).
		Str("direction", dir.String()).
		Int("pointer", ev.PointerID).
		Msg("resize started")
}

// Gesture returns a copy of the in-flight gesture.
func (d *Desktop) Gesture() (Gesture, bool) {
	if d.gesture == nil {
		return Gesture{}, false
	}
	return *d.gesture, true
}

// PointerMove feeds a pointer sample to the active gesture and the
// selection box. Samples from pointers other than the gesture's are ignored
// by the gesture. While the workspace is unavailable the gesture stays open
// but does not move.
func (d *Desktop) PointerMove(ev PointerEvent) {
	d.mutate(func() {
		if g := d.gesture; g != nil && g.PointerID == ev.PointerID {
			d.applyGesture(g, ev)
		}
		if d.box != nil && d.box.Active {
			d.box.CurrentX = ev.X
			d.box.CurrentY = ev.Y
			d.selection = SelectIcons(d.catalog, d.icons, *d.box)
		}
	})
}

func (d *Desktop) applyGesture(g *Gesture, ev PointerEvent) {
	ws, ok := d.workspaceBounds()
	if !ok {
		return
	}
	st, ok := d.registry.State(g.App)
	if !ok {
		return
	}

	switch g.Kind {
	case GestureMove:
		frame := MoveFrame(st.Frame, ev.X-ws.Left-g.OffsetX, ev.Y-ws.Top-g.OffsetY, ws)
		d.registry.UpdateFrame(g.App, frame)
	case GestureResize:
		frame := ResizeFrame(
			g.StartFrame,
			g.Direction,
			ev.X-g.StartX,
			ev.Y-g.StartY,
			ws,
			d.settings.MinWindowWidth,
			d.settings.MinWindowHeight,
		)
		d.registry.UpdateFrame(g.App, frame)
	}
}

// PointerUp ends the gesture owned by ev's pointer and any selection box.
// The final frame is whatever the last move produced.
func (d *Desktop) PointerUp(ev PointerEvent) {
	d.mutate(func() {
		d.endGesture(ev.PointerID)
		d.box = nil
	})
}

// LostPointerCapture ends the gesture owned by pointerID, as if its pointer
// had been released.
func (d *Desktop) LostPointerCapture(pointerID int) {
	d.mutate(func() {
		d.endGesture(pointerID)
	})
}

func (d *Desktop) endGesture(pointerID int) {
	if d.gesture == nil || d.gesture.PointerID != pointerID {
		return
	}
	d.log.Debug().
		Str("app", string(d.gesture.App)).
		Str("kind", d.gesture.Kind.String()).
		Int("pointer", pointerID).
		Msg("gesture ended")
	d.gesture = nil
}

// DesktopPointerDown handles a pointer-down anywhere in the desktop shell.
// It closes the start menu unless the press is on the menu or its button,
// then starts a rubber-band selection when the press is a primary-button
// press on the bare background in desktop mode.
func (d *Desktop) DesktopPointerDown(ev PointerEvent, target Target) {
	d.mutate(func() {
		if d.startMenuOpen && target != TargetStartMenu && target != TargetStartButton {
			d.startMenuOpen = false
		}
		if d.mode != ModeDesktop || ev.Button != ButtonPrimary || target != TargetBackground {
			return
		}
		d.selection = nil
		d.box = &SelectionBox{
			Active:   true,
			StartX:   ev.X,
			StartY:   ev.Y,
			CurrentX: ev.X,
			CurrentY: ev.Y,
		}
	})
}

// ClickIcon makes id the only selected icon.
func (d *Desktop) ClickIcon(id AppID) {
	if !d.catalog.Has(id) {
		return
	}
	d.mutate(func() {
		d.selection = []AppID{id}
	})
}

// DoubleClickIcon opens the icon's application.
func (d *Desktop) DoubleClickIcon(id AppID) {
	d.Open(id)
}
