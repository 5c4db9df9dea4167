package mcp

import (
	"context"
	"fmt"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/deskshell/internal/desktop"
	"github.com/1broseidon/deskshell/internal/geometry"
)

func (s *Server) handleGetDesktop(ctx context.Context, _ *mcpsdk.CallToolRequest, args GetDesktopInput) (*mcpsdk.CallToolResult, DesktopOutput, error) {
	snap, err := s.desk.Snapshot(ctx)
	if err != nil {
		return nil, DesktopOutput{}, err
	}
	return nil, desktopOutput(snap, args.IncludeClosed), nil
}

func (s *Server) appTool(verb string, call func(context.Context, string) (*desktop.Snapshot, error)) func(context.Context, *mcpsdk.CallToolRequest, AppInput) (*mcpsdk.CallToolResult, DesktopOutput, error) {
	return func(ctx context.Context, _ *mcpsdk.CallToolRequest, args AppInput) (*mcpsdk.CallToolResult, DesktopOutput, error) {
		if strings.TrimSpace(args.App) == "" {
			return nil, DesktopOutput{}, fmt.Errorf("app is required")
		}
		snap, err := call(ctx, args.App)
		if err != nil {
			s.logger.Debug().Err(err).Str("tool", verb).Str("app", args.App).Msg("MCP tool failed")
			return nil, DesktopOutput{}, fmt.Errorf("%s %q: %w", verb, args.App, err)
		}
		s.logger.Debug().Str("tool", verb).Str("app", args.App).Msg("MCP tool applied")
		return nil, desktopOutput(snap, false), nil
	}
}

func (s *Server) handleOpenApp(ctx context.Context, req *mcpsdk.CallToolRequest, args AppInput) (*mcpsdk.CallToolResult, DesktopOutput, error) {
	return s.appTool("open", s.desk.Open)(ctx, req, args)
}

func (s *Server) handleCloseApp(ctx context.Context, req *mcpsdk.CallToolRequest, args AppInput) (*mcpsdk.CallToolResult, DesktopOutput, error) {
	return s.appTool("close", s.desk.Close)(ctx, req, args)
}

func (s *Server) handleMinimizeApp(ctx context.Context, req *mcpsdk.CallToolRequest, args AppInput) (*mcpsdk.CallToolResult, DesktopOutput, error) {
	return s.appTool("minimize", s.desk.Minimize)(ctx, req, args)
}

func (s *Server) handleToggleMaximize(ctx context.Context, req *mcpsdk.CallToolRequest, args AppInput) (*mcpsdk.CallToolResult, DesktopOutput, error) {
	return s.appTool("toggle maximize", s.desk.ToggleMaximize)(ctx, req, args)
}

func (s *Server) handleFocusApp(ctx context.Context, req *mcpsdk.CallToolRequest, args AppInput) (*mcpsdk.CallToolResult, DesktopOutput, error) {
	return s.appTool("focus", s.desk.Focus)(ctx, req, args)
}

func (s *Server) handleTaskbarClick(ctx context.Context, req *mcpsdk.CallToolRequest, args AppInput) (*mcpsdk.CallToolResult, DesktopOutput, error) {
	return s.appTool("taskbar click", s.desk.TaskbarClick)(ctx, req, args)
}

// draggable returns the workspace and window view of an app that can take a
// pointer gesture right now.
func (s *Server) draggable(ctx context.Context, app string) (geometry.Rect, desktop.WindowView, error) {
	snap, err := s.desk.Snapshot(ctx)
	if err != nil {
		return geometry.Rect{}, desktop.WindowView{}, err
	}
	if snap.Workspace == nil {
		return geometry.Rect{}, desktop.WindowView{}, fmt.Errorf("windows can only be moved in desktop mode (current mode: %s)", snap.Mode)
	}
	w, ok := snap.Window(desktop.AppID(strings.ToLower(strings.TrimSpace(app))))
	if !ok {
		return geometry.Rect{}, desktop.WindowView{}, fmt.Errorf("unknown application %q", app)
	}
	switch {
	case !w.Open:
		return geometry.Rect{}, desktop.WindowView{}, fmt.Errorf("%s is not open", w.ID)
	case w.Minimized:
		return geometry.Rect{}, desktop.WindowView{}, fmt.Errorf("%s is minimized", w.ID)
	case w.Maximized:
		return geometry.Rect{}, desktop.WindowView{}, fmt.Errorf("%s is maximized; restore it first", w.ID)
	}
	return *snap.Workspace, w, nil
}

// gesture runs start, one move to end and a release for a synthetic
// pointer. If the move fails the pointer is released so no gesture is left
// dangling.
func (s *Server) gesture(ctx context.Context, start func(ev desktop.PointerEvent) error, from, to desktop.PointerEvent) (*desktop.Snapshot, error) {
	id := s.nextPointer()
	from.PointerID, to.PointerID = id, id

	if err := start(from); err != nil {
		return nil, err
	}
	if _, err := s.desk.PointerMove(ctx, to); err != nil {
		s.desk.PointerUp(ctx, to)
		return nil, err
	}
	return s.desk.PointerUp(ctx, to)
}

// accepted checks that a start command took ownership of pointerID.
func accepted(snap *desktop.Snapshot, err error, pointerID int) error {
	if err != nil {
		return err
	}
	if snap.Gesture == nil || snap.Gesture.PointerID != pointerID {
		return fmt.Errorf("gesture was not accepted")
	}
	return nil
}

func (s *Server) handleMoveWindow(ctx context.Context, _ *mcpsdk.CallToolRequest, args MoveWindowInput) (*mcpsdk.CallToolResult, DesktopOutput, error) {
	ws, w, err := s.draggable(ctx, args.App)
	if err != nil {
		return nil, DesktopOutput{}, err
	}

	// Grab the title bar at the window's top-left corner so the offset is zero.
	from := desktop.PointerEvent{X: ws.Left + w.Frame.Left, Y: ws.Top + w.Frame.Top}
	to := desktop.PointerEvent{X: ws.Left + args.Left, Y: ws.Top + args.Top}
	snap, err := s.gesture(ctx, func(ev desktop.PointerEvent) error {
		started, err := s.desk.StartDrag(ctx, string(w.ID), ev)
		return accepted(started, err, ev.PointerID)
	}, from, to)
	if err != nil {
		return nil, DesktopOutput{}, fmt.Errorf("move %s: %w", w.ID, err)
	}
	s.logger.Debug().Str("app", string(w.ID)).Int("left", args.Left).Int("top", args.Top).Msg("MCP window moved")
	return nil, desktopOutput(snap, false), nil
}

func (s *Server) handleResizeWindow(ctx context.Context, _ *mcpsdk.CallToolRequest, args ResizeWindowInput) (*mcpsdk.CallToolResult, DesktopOutput, error) {
	dir, err := desktop.ParseDirection(args.Direction)
	if err != nil {
		return nil, DesktopOutput{}, err
	}
	ws, w, err := s.draggable(ctx, args.App)
	if err != nil {
		return nil, DesktopOutput{}, err
	}

	from := handlePoint(ws, w.Frame, dir)
	to := desktop.PointerEvent{X: from.X + args.DX, Y: from.Y + args.DY}
	snap, err := s.gesture(ctx, func(ev desktop.PointerEvent) error {
		started, err := s.desk.StartResize(ctx, string(w.ID), dir, ev)
		return accepted(started, err, ev.PointerID)
	}, from, to)
	if err != nil {
		return nil, DesktopOutput{}, fmt.Errorf("resize %s: %w", w.ID, err)
	}
	return nil, desktopOutput(snap, false), nil
}

// handlePoint returns the viewport position of a resize handle.
func handlePoint(ws, frame geometry.Rect, dir desktop.Direction) desktop.PointerEvent {
	x := ws.Left + frame.Left + frame.Width/2
	y := ws.Top + frame.Top + frame.Height/2
	if dir.Has(desktop.EdgeLeft) {
		x = ws.Left + frame.Left
	}
	if dir.Has(desktop.EdgeRight) {
		x = ws.Left + frame.Right()
	}
	if dir.Has(desktop.EdgeTop) {
		y = ws.Top + frame.Top
	}
	if dir.Has(desktop.EdgeBottom) {
		y = ws.Top + frame.Bottom()
	}
	return desktop.PointerEvent{X: x, Y: y}
}

func (s *Server) handleSelectArea(ctx context.Context, _ *mcpsdk.CallToolRequest, args SelectAreaInput) (*mcpsdk.CallToolResult, DesktopOutput, error) {
	snap, err := s.desk.Snapshot(ctx)
	if err != nil {
		return nil, DesktopOutput{}, err
	}
	if snap.Mode != desktop.ModeDesktop {
		return nil, DesktopOutput{}, fmt.Errorf("icon selection is only available in desktop mode (current mode: %s)", snap.Mode)
	}

	from := desktop.PointerEvent{X: args.X1, Y: args.Y1, Button: desktop.ButtonPrimary}
	to := desktop.PointerEvent{X: args.X2, Y: args.Y2, Button: desktop.ButtonPrimary}
	snap, err = s.gesture(ctx, func(ev desktop.PointerEvent) error {
		started, err := s.desk.DesktopPointerDown(ctx, ev, desktop.TargetBackground)
		if err != nil {
			return err
		}
		if started.SelectionBox == nil || !started.SelectionBox.Active {
			return fmt.Errorf("selection box was not started")
		}
		return nil
	}, from, to)
	if err != nil {
		return nil, DesktopOutput{}, fmt.Errorf("select area: %w", err)
	}
	return nil, desktopOutput(snap, false), nil
}

func (s *Server) handleSetViewport(ctx context.Context, _ *mcpsdk.CallToolRequest, args SetViewportInput) (*mcpsdk.CallToolResult, DesktopOutput, error) {
	if args.Width <= 0 || args.Height <= 0 {
		return nil, DesktopOutput{}, fmt.Errorf("viewport must be positive, got %dx%d", args.Width, args.Height)
	}
	snap, err := s.desk.SetViewport(ctx, args.Width, args.Height)
	if err != nil {
		return nil, DesktopOutput{}, err
	}
	return nil, desktopOutput(snap, false), nil
}

func (s *Server) handleSetForeground(ctx context.Context, _ *mcpsdk.CallToolRequest, args SetForegroundInput) (*mcpsdk.CallToolResult, DesktopOutput, error) {
	mode, err := desktop.ParseViewMode(args.Mode)
	if err != nil {
		return nil, DesktopOutput{}, err
	}
	if !mode.SingleApp() {
		return nil, DesktopOutput{}, fmt.Errorf("mode %q has no foreground app; use open_app on the desktop", mode)
	}
	snap, err := s.desk.SetForeground(ctx, mode, args.App)
	if err != nil {
		return nil, DesktopOutput{}, err
	}
	return nil, desktopOutput(snap, false), nil
}

func (s *Server) handleGoHome(ctx context.Context, _ *mcpsdk.CallToolRequest, _ NoInput) (*mcpsdk.CallToolResult, DesktopOutput, error) {
	snap, err := s.desk.GoHome(ctx)
	if err != nil {
		return nil, DesktopOutput{}, err
	}
	return nil, desktopOutput(snap, false), nil
}

func (s *Server) handleReloadConfig(ctx context.Context, _ *mcpsdk.CallToolRequest, _ NoInput) (*mcpsdk.CallToolResult, DesktopOutput, error) {
	snap, err := s.desk.Reload(ctx)
	if err != nil {
		return nil, DesktopOutput{}, err
	}
	s.logger.Info().Msg("MCP: config reloaded")
	return nil, desktopOutput(snap, false), nil
}

func desktopOutput(snap *desktop.Snapshot, includeClosed bool) DesktopOutput {
	out := DesktopOutput{
		Mode:       string(snap.Mode),
		Viewport:   fmt.Sprintf("%dx%d", snap.Viewport.Width, snap.Viewport.Height),
		Workspace:  snap.Workspace,
		Active:     string(snap.Active),
		Foreground: string(snap.Foreground(snap.Mode)),
		Selection:  make([]string, 0, len(snap.Selection)),
		Windows:    make([]WindowInfo, 0, len(snap.Windows)),
	}
	for _, id := range snap.Selection {
		out.Selection = append(out.Selection, string(id))
	}
	for _, w := range snap.Windows {
		if !w.Open && !includeClosed {
			continue
		}
		out.Windows = append(out.Windows, WindowInfo{
			App:       string(w.ID),
			Title:     w.Title,
			Frame:     w.Frame,
			Open:      w.Open,
			Minimized: w.Minimized,
			Maximized: w.Maximized,
			Active:    w.Active,
			ZIndex:    w.ZIndex,
		})
	}
	return out
}
