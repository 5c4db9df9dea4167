// Package mcp exposes the deskshell daemon to MCP clients over stdio. Every
// tool is a thin wrapper around the daemon's IPC commands; pointer gestures
// are synthesized from absolute targets.
package mcp

import (
	"context"
	"sync/atomic"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"

	"github.com/1broseidon/deskshell/internal/desktop"
)

const (
	ServerName    = "deskshell"
	ServerVersion = "0.1.0"

	// Synthetic pointer ids start well above anything a real input device
	// reports so tool gestures never adopt a user's pointer.
	syntheticPointerBase = 1 << 20
)

// Desk is the subset of the IPC client the tools drive.
type Desk interface {
	Snapshot(ctx context.Context) (*desktop.Snapshot, error)
	Reload(ctx context.Context) (*desktop.Snapshot, error)
	Open(ctx context.Context, app string) (*desktop.Snapshot, error)
	Close(ctx context.Context, app string) (*desktop.Snapshot, error)
	Minimize(ctx context.Context, app string) (*desktop.Snapshot, error)
	ToggleMaximize(ctx context.Context, app string) (*desktop.Snapshot, error)
	Focus(ctx context.Context, app string) (*desktop.Snapshot, error)
	TaskbarClick(ctx context.Context, app string) (*desktop.Snapshot, error)
	StartDrag(ctx context.Context, app string, ev desktop.PointerEvent) (*desktop.Snapshot, error)
	StartResize(ctx context.Context, app string, dir desktop.Direction, ev desktop.PointerEvent) (*desktop.Snapshot, error)
	PointerMove(ctx context.Context, ev desktop.PointerEvent) (*desktop.Snapshot, error)
	PointerUp(ctx context.Context, ev desktop.PointerEvent) (*desktop.Snapshot, error)
	LostPointerCapture(ctx context.Context, pointerID int) (*desktop.Snapshot, error)
	DesktopPointerDown(ctx context.Context, ev desktop.PointerEvent, target desktop.Target) (*desktop.Snapshot, error)
	SetForeground(ctx context.Context, mode desktop.ViewMode, app string) (*desktop.Snapshot, error)
	GoHome(ctx context.Context) (*desktop.Snapshot, error)
	SetViewport(ctx context.Context, width, height int) (*desktop.Snapshot, error)
}

// Server is the MCP server for deskshell.
type Server struct {
	mcpServer *mcpsdk.Server
	desk      Desk
	logger    zerolog.Logger
	pointers  atomic.Int64
}

// NewServer creates an MCP server that forwards to desk.
func NewServer(desk Desk, logger zerolog.Logger) *Server {
	s := &Server{
		desk:   desk,
		logger: logger,
	}
	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)
	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info().Msg("MCP server starting on stdio")
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) nextPointer() int {
	return syntheticPointerBase + int(s.pointers.Add(1))
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_desktop",
		Description: "Return the current desktop state: view mode, viewport, workspace bounds, the active window, icon selection and every open window with its frame (workspace-relative pixels), minimized/maximized flags and paint order.",
	}, s.handleGetDesktop)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "open_app",
		Description: "Open an application. On the desktop the window is opened (or restored if minimized), focused and selected. In phone and tablet modes the app becomes the foreground app instead.",
	}, s.handleOpenApp)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "close_app",
		Description: "Close an application window. Its frame and maximize state are kept for the next open.",
	}, s.handleCloseApp)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "minimize_app",
		Description: "Minimize an application window. Focus order is not changed.",
	}, s.handleMinimizeApp)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "toggle_maximize",
		Description: "Maximize a window to fill the workspace (with a small inset), or restore it to its previous frame if already maximized.",
	}, s.handleToggleMaximize)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "focus_app",
		Description: "Raise a window to the top of the paint order and make it active.",
	}, s.handleFocusApp)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "taskbar_click",
		Description: "Click an app's taskbar button: restores it when minimized, minimizes it when it is the active window, otherwise focuses it.",
	}, s.handleTaskbarClick)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "move_window",
		Description: "Drag a window so its top-left corner lands at (left, top) in workspace pixels. The window is clamped to stay fully inside the workspace. Only works in desktop mode on visible, non-maximized windows.",
	}, s.handleMoveWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "resize_window",
		Description: "Drag a window's resize handle by (dx, dy) pixels. The opposite edge stays fixed, the window keeps its minimum size and never leaves the workspace. Only works in desktop mode on visible, non-maximized windows.",
	}, s.handleResizeWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "select_area",
		Description: "Rubber-band select desktop icons by dragging a box from (x1, y1) to (x2, y2) in viewport pixels. Returns the selected app ids. Desktop mode only.",
	}, s.handleSelectArea)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_viewport",
		Description: "Report a new viewport size. The view mode follows the width: phone below 768px, tablet up to 1180px, desktop above. Maximized windows re-fit to the new workspace.",
	}, s.handleSetViewport)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_foreground",
		Description: "Set the foreground app of phone or tablet mode. Omit app to return that mode to its home screen.",
	}, s.handleSetForeground)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "go_home",
		Description: "Return the current phone or tablet view to its home screen.",
	}, s.handleGoHome)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "reload_config",
		Description: "Ask the daemon to re-read its configuration. Window state resets to the configured initial state; the viewport is kept.",
	}, s.handleReloadConfig)
}
