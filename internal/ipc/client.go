package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/1broseidon/deskshell/internal/desktop"
	"github.com/1broseidon/deskshell/internal/geometry"
	"github.com/1broseidon/deskshell/internal/runtimepath"
)

// Client handles IPC communication with the daemon
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a client for the default daemon socket.
func NewClient() *Client {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		// Keep constructor non-failing; sendRequest surfaces connection errors.
		socketPath = ""
	}
	return NewClientWithSocket(socketPath, 5*time.Second)
}

// NewClientWithSocket creates a client for an explicit socket path.
func NewClientWithSocket(socketPath string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		socketPath: socketPath,
		timeout:    timeout,
	}
}

// sendRequest sends a request and waits for a response
func (c *Client) sendRequest(ctx context.Context, req *Request) (*Response, error) {
	dialer := net.Dialer{Timeout: c.timeout}
	conn, err := dialer.DialContext(ctx, "unix", c.socketPath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon: %w (is the daemon running?)", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	conn.SetDeadline(deadline)

	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	reader := bufio.NewReader(conn)
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if resp.Status == StatusError {
		return nil, fmt.Errorf("daemon error: %s", resp.Error)
	}
	return &resp, nil
}

// call sends cmd with payload and decodes the snapshot answer.
func (c *Client) call(ctx context.Context, cmd CommandType, payload interface{}) (*desktop.Snapshot, error) {
	req := &Request{Command: cmd}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s payload: %w", cmd, err)
		}
		req.Payload = raw
	}

	resp, err := c.sendRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	var snap desktop.Snapshot
	if err := json.Unmarshal(resp.Data, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot: %w", err)
	}
	return &snap, nil
}

// Reload asks the daemon to re-read its configuration.
func (c *Client) Reload(ctx context.Context) (*desktop.Snapshot, error) {
	return c.call(ctx, CommandReload, nil)
}

// GetStatus retrieves daemon status
func (c *Client) GetStatus(ctx context.Context) (*StatusData, error) {
	resp, err := c.sendRequest(ctx, &Request{Command: CommandGetStatus})
	if err != nil {
		return nil, err
	}
	var status StatusData
	if err := json.Unmarshal(resp.Data, &status); err != nil {
		return nil, fmt.Errorf("failed to parse status data: %w", err)
	}
	return &status, nil
}

// Snapshot retrieves the full desktop state.
func (c *Client) Snapshot(ctx context.Context) (*desktop.Snapshot, error) {
	return c.call(ctx, CommandGetSnapshot, nil)
}

// Open opens (or in phone/tablet mode foregrounds) an application.
func (c *Client) Open(ctx context.Context, app string) (*desktop.Snapshot, error) {
	return c.call(ctx, CommandOpen, AppPayload{App: app})
}

func (c *Client) Close(ctx context.Context, app string) (*desktop.Snapshot, error) {
	return c.call(ctx, CommandClose, AppPayload{App: app})
}

func (c *Client) Minimize(ctx context.Context, app string) (*desktop.Snapshot, error) {
	return c.call(ctx, CommandMinimize, AppPayload{App: app})
}

func (c *Client) ToggleMaximize(ctx context.Context, app string) (*desktop.Snapshot, error) {
	return c.call(ctx, CommandToggleMaximize, AppPayload{App: app})
}

func (c *Client) Focus(ctx context.Context, app string) (*desktop.Snapshot, error) {
	return c.call(ctx, CommandFocus, AppPayload{App: app})
}

// TaskbarClick applies the taskbar restore/minimize/focus policy.
func (c *Client) TaskbarClick(ctx context.Context, app string) (*desktop.Snapshot, error) {
	return c.call(ctx, CommandTaskbarClick, AppPayload{App: app})
}

func (c *Client) ClickIcon(ctx context.Context, app string) (*desktop.Snapshot, error) {
	return c.call(ctx, CommandClickIcon, AppPayload{App: app})
}

func (c *Client) DoubleClickIcon(ctx context.Context, app string) (*desktop.Snapshot, error) {
	return c.call(ctx, CommandDoubleClickIcon, AppPayload{App: app})
}

// StartDrag begins moving app's window with the pointer at ev.
func (c *Client) StartDrag(ctx context.Context, app string, ev desktop.PointerEvent) (*desktop.Snapshot, error) {
	p := pointerPayload(ev)
	p.App = app
	return c.call(ctx, CommandStartDrag, p)
}

// StartResize begins resizing app's window from the dir handle.
func (c *Client) StartResize(ctx context.Context, app string, dir desktop.Direction, ev desktop.PointerEvent) (*desktop.Snapshot, error) {
	p := pointerPayload(ev)
	p.App = app
	p.Direction = dir.String()
	return c.call(ctx, CommandStartResize, p)
}

func (c *Client) PointerMove(ctx context.Context, ev desktop.PointerEvent) (*desktop.Snapshot, error) {
	return c.call(ctx, CommandPointerMove, pointerPayload(ev))
}

func (c *Client) PointerUp(ctx context.Context, ev desktop.PointerEvent) (*desktop.Snapshot, error) {
	return c.call(ctx, CommandPointerUp, pointerPayload(ev))
}

func (c *Client) LostPointerCapture(ctx context.Context, pointerID int) (*desktop.Snapshot, error) {
	return c.call(ctx, CommandLostCapture, PointerPayload{PointerID: pointerID})
}

// DesktopPointerDown reports a press on the shell; target says what was hit.
func (c *Client) DesktopPointerDown(ctx context.Context, ev desktop.PointerEvent, target desktop.Target) (*desktop.Snapshot, error) {
	p := pointerPayload(ev)
	p.Target = target.String()
	return c.call(ctx, CommandDesktopPointer, p)
}

// SetForeground sets the foreground app of a phone or tablet mode. An empty
// app returns that mode to its home screen.
func (c *Client) SetForeground(ctx context.Context, mode desktop.ViewMode, app string) (*desktop.Snapshot, error) {
	return c.call(ctx, CommandSetForeground, ForegroundPayload{Mode: string(mode), App: app})
}

func (c *Client) GoHome(ctx context.Context) (*desktop.Snapshot, error) {
	return c.call(ctx, CommandGoHome, nil)
}

func (c *Client) ToggleStartMenu(ctx context.Context) (*desktop.Snapshot, error) {
	return c.call(ctx, CommandToggleStartMenu, nil)
}

// SetViewport reports a new viewport size.
func (c *Client) SetViewport(ctx context.Context, width, height int) (*desktop.Snapshot, error) {
	return c.call(ctx, CommandSetViewport, ViewportPayload{Width: width, Height: height})
}

// SetIconBounds reports icon positions for rubber-band selection.
func (c *Client) SetIconBounds(ctx context.Context, icons map[string]geometry.Rect) (*desktop.Snapshot, error) {
	return c.call(ctx, CommandSetIconBounds, IconBoundsPayload{Icons: icons})
}

// Ping checks if the daemon is responding
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.GetStatus(ctx)
	return err
}

func pointerPayload(ev desktop.PointerEvent) PointerPayload {
	return PointerPayload{
		PointerID: ev.PointerID,
		X:         ev.X,
		Y:         ev.Y,
		Button:    int(ev.Button),
	}
}
