package ipc

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/1broseidon/deskshell/internal/desktop"
	"github.com/1broseidon/deskshell/internal/geometry"
)

// syncEngine runs work inline under a mutex.
type syncEngine struct {
	mu   sync.Mutex
	desk *desktop.Desktop
}

func (e *syncEngine) Do(_ context.Context, fn func(*desktop.Desktop)) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(e.desk)
	return nil
}

// countingEngine reports a fixed revision and can fail every command.
type countingEngine struct {
	syncEngine
	revision uint64
	fail     error
}

func (e *countingEngine) Do(ctx context.Context, fn func(*desktop.Desktop)) error {
	if e.fail != nil {
		return e.fail
	}
	return e.syncEngine.Do(ctx, fn)
}

func (e *countingEngine) Revision() uint64 {
	return e.revision
}

func newTestServer(t *testing.T) (*Server, *syncEngine) {
	t.Helper()
	layout := desktop.ShellLayout{IconColumnWidth: 96, WidgetRailWidth: 224, TaskbarHeight: 32}
	desk := desktop.New(desktop.DefaultCatalog(), desktop.DefaultSettings(), desktop.WithShellLayout(layout))
	desk.SetViewport(1600, 900)

	engine := &syncEngine{desk: desk}
	srv, err := NewServer(ServerOptions{
		SocketPath: filepath.Join(t.TempDir(), "deskshell.sock"),
		Engine:     engine,
		Logger:     zerolog.Nop(),
	})
	if err != nil {
		t.Fatalf("NewServer() error: %v", err)
	}
	return srv, engine
}

func request(t *testing.T, cmd CommandType, payload interface{}) *Request {
	t.Helper()
	req := &Request{Command: cmd}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		req.Payload = raw
	}
	return req
}

func decodeSnapshot(t *testing.T, resp *Response) desktop.Snapshot {
	t.Helper()
	if resp.Status != StatusOK {
		t.Fatalf("expected OK, got %s: %s", resp.Status, resp.Error)
	}
	var snap desktop.Snapshot
	if err := json.Unmarshal(resp.Data, &snap); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	return snap
}

func TestHandleCommand_AppCommands(t *testing.T) {
	srv, _ := newTestServer(t)
	ctx := context.Background()

	snap := decodeSnapshot(t, srv.handleCommand(ctx, request(t, CommandOpen, AppPayload{App: "About"})))
	if snap.Active != desktop.AppAbout {
		t.Fatalf("active = %q, want about", snap.Active)
	}

	snap = decodeSnapshot(t, srv.handleCommand(ctx, request(t, CommandTaskbarClick, AppPayload{App: "about"})))
	if w, _ := snap.Window(desktop.AppAbout); !w.Minimized {
		t.Fatalf("taskbar click on the active window should minimize it")
	}

	snap = decodeSnapshot(t, srv.handleCommand(ctx, request(t, CommandToggleMaximize, AppPayload{App: "terminal"})))
	w, _ := snap.Window(desktop.AppTerminal)
	if !w.Maximized || w.Frame != (geometry.Rect{Top: 8, Left: 8, Width: 1264, Height: 852}) {
		t.Fatalf("terminal after maximize = %+v", w)
	}

	snap = decodeSnapshot(t, srv.handleCommand(ctx, request(t, CommandClose, AppPayload{App: "terminal"})))
	if len(snap.Open) != 1 || snap.Open[0] != desktop.AppAbout {
		t.Fatalf("open = %v", snap.Open)
	}
}

func TestHandleCommand_Rejects(t *testing.T) {
	srv, engine := newTestServer(t)
	ctx := context.Background()
	before := engine.desk.Snapshot()

	tests := []struct {
		name string
		req  *Request
		want string
	}{
		{"unknown command", &Request{Command: "EXPLODE"}, "Unknown command"},
		{"unknown app", request(t, CommandOpen, AppPayload{App: "ghost"}), "unknown application"},
		{"missing payload", &Request{Command: CommandFocus}, "payload is required"},
		{"bad direction", request(t, CommandStartResize, PointerPayload{App: "terminal", Direction: "sideways"}), "unknown resize direction"},
		{"bad target", request(t, CommandDesktopPointer, PointerPayload{Target: "floor"}), "unknown pointer target"},
		{"bad mode", request(t, CommandSetForeground, ForegroundPayload{Mode: "watch"}), "unknown view mode"},
		{"desktop foreground", request(t, CommandSetForeground, ForegroundPayload{Mode: "desktop", App: "about"}), "no foreground app"},
		{"zero viewport", request(t, CommandSetViewport, ViewportPayload{Width: 0, Height: 900}), "must be positive"},
		{"unknown icon", request(t, CommandSetIconBounds, IconBoundsPayload{Icons: map[string]geometry.Rect{"ghost": {Width: 1, Height: 1}}}), "unknown application"},
		{"no reload", &Request{Command: CommandReload}, "not supported"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := srv.handleCommand(ctx, tt.req)
			if resp.Status != StatusError {
				t.Fatalf("expected ERROR, got %s", resp.Status)
			}
			if !strings.Contains(resp.Error, tt.want) {
				t.Fatalf("error %q does not mention %q", resp.Error, tt.want)
			}
		})
	}

	after := engine.desk.Snapshot()
	if len(after.Open) != len(before.Open) || after.Active != before.Active {
		t.Fatalf("rejected commands changed state: %+v -> %+v", before.Open, after.Open)
	}
}

func TestHandleCommand_DragSequence(t *testing.T) {
	srv, _ := newTestServer(t)
	ctx := context.Background()

	// Workspace starts at x=96; terminal frame starts at left 220, top 100.
	start := PointerPayload{App: "terminal", PointerID: 7, X: 96 + 220 + 10, Y: 100 + 10}
	snap := decodeSnapshot(t, srv.handleCommand(ctx, request(t, CommandStartDrag, start)))
	if !snap.Dragging || snap.Gesture == nil || snap.Gesture.Kind != "move" {
		t.Fatalf("expected a move gesture, got %+v", snap.Gesture)
	}

	decodeSnapshot(t, srv.handleCommand(ctx, request(t, CommandPointerMove, PointerPayload{PointerID: 7, X: 96 + 50 + 10, Y: 60 + 10})))
	snap = decodeSnapshot(t, srv.handleCommand(ctx, request(t, CommandPointerUp, PointerPayload{PointerID: 7})))

	w, _ := snap.Window(desktop.AppTerminal)
	if w.Frame.Left != 50 || w.Frame.Top != 60 {
		t.Fatalf("terminal frame = %+v", w.Frame)
	}
	if snap.Dragging {
		t.Fatalf("gesture should have ended")
	}
}

func TestHandleCommand_SelectionWithIconBounds(t *testing.T) {
	srv, _ := newTestServer(t)
	ctx := context.Background()

	icons := map[string]geometry.Rect{
		"about":  {Top: 10, Left: 10, Width: 60, Height: 60},
		"skills": {Top: 300, Left: 10, Width: 60, Height: 60},
	}
	decodeSnapshot(t, srv.handleCommand(ctx, request(t, CommandSetIconBounds, IconBoundsPayload{Icons: icons})))
	decodeSnapshot(t, srv.handleCommand(ctx, request(t, CommandDesktopPointer, PointerPayload{PointerID: 1, X: 0, Y: 0})))
	snap := decodeSnapshot(t, srv.handleCommand(ctx, request(t, CommandPointerMove, PointerPayload{PointerID: 1, X: 100, Y: 100})))

	if len(snap.Selection) != 1 || snap.Selection[0] != desktop.AppAbout {
		t.Fatalf("selection = %v", snap.Selection)
	}
}

func TestHandleCommand_ViewportAndForeground(t *testing.T) {
	srv, _ := newTestServer(t)
	ctx := context.Background()

	snap := decodeSnapshot(t, srv.handleCommand(ctx, request(t, CommandSetViewport, ViewportPayload{Width: 600, Height: 900})))
	if snap.Mode != desktop.ModePhone || snap.Workspace != nil {
		t.Fatalf("mode = %s workspace = %v", snap.Mode, snap.Workspace)
	}

	snap = decodeSnapshot(t, srv.handleCommand(ctx, request(t, CommandSetForeground, ForegroundPayload{Mode: "phone", App: "contact"})))
	if snap.PhoneApp != desktop.AppContact {
		t.Fatalf("phone app = %q", snap.PhoneApp)
	}

	snap = decodeSnapshot(t, srv.handleCommand(ctx, request(t, CommandGoHome, nil)))
	if snap.PhoneApp != desktop.NoApp {
		t.Fatalf("phone app after home = %q", snap.PhoneApp)
	}
}

func TestHandleCommand_Reload(t *testing.T) {
	srv, _ := newTestServer(t)
	called := false
	srv.reload = func(context.Context) error {
		called = true
		return nil
	}
	decodeSnapshot(t, srv.handleCommand(context.Background(), &Request{Command: CommandReload}))
	if !called {
		t.Fatal("reload hook not called")
	}
}

func TestServerClientRoundTrip(t *testing.T) {
	srv, _ := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := srv.Start(ctx); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	defer srv.Stop()

	client := NewClientWithSocket(srv.SocketPath(), 2*time.Second)

	status, err := client.GetStatus(ctx)
	if err != nil {
		t.Fatalf("GetStatus() error: %v", err)
	}
	if !status.DaemonRunning || status.Mode != desktop.ModeDesktop || status.OpenCount != 1 {
		t.Fatalf("status = %+v", status)
	}
	if len(status.Apps) != len(desktop.DefaultCatalog()) {
		t.Fatalf("apps = %v", status.Apps)
	}

	snap, err := client.Open(ctx, "projects")
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	if snap.Active != desktop.AppProjects {
		t.Fatalf("active = %q", snap.Active)
	}

	snap, err = client.StartResize(ctx, "projects", desktop.CornerBottomRight, desktop.PointerEvent{PointerID: 3, X: 1000, Y: 500})
	if err != nil {
		t.Fatalf("StartResize() error: %v", err)
	}
	if snap.Gesture == nil || snap.Gesture.Direction != "bottom-right" {
		t.Fatalf("gesture = %+v", snap.Gesture)
	}
	if _, err := client.LostPointerCapture(ctx, 3); err != nil {
		t.Fatalf("LostPointerCapture() error: %v", err)
	}

	if _, err := client.Open(ctx, "ghost"); err == nil || !strings.Contains(err.Error(), "daemon error") {
		t.Fatalf("expected daemon error for unknown app, got %v", err)
	}
}

func TestClient_NoDaemon(t *testing.T) {
	client := NewClientWithSocket(filepath.Join(t.TempDir(), "missing.sock"), time.Second)
	if err := client.Ping(context.Background()); err == nil {
		t.Fatal("expected connection error")
	}
}

func TestServer_StatusRevisionAndEngineFailure(t *testing.T) {
	engine := &countingEngine{
		syncEngine: syncEngine{desk: desktop.New(desktop.DefaultCatalog(), desktop.DefaultSettings())},
		revision:   7,
	}
	srv, err := NewServer(ServerOptions{
		SocketPath: filepath.Join(t.TempDir(), "deskshell.sock"),
		Engine:     engine,
		Logger:     zerolog.Nop(),
	})
	if err != nil {
		t.Fatalf("NewServer() error: %v", err)
	}
	ctx := context.Background()

	resp := srv.handleCommand(ctx, request(t, CommandGetStatus, nil))
	if resp.Status != StatusOK {
		t.Fatalf("GET_STATUS failed: %s", resp.Error)
	}
	var status StatusData
	if err := json.Unmarshal(resp.Data, &status); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if status.Revision != 7 {
		t.Fatalf("revision = %d, want 7", status.Revision)
	}

	engine.fail = errors.New("desktop command panicked: boom")
	resp = srv.handleCommand(ctx, request(t, CommandOpen, AppPayload{App: "about"}))
	if resp.Status != StatusError || !strings.Contains(resp.Error, "boom") {
		t.Fatalf("OPEN with failing engine = %+v", resp)
	}
}
