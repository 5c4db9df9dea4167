package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/1broseidon/deskshell/internal/desktop"
	"github.com/1broseidon/deskshell/internal/runtimepath"
)

// Engine runs work against the desktop on its owning goroutine.
type Engine interface {
	Do(ctx context.Context, fn func(*desktop.Desktop)) error
}

// revisioner is implemented by engines that count state changes.
type revisioner interface {
	Revision() uint64
}

// ServerOptions configures a Server.
type ServerOptions struct {
	// SocketPath defaults to runtimepath.SocketPath().
	SocketPath string
	Engine     Engine
	// Reload re-reads configuration. RELOAD fails when it is nil.
	Reload func(ctx context.Context) error
	Logger zerolog.Logger
	// RequestTimeout bounds each command. Defaults to 5s.
	RequestTimeout time.Duration
}

// Server handles IPC requests from clients
type Server struct {
	socketPath     string
	listener       net.Listener
	engine         Engine
	reload         func(ctx context.Context) error
	logger         zerolog.Logger
	requestTimeout time.Duration
	startTime      time.Time
	baseCtx        context.Context
	cancel         context.CancelFunc
	shuttingDown   bool
	shutdownMu     sync.Mutex
	conns          sync.WaitGroup
}

// NewServer creates a new IPC server
func NewServer(opts ServerOptions) (*Server, error) {
	if opts.Engine == nil {
		return nil, fmt.Errorf("ipc server requires an engine")
	}
	socketPath := opts.SocketPath
	if socketPath == "" {
		var err error
		socketPath, err = runtimepath.SocketPath()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
		}
	}
	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return &Server{
		socketPath:     socketPath,
		engine:         opts.Engine,
		reload:         opts.Reload,
		logger:         opts.Logger,
		requestTimeout: timeout,
		startTime:      time.Now(),
	}, nil
}

// SocketPath returns the path the server listens on.
func (s *Server) SocketPath() string {
	return s.socketPath
}

// Start begins listening for IPC connections. Requests in flight are
// cancelled when ctx is done or Stop is called.
func (s *Server) Start(ctx context.Context) error {
	// A stale socket from a crashed daemon would make Listen fail.
	os.Remove(s.socketPath)

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.baseCtx, s.cancel = context.WithCancel(ctx)
	s.logger.Info().Str("socket", s.socketPath).Msg("IPC server listening")

	go s.acceptLoop()
	return nil
}

// acceptLoop accepts incoming connections
func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			if s.shuttingDown {
				s.shutdownMu.Unlock()
				return
			}
			s.shutdownMu.Unlock()
			s.logger.Warn().Err(err).Msg("IPC accept error")
			continue
		}

		s.conns.Add(1)
		go func() {
			defer s.conns.Done()
			s.handleConnection(conn)
		}()
	}
}

// handleConnection handles a single IPC connection
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	log := s.logger.With().Str("conn", uuid.NewString()).Logger()
	conn.SetDeadline(time.Now().Add(s.requestTimeout + time.Second))

	reader := bufio.NewReader(conn)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		log.Warn().Err(err).Msg("IPC read error")
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.sendError(conn, fmt.Sprintf("Invalid request: %v", err))
		return
	}
	log.Debug().Str("command", string(req.Command)).Msg("IPC request")

	ctx, cancel := context.WithTimeout(s.baseCtx, s.requestTimeout)
	defer cancel()
	resp := s.handleCommand(ctx, req)
	if resp.Status == StatusError {
		log.Debug().Str("command", string(req.Command)).Str("error", resp.Error).Msg("IPC request failed")
	}

	respData, err := resp.Marshal()
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal response")
		return
	}
	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		log.Warn().Err(err).Msg("failed to send response")
	}
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(ctx context.Context, req *Request) *Response {
	switch req.Command {
	case CommandReload:
		return s.handleReload(ctx)
	case CommandGetStatus:
		return s.handleGetStatus(ctx)
	case CommandGetSnapshot:
		return s.mutate(ctx, func(*desktop.Desktop) error { return nil })
	case CommandOpen:
		return s.handleApp(ctx, req.Payload, (*desktop.Desktop).Open)
	case CommandClose:
		return s.handleApp(ctx, req.Payload, (*desktop.Desktop).Close)
	case CommandMinimize:
		return s.handleApp(ctx, req.Payload, (*desktop.Desktop).Minimize)
	case CommandToggleMaximize:
		return s.handleApp(ctx, req.Payload, (*desktop.Desktop).ToggleMaximize)
	case CommandFocus:
		return s.handleApp(ctx, req.Payload, (*desktop.Desktop).Focus)
	case CommandTaskbarClick:
		return s.handleApp(ctx, req.Payload, (*desktop.Desktop).TaskbarClick)
	case CommandClickIcon:
		return s.handleApp(ctx, req.Payload, (*desktop.Desktop).ClickIcon)
	case CommandDoubleClickIcon:
		return s.handleApp(ctx, req.Payload, (*desktop.Desktop).DoubleClickIcon)
	case CommandStartDrag:
		return s.handleStartDrag(ctx, req.Payload)
	case CommandStartResize:
		return s.handleStartResize(ctx, req.Payload)
	case CommandPointerMove:
		return s.handlePointer(ctx, req.Payload, (*desktop.Desktop).PointerMove)
	case CommandPointerUp:
		return s.handlePointer(ctx, req.Payload, (*desktop.Desktop).PointerUp)
	case CommandLostCapture:
		return s.handlePointer(ctx, req.Payload, func(d *desktop.Desktop, ev desktop.PointerEvent) {
			d.LostPointerCapture(ev.PointerID)
		})
	case CommandDesktopPointer:
		return s.handleDesktopPointerDown(ctx, req.Payload)
	case CommandSetForeground:
		return s.handleSetForeground(ctx, req.Payload)
	case CommandGoHome:
		return s.mutate(ctx, func(d *desktop.Desktop) error {
			d.GoHome()
			return nil
		})
	case CommandToggleStartMenu:
		return s.mutate(ctx, func(d *desktop.Desktop) error {
			d.ToggleStartMenu()
			return nil
		})
	case CommandSetViewport:
		return s.handleSetViewport(ctx, req.Payload)
	case CommandSetIconBounds:
		return s.handleSetIconBounds(ctx, req.Payload)
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

// mutate runs fn on the engine and answers with the resulting snapshot.
func (s *Server) mutate(ctx context.Context, fn func(*desktop.Desktop) error) *Response {
	var (
		snap   desktop.Snapshot
		cmdErr error
	)
	err := s.engine.Do(ctx, func(d *desktop.Desktop) {
		if cmdErr = fn(d); cmdErr == nil {
			snap = d.Snapshot()
		}
	})
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Desktop command failed: %v", err))
	}
	if cmdErr != nil {
		return NewErrorResponse(cmdErr.Error())
	}
	resp, err := NewOKResponse(snap)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return resp
}

func (s *Server) handleReload(ctx context.Context) *Response {
	if s.reload == nil {
		return NewErrorResponse("Reload is not supported by this daemon")
	}
	s.logger.Info().Msg("IPC: received RELOAD command")
	if err := s.reload(ctx); err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to reload config: %v", err))
	}
	s.logger.Info().Msg("IPC: config reloaded")
	return s.mutate(ctx, func(*desktop.Desktop) error { return nil })
}

func (s *Server) handleGetStatus(ctx context.Context) *Response {
	var status StatusData
	err := s.engine.Do(ctx, func(d *desktop.Desktop) {
		snap := d.Snapshot()
		status = StatusData{
			Mode:      snap.Mode,
			Viewport:  snap.Viewport,
			OpenCount: len(snap.Open),
			Active:    snap.Active,
			Dragging:  snap.Dragging,
			Apps:      d.Catalog().IDs(),
		}
	})
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Desktop unavailable: %v", err))
	}
	if r, ok := s.engine.(revisioner); ok {
		status.Revision = r.Revision()
	}
	status.UptimeSeconds = int64(time.Since(s.startTime).Seconds())
	status.DaemonRunning = true

	resp, _ := NewOKResponse(status)
	return resp
}

func (s *Server) handleApp(ctx context.Context, payload json.RawMessage, apply func(*desktop.Desktop, desktop.AppID)) *Response {
	var p AppPayload
	if err := decodePayload(payload, &p); err != nil {
		return NewErrorResponse(err.Error())
	}
	return s.mutate(ctx, func(d *desktop.Desktop) error {
		id, err := d.Catalog().Parse(p.App)
		if err != nil {
			return err
		}
		apply(d, id)
		return nil
	})
}

func (s *Server) handleStartDrag(ctx context.Context, payload json.RawMessage) *Response {
	var p PointerPayload
	if err := decodePayload(payload, &p); err != nil {
		return NewErrorResponse(err.Error())
	}
	return s.mutate(ctx, func(d *desktop.Desktop) error {
		id, err := d.Catalog().Parse(p.App)
		if err != nil {
			return err
		}
		d.StartDrag(id, p.Event())
		return nil
	})
}

func (s *Server) handleStartResize(ctx context.Context, payload json.RawMessage) *Response {
	var p PointerPayload
	if err := decodePayload(payload, &p); err != nil {
		return NewErrorResponse(err.Error())
	}
	dir, err := desktop.ParseDirection(p.Direction)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return s.mutate(ctx, func(d *desktop.Desktop) error {
		id, err := d.Catalog().Parse(p.App)
		if err != nil {
			return err
		}
		d.StartResize(id, dir, p.Event())
		return nil
	})
}

func (s *Server) handlePointer(ctx context.Context, payload json.RawMessage, apply func(*desktop.Desktop, desktop.PointerEvent)) *Response {
	var p PointerPayload
	if err := decodePayload(payload, &p); err != nil {
		return NewErrorResponse(err.Error())
	}
	return s.mutate(ctx, func(d *desktop.Desktop) error {
		apply(d, p.Event())
		return nil
	})
}

func (s *Server) handleDesktopPointerDown(ctx context.Context, payload json.RawMessage) *Response {
	var p PointerPayload
	if err := decodePayload(payload, &p); err != nil {
		return NewErrorResponse(err.Error())
	}
	target, err := desktop.ParseTarget(p.Target)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return s.mutate(ctx, func(d *desktop.Desktop) error {
		d.DesktopPointerDown(p.Event(), target)
		return nil
	})
}

func (s *Server) handleSetForeground(ctx context.Context, payload json.RawMessage) *Response {
	var p ForegroundPayload
	if err := decodePayload(payload, &p); err != nil {
		return NewErrorResponse(err.Error())
	}
	mode, err := desktop.ParseViewMode(p.Mode)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	if !mode.SingleApp() {
		return NewErrorResponse(fmt.Sprintf("mode %q has no foreground app", mode))
	}
	return s.mutate(ctx, func(d *desktop.Desktop) error {
		id := desktop.NoApp
		if p.App != "" {
			parsed, err := d.Catalog().Parse(p.App)
			if err != nil {
				return err
			}
			id = parsed
		}
		d.SetForegroundApp(mode, id)
		return nil
	})
}

func (s *Server) handleSetViewport(ctx context.Context, payload json.RawMessage) *Response {
	var p ViewportPayload
	if err := decodePayload(payload, &p); err != nil {
		return NewErrorResponse(err.Error())
	}
	if p.Width <= 0 || p.Height <= 0 {
		return NewErrorResponse(fmt.Sprintf("viewport must be positive, got %dx%d", p.Width, p.Height))
	}
	return s.mutate(ctx, func(d *desktop.Desktop) error {
		d.SetViewport(p.Width, p.Height)
		return nil
	})
}

func (s *Server) handleSetIconBounds(ctx context.Context, payload json.RawMessage) *Response {
	var p IconBoundsPayload
	if err := decodePayload(payload, &p); err != nil {
		return NewErrorResponse(err.Error())
	}
	return s.mutate(ctx, func(d *desktop.Desktop) error {
		icons := make(desktop.StaticIcons, len(p.Icons))
		for name, bounds := range p.Icons {
			id, err := d.Catalog().Parse(name)
			if err != nil {
				return err
			}
			if bounds.Empty() {
				return fmt.Errorf("icon %q has empty bounds", name)
			}
			icons[id] = bounds
		}
		d.SetIcons(icons)
		return nil
	})
}

// sendError sends an error response
func (s *Server) sendError(conn net.Conn, errMsg string) {
	resp := NewErrorResponse(errMsg)
	data, _ := resp.Marshal()
	data = append(data, '\n')
	conn.Write(data)
}

// Stop gracefully shuts down the IPC server
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}
	if s.listener != nil {
		s.listener.Close()
	}
	s.conns.Wait()
	os.Remove(s.socketPath)
}
