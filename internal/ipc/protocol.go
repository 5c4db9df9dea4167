package ipc

import (
	"encoding/json"
	"fmt"

	"github.com/1broseidon/deskshell/internal/desktop"
	"github.com/1broseidon/deskshell/internal/geometry"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandReload          CommandType = "RELOAD"
	CommandGetStatus       CommandType = "GET_STATUS"
	CommandGetSnapshot     CommandType = "GET_SNAPSHOT"
	CommandOpen            CommandType = "OPEN"
	CommandClose           CommandType = "CLOSE"
	CommandMinimize        CommandType = "MINIMIZE"
	CommandToggleMaximize  CommandType = "TOGGLE_MAXIMIZE"
	CommandFocus           CommandType = "FOCUS"
	CommandTaskbarClick    CommandType = "TASKBAR_CLICK"
	CommandStartDrag       CommandType = "START_DRAG"
	CommandStartResize     CommandType = "START_RESIZE"
	CommandPointerMove     CommandType = "POINTER_MOVE"
	CommandPointerUp       CommandType = "POINTER_UP"
	CommandLostCapture     CommandType = "LOST_CAPTURE"
	CommandDesktopPointer  CommandType = "DESKTOP_POINTER_DOWN"
	CommandClickIcon       CommandType = "CLICK_ICON"
	CommandDoubleClickIcon CommandType = "DOUBLE_CLICK_ICON"
	CommandSetForeground   CommandType = "SET_FOREGROUND"
	CommandGoHome          CommandType = "GO_HOME"
	CommandToggleStartMenu CommandType = "TOGGLE_START_MENU"
	CommandSetViewport     CommandType = "SET_VIEWPORT"
	CommandSetIconBounds   CommandType = "SET_ICON_BOUNDS"
)

const (
	StatusOK    = "OK"
	StatusError = "ERROR"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	Mode          desktop.ViewMode `json:"mode"`
	Viewport      desktop.Size     `json:"viewport"`
	OpenCount     int              `json:"open_count"`
	Active        desktop.AppID    `json:"active,omitempty"`
	Dragging      bool             `json:"dragging"`
	Apps          []desktop.AppID  `json:"apps"`
	Revision      uint64           `json:"revision"`
	UptimeSeconds int64            `json:"uptime_seconds"`
	DaemonRunning bool             `json:"daemon_running"`
}

// AppPayload names one application. Used by OPEN, CLOSE, MINIMIZE,
// TOGGLE_MAXIMIZE, FOCUS, TASKBAR_CLICK, CLICK_ICON and DOUBLE_CLICK_ICON.
type AppPayload struct {
	App string `json:"app"`
}

// PointerPayload carries a pointer sample. App is used by START_DRAG and
// START_RESIZE, Direction by START_RESIZE, Target by DESKTOP_POINTER_DOWN.
type PointerPayload struct {
	App       string `json:"app,omitempty"`
	Direction string `json:"direction,omitempty"`
	Target    string `json:"target,omitempty"`
	PointerID int    `json:"pointer_id"`
	X         int    `json:"x"`
	Y         int    `json:"y"`
	Button    int    `json:"button,omitempty"`
}

// Event converts the payload into an engine pointer event.
func (p PointerPayload) Event() desktop.PointerEvent {
	return desktop.PointerEvent{
		PointerID: p.PointerID,
		X:         p.X,
		Y:         p.Y,
		Button:    desktop.Button(p.Button),
	}
}

// ForegroundPayload sets the foreground app of a single-app mode. An empty
// App returns the mode to its home screen.
type ForegroundPayload struct {
	Mode string `json:"mode"`
	App  string `json:"app,omitempty"`
}

// ViewportPayload reports a new viewport size.
type ViewportPayload struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// IconBoundsPayload reports icon positions in viewport pixels.
type IconBoundsPayload struct {
	Icons map[string]geometry.Rect `json:"icons"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: StatusOK,
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: StatusError,
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	if req.Command == "" {
		return nil, fmt.Errorf("failed to parse request: command is required")
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}

func decodePayload(raw json.RawMessage, out interface{}) error {
	if len(raw) == 0 {
		return fmt.Errorf("payload is required")
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("invalid payload: %w", err)
	}
	return nil
}
