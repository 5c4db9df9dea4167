package mcp

import "github.com/1broseidon/deskshell/internal/geometry"

// GetDesktopInput is the input for the get_desktop tool.
type GetDesktopInput struct {
	IncludeClosed bool `json:"include_closed,omitempty" jsonschema:"When true, also list windows that are not open (default: false)"`
}

// WindowInfo describes a single window.
type WindowInfo struct {
	App       string        `json:"app"`
	Title     string        `json:"title"`
	Frame     geometry.Rect `json:"frame"`
	Open      bool          `json:"open"`
	Minimized bool          `json:"minimized"`
	Maximized bool          `json:"maximized"`
	Active    bool          `json:"active"`
	ZIndex    int           `json:"z_index,omitempty"`
}

// DesktopOutput is the output for every tool that changes the desktop.
type DesktopOutput struct {
	Mode       string         `json:"mode"`
	Viewport   string         `json:"viewport"`
	Workspace  *geometry.Rect `json:"workspace,omitempty"`
	Active     string         `json:"active,omitempty"`
	Foreground string         `json:"foreground,omitempty"`
	Selection  []string       `json:"selection"`
	Windows    []WindowInfo   `json:"windows"`
}

// AppInput names an application.
type AppInput struct {
	App string `json:"app" jsonschema:"required,Application id (about, experience, skills, contact, projects, handbook, terminal or a configured app)"`
}

// MoveWindowInput is the input for the move_window tool.
type MoveWindowInput struct {
	App  string `json:"app" jsonschema:"required,Application id of the window to move"`
	Left int    `json:"left" jsonschema:"required,Target left edge in workspace pixels; clamped so the window stays inside the workspace"`
	Top  int    `json:"top" jsonschema:"required,Target top edge in workspace pixels; clamped so the window stays inside the workspace"`
}

// ResizeWindowInput is the input for the resize_window tool.
type ResizeWindowInput struct {
	App       string `json:"app" jsonschema:"required,Application id of the window to resize"`
	Direction string `json:"direction" jsonschema:"required,Handle to drag: top, bottom, left, right, top-left, top-right, bottom-left or bottom-right"`
	DX        int    `json:"dx" jsonschema:"Horizontal pointer travel in pixels (positive is right)"`
	DY        int    `json:"dy" jsonschema:"Vertical pointer travel in pixels (positive is down)"`
}

// SelectAreaInput is the input for the select_area tool.
type SelectAreaInput struct {
	X1 int `json:"x1" jsonschema:"required,Start corner x in viewport pixels"`
	Y1 int `json:"y1" jsonschema:"required,Start corner y in viewport pixels"`
	X2 int `json:"x2" jsonschema:"required,End corner x in viewport pixels"`
	Y2 int `json:"y2" jsonschema:"required,End corner y in viewport pixels"`
}

// SetViewportInput is the input for the set_viewport tool.
type SetViewportInput struct {
	Width  int `json:"width" jsonschema:"required,Viewport width in pixels"`
	Height int `json:"height" jsonschema:"required,Viewport height in pixels"`
}

// SetForegroundInput is the input for the set_foreground tool.
type SetForegroundInput struct {
	Mode string `json:"mode" jsonschema:"required,View mode to change: phone or tablet"`
	App  string `json:"app,omitempty" jsonschema:"Application id to bring to the foreground; omit to return to the home screen"`
}

// NoInput is used by tools that take no arguments.
type NoInput struct{}
