package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/1broseidon/deskshell/internal/desktop"
	"github.com/1broseidon/deskshell/internal/geometry"
)

// WindowConfig holds the per-window size floor and paint base.
type WindowConfig struct {
	MinWidth  int `yaml:"min_width"`
	MinHeight int `yaml:"min_height"`
	ZBase     int `yaml:"z_base"`
}

// MaximizeConfig controls the maximized frame.
type MaximizeConfig struct {
	Inset     int `yaml:"inset"`
	MinWidth  int `yaml:"min_width"`
	MinHeight int `yaml:"min_height"`
}

// BreakpointConfig maps viewport widths to view modes.
type BreakpointConfig struct {
	PhoneBelow int `yaml:"phone_below"` // widths below are phone
	TabletMax  int `yaml:"tablet_max"`  // widths up to and including are tablet
}

// ShellConfig sizes the desktop chrome around the workspace, in pixels.
type ShellConfig struct {
	TaskbarHeight   int `yaml:"taskbar_height"`
	WidgetRailWidth int `yaml:"widget_rail_width"`
	IconColumnWidth int `yaml:"icon_column_width"`
	IconHeight      int `yaml:"icon_height"`
	IconGap         int `yaml:"icon_gap"`
	PhoneDockSize   int `yaml:"phone_dock_size"`
}

// AppConfig declares one application and its initial window frame.
type AppConfig struct {
	ID     string `yaml:"id"`
	Title  string `yaml:"title"`
	Top    int    `yaml:"top"`
	Left   int    `yaml:"left"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

// TUIConfig maps terminal cells to viewport pixels.
type TUIConfig struct {
	CellWidth  int `yaml:"cell_width"`
	CellHeight int `yaml:"cell_height"`
}

// HotkeysConfig binds global X11 key sequences (xgbutil syntax such as
// "Mod4-space") to launcher actions. Empty entries are unbound.
type HotkeysConfig struct {
	StartMenu string `yaml:"start_menu"`
	Home      string `yaml:"home"`
	// Launch maps an app id to the sequence that opens it.
	Launch map[string]string `yaml:"launch,omitempty"`
}

// LoggingConfig configures the process logger.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`
	// File is an optional log file; ~ is expanded.
	File string `yaml:"file,omitempty"`
}

// Config is the effective deskshell configuration.
type Config struct {
	Window      WindowConfig     `yaml:"window"`
	Maximize    MaximizeConfig   `yaml:"maximize"`
	Breakpoints BreakpointConfig `yaml:"breakpoints"`
	Shell       ShellConfig      `yaml:"shell"`
	Apps        []AppConfig      `yaml:"apps"`
	InitialOpen []string         `yaml:"initial_open"`
	TUI         TUIConfig        `yaml:"tui"`
	Hotkeys     HotkeysConfig    `yaml:"hotkeys"`
	Logging     LoggingConfig    `yaml:"logging"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	catalog := desktop.DefaultCatalog()
	apps := make([]AppConfig, 0, len(catalog))
	for _, app := range catalog {
		apps = append(apps, AppConfig{
			ID:     string(app.ID),
			Title:  app.Title,
			Top:    app.Frame.Top,
			Left:   app.Frame.Left,
			Width:  app.Frame.Width,
			Height: app.Frame.Height,
		})
	}

	return &Config{
		Window: WindowConfig{
			MinWidth:  desktop.DefaultMinWindowWidth,
			MinHeight: desktop.DefaultMinWindowHeight,
			ZBase:     desktop.DefaultZBase,
		},
		Maximize: MaximizeConfig{
			Inset:     desktop.DefaultMaximizeInset,
			MinWidth:  desktop.DefaultMaximizeMinWidth,
			MinHeight: desktop.DefaultMaximizeMinHeight,
		},
		Breakpoints: BreakpointConfig{
			PhoneBelow: desktop.DefaultPhoneBelow,
			TabletMax:  desktop.DefaultTabletMax,
		},
		Shell: ShellConfig{
			TaskbarHeight:   32,
			WidgetRailWidth: 224,
			IconColumnWidth: 96,
			IconHeight:      64,
			IconGap:         16,
			PhoneDockSize:   desktop.DefaultPhoneDockSize,
		},
		Apps:        apps,
		InitialOpen: []string{string(desktop.AppTerminal)},
		TUI: TUIConfig{
			CellWidth:  8,
			CellHeight: 16,
		},
		Hotkeys: HotkeysConfig{
			StartMenu: "Mod4-space",
			Home:      "Mod4-h",
			Launch: map[string]string{
				string(desktop.AppTerminal): "Mod4-Return",
			},
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Catalog converts the configured apps into an engine catalog.
func (c *Config) Catalog() desktop.Catalog {
	out := make(desktop.Catalog, 0, len(c.Apps))
	for _, app := range c.Apps {
		out = append(out, desktop.AppSpec{
			ID:    desktop.AppID(app.ID),
			Title: app.Title,
			Frame: geometry.Rect{Top: app.Top, Left: app.Left, Width: app.Width, Height: app.Height},
		})
	}
	return out
}

// Settings converts the configured constants into engine settings.
func (c *Config) Settings() desktop.Settings {
	initial := make([]desktop.AppID, 0, len(c.InitialOpen))
	for _, id := range c.InitialOpen {
		initial = append(initial, desktop.AppID(id))
	}
	return desktop.Settings{
		MinWindowWidth:    c.Window.MinWidth,
		MinWindowHeight:   c.Window.MinHeight,
		ZBase:             c.Window.ZBase,
		MaximizeInset:     c.Maximize.Inset,
		MaximizeMinWidth:  c.Maximize.MinWidth,
		MaximizeMinHeight: c.Maximize.MinHeight,
		Breakpoints: desktop.Breakpoints{
			PhoneBelow: c.Breakpoints.PhoneBelow,
			TabletMax:  c.Breakpoints.TabletMax,
		},
		PhoneDockSize: c.Shell.PhoneDockSize,
		InitialOpen:   initial,
	}
}

// ShellLayout returns the chrome sizes used to carve out the workspace.
func (c *Config) ShellLayout() desktop.ShellLayout {
	return desktop.ShellLayout{
		IconColumnWidth: c.Shell.IconColumnWidth,
		WidgetRailWidth: c.Shell.WidgetRailWidth,
		TaskbarHeight:   c.Shell.TaskbarHeight,
	}
}

// IconColumn lays the catalog's icons out inside the icon column.
func (c *Config) IconColumn() desktop.IconColumn {
	return desktop.IconColumn{
		Catalog: c.Catalog(),
		Left:    0,
		Top:     c.Shell.IconGap,
		Width:   c.Shell.IconColumnWidth,
		Height:  c.Shell.IconHeight,
		Gap:     c.Shell.IconGap,
	}
}

// NewDesktop builds an engine from the configuration. Workspace bounds follow
// the viewport through the configured shell layout and icons come from the
// icon column.
func (c *Config) NewDesktop(opts ...desktop.Option) *desktop.Desktop {
	base := []desktop.Option{
		desktop.WithShellLayout(c.ShellLayout()),
		desktop.WithIcons(c.IconColumn()),
	}
	return desktop.New(c.Catalog(), c.Settings(), append(base, opts...)...)
}

// Save writes the configuration to path as YAML.
func (c *Config) Save(path string) error {
	data, err := c.Marshal()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Marshal renders the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

// Validate performs strict validation of the effective configuration.
func (c *Config) Validate() error {
	if c.Window.MinWidth <= 0 {
		return &ValidationError{Path: "window.min_width", Err: fmt.Errorf("min_width must be > 0")}
	}
	if c.Window.MinHeight <= 0 {
		return &ValidationError{Path: "window.min_height", Err: fmt.Errorf("min_height must be > 0")}
	}
	if c.Window.ZBase < 0 {
		return &ValidationError{Path: "window.z_base", Err: fmt.Errorf("z_base must be >= 0")}
	}
	if c.Maximize.Inset < 0 {
		return &ValidationError{Path: "maximize.inset", Err: fmt.Errorf("inset must be >= 0")}
	}
	if c.Maximize.MinWidth <= 0 {
		return &ValidationError{Path: "maximize.min_width", Err: fmt.Errorf("min_width must be > 0")}
	}
	if c.Maximize.MinHeight <= 0 {
		return &ValidationError{Path: "maximize.min_height", Err: fmt.Errorf("min_height must be > 0")}
	}
	if c.Breakpoints.PhoneBelow <= 0 {
		return &ValidationError{Path: "breakpoints.phone_below", Err: fmt.Errorf("phone_below must be > 0")}
	}
	if c.Breakpoints.TabletMax < c.Breakpoints.PhoneBelow {
		return &ValidationError{Path: "breakpoints.tablet_max", Err: fmt.Errorf("tablet_max must be >= phone_below (%d)", c.Breakpoints.PhoneBelow)}
	}

	if c.Shell.TaskbarHeight < 0 {
		return &ValidationError{Path: "shell.taskbar_height", Err: fmt.Errorf("taskbar_height must be >= 0")}
	}
	if c.Shell.WidgetRailWidth < 0 {
		return &ValidationError{Path: "shell.widget_rail_width", Err: fmt.Errorf("widget_rail_width must be >= 0")}
	}
	if c.Shell.IconColumnWidth < 0 {
		return &ValidationError{Path: "shell.icon_column_width", Err: fmt.Errorf("icon_column_width must be >= 0")}
	}
	if c.Shell.IconHeight <= 0 {
		return &ValidationError{Path: "shell.icon_height", Err: fmt.Errorf("icon_height must be > 0")}
	}
	if c.Shell.IconGap < 0 {
		return &ValidationError{Path: "shell.icon_gap", Err: fmt.Errorf("icon_gap must be >= 0")}
	}
	if c.Shell.PhoneDockSize <= 0 {
		return &ValidationError{Path: "shell.phone_dock_size", Err: fmt.Errorf("phone_dock_size must be > 0")}
	}

	if len(c.Apps) == 0 {
		return &ValidationError{Path: "apps", Err: fmt.Errorf("apps must not be empty")}
	}
	seen := make(map[string]struct{}, len(c.Apps))
	for i, app := range c.Apps {
		path := fmt.Sprintf("apps[%d]", i)
		if err := c.validateApp(app); err != nil {
			return &ValidationError{Path: path, Err: err}
		}
		if _, dup := seen[app.ID]; dup {
			return &ValidationError{Path: path + ".id", Err: fmt.Errorf("duplicate app id %q", app.ID)}
		}
		seen[app.ID] = struct{}{}
	}
	for i, id := range c.InitialOpen {
		if _, ok := seen[id]; !ok {
			return &ValidationError{Path: fmt.Sprintf("initial_open[%d]", i), Err: fmt.Errorf("unknown app id %q", id)}
		}
	}

	for id := range c.Hotkeys.Launch {
		if _, ok := seen[id]; !ok {
			return &ValidationError{Path: "hotkeys.launch." + id, Err: fmt.Errorf("unknown app id %q", id)}
		}
	}

	if c.TUI.CellWidth <= 0 || c.TUI.CellHeight <= 0 {
		return &ValidationError{Path: "tui", Err: fmt.Errorf("cell_width and cell_height must be > 0")}
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return &ValidationError{Path: "logging.level", Err: fmt.Errorf("level must be one of: debug, info, warn, error")}
	}

	return nil
}

func (c *Config) validateApp(app AppConfig) error {
	id := strings.TrimSpace(app.ID)
	if id == "" {
		return fmt.Errorf("id is required")
	}
	if id != strings.ToLower(app.ID) {
		return fmt.Errorf("id %q must be lowercase without surrounding spaces", app.ID)
	}
	if strings.TrimSpace(app.Title) == "" {
		return fmt.Errorf("title is required for %q", app.ID)
	}
	if app.Top < 0 || app.Left < 0 {
		return fmt.Errorf("frame of %q must not start at a negative offset", app.ID)
	}
	if app.Width < c.Window.MinWidth {
		return fmt.Errorf("width of %q must be >= window.min_width (%d)", app.ID, c.Window.MinWidth)
	}
	if app.Height < c.Window.MinHeight {
		return fmt.Errorf("height of %q must be >= window.min_height (%d)", app.ID, c.Window.MinHeight)
	}
	return nil
}
