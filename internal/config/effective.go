package config

import (
	"fmt"
	"strings"
)

type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// BuildEffectiveConfig applies raw onto the defaults. It does not validate.
func BuildEffectiveConfig(raw RawConfig) (*Config, error) {
	cfg := DefaultConfig()

	if w := raw.Window; w != nil {
		cfg.Window.MinWidth = derefInt(w.MinWidth, cfg.Window.MinWidth)
		cfg.Window.MinHeight = derefInt(w.MinHeight, cfg.Window.MinHeight)
		cfg.Window.ZBase = derefInt(w.ZBase, cfg.Window.ZBase)
	}
	if m := raw.Maximize; m != nil {
		cfg.Maximize.Inset = derefInt(m.Inset, cfg.Maximize.Inset)
		cfg.Maximize.MinWidth = derefInt(m.MinWidth, cfg.Maximize.MinWidth)
		cfg.Maximize.MinHeight = derefInt(m.MinHeight, cfg.Maximize.MinHeight)
	}
	if b := raw.Breakpoints; b != nil {
		cfg.Breakpoints.PhoneBelow = derefInt(b.PhoneBelow, cfg.Breakpoints.PhoneBelow)
		cfg.Breakpoints.TabletMax = derefInt(b.TabletMax, cfg.Breakpoints.TabletMax)
	}
	if s := raw.Shell; s != nil {
		cfg.Shell.TaskbarHeight = derefInt(s.TaskbarHeight, cfg.Shell.TaskbarHeight)
		cfg.Shell.WidgetRailWidth = derefInt(s.WidgetRailWidth, cfg.Shell.WidgetRailWidth)
		cfg.Shell.IconColumnWidth = derefInt(s.IconColumnWidth, cfg.Shell.IconColumnWidth)
		cfg.Shell.IconHeight = derefInt(s.IconHeight, cfg.Shell.IconHeight)
		cfg.Shell.IconGap = derefInt(s.IconGap, cfg.Shell.IconGap)
		cfg.Shell.PhoneDockSize = derefInt(s.PhoneDockSize, cfg.Shell.PhoneDockSize)
	}

	if raw.Apps != nil {
		apps, err := buildApps(cfg.Apps, raw.Apps)
		if err != nil {
			return nil, err
		}
		cfg.Apps = apps
	}
	if raw.InitialOpen != nil {
		cfg.InitialOpen = make([]string, 0, len(raw.InitialOpen))
		for _, id := range raw.InitialOpen {
			cfg.InitialOpen = append(cfg.InitialOpen, strings.ToLower(strings.TrimSpace(id)))
		}
	}

	if t := raw.TUI; t != nil {
		cfg.TUI.CellWidth = derefInt(t.CellWidth, cfg.TUI.CellWidth)
		cfg.TUI.CellHeight = derefInt(t.CellHeight, cfg.TUI.CellHeight)
	}
	if h := raw.Hotkeys; h != nil {
		cfg.Hotkeys.StartMenu = derefString(h.StartMenu, cfg.Hotkeys.StartMenu)
		cfg.Hotkeys.Home = derefString(h.Home, cfg.Hotkeys.Home)
		if len(h.Launch) > 0 {
			launch := make(map[string]string, len(cfg.Hotkeys.Launch)+len(h.Launch))
			for id, keys := range cfg.Hotkeys.Launch {
				launch[id] = keys
			}
			for id, keys := range h.Launch {
				id = strings.ToLower(strings.TrimSpace(id))
				if keys = strings.TrimSpace(keys); keys == "" {
					delete(launch, id)
					continue
				}
				launch[id] = keys
			}
			cfg.Hotkeys.Launch = launch
		}
	}
	if l := raw.Logging; l != nil {
		if l.Level != nil {
			cfg.Logging.Level = strings.ToLower(strings.TrimSpace(*l.Level))
		}
		if l.File != nil {
			cfg.Logging.File = *l.File
		}
	}

	return cfg, nil
}

// buildApps resolves raw app entries. An entry naming a built-in id inherits
// every field it leaves out; a new id must spell out its whole frame.
func buildApps(builtin []AppConfig, raw []RawApp) ([]AppConfig, error) {
	base := make(map[string]AppConfig, len(builtin))
	for _, app := range builtin {
		base[app.ID] = app
	}

	out := make([]AppConfig, 0, len(raw))
	for i, entry := range raw {
		id := strings.ToLower(strings.TrimSpace(entry.ID))
		path := fmt.Sprintf("apps[%d]", i)
		if id == "" {
			return nil, &ValidationError{Path: path + ".id", Err: fmt.Errorf("id is required")}
		}

		app, known := base[id]
		if !known {
			if entry.Title == nil || entry.Width == nil || entry.Height == nil || entry.Top == nil || entry.Left == nil {
				return nil, &ValidationError{Path: path, Err: fmt.Errorf("app %q is not built in; title, top, left, width and height are required", id)}
			}
			app = AppConfig{ID: id}
		}
		if entry.Title != nil {
			app.Title = *entry.Title
		}
		app.Top = derefInt(entry.Top, app.Top)
		app.Left = derefInt(entry.Left, app.Left)
		app.Width = derefInt(entry.Width, app.Width)
		app.Height = derefInt(entry.Height, app.Height)
		out = append(out, app)
	}
	return out, nil
}

func derefInt(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}

func derefString(p *string, def string) string {
	if p == nil {
		return def
	}
	return strings.TrimSpace(*p)
}
