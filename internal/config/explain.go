package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Explain returns the effective value at the given YAML-like path and its source.
//
// Supported paths include:
//
//	window.min_width
//	maximize.inset
//	breakpoints.tablet_max
//	shell.taskbar_height
//	apps
//	apps[2]
//	apps[2].width
//	initial_open
//	tui.cell_width
//	hotkeys.start_menu
//	hotkeys.launch.terminal
//	logging.level
func Explain(res *LoadResult, path string) (any, Source, error) {
	if res == nil || res.Config == nil {
		return nil, Source{}, fmt.Errorf("no config loaded")
	}
	if path == "" {
		return nil, Source{}, fmt.Errorf("path is empty")
	}

	value, err := lookupValue(res.Config, path)
	if err != nil {
		return nil, Source{}, err
	}
	if src, ok := res.Sources[path]; ok {
		return value, src, nil
	}
	return value, Source{Kind: SourceDefault}, nil
}

func lookupValue(cfg *Config, path string) (any, error) {
	section, key, _ := strings.Cut(path, ".")

	if strings.HasPrefix(section, "apps") {
		return lookupApp(cfg, section, key, path)
	}

	switch section {
	case "window":
		return pick(path, key, map[string]any{
			"":           cfg.Window,
			"min_width":  cfg.Window.MinWidth,
			"min_height": cfg.Window.MinHeight,
			"z_base":     cfg.Window.ZBase,
		})
	case "maximize":
		return pick(path, key, map[string]any{
			"":           cfg.Maximize,
			"inset":      cfg.Maximize.Inset,
			"min_width":  cfg.Maximize.MinWidth,
			"min_height": cfg.Maximize.MinHeight,
		})
	case "breakpoints":
		return pick(path, key, map[string]any{
			"":            cfg.Breakpoints,
			"phone_below": cfg.Breakpoints.PhoneBelow,
			"tablet_max":  cfg.Breakpoints.TabletMax,
		})
	case "shell":
		return pick(path, key, map[string]any{
			"":                  cfg.Shell,
			"taskbar_height":    cfg.Shell.TaskbarHeight,
			"widget_rail_width": cfg.Shell.WidgetRailWidth,
			"icon_column_width": cfg.Shell.IconColumnWidth,
			"icon_height":       cfg.Shell.IconHeight,
			"icon_gap":          cfg.Shell.IconGap,
			"phone_dock_size":   cfg.Shell.PhoneDockSize,
		})
	case "initial_open":
		return pick(path, key, map[string]any{"": cfg.InitialOpen})
	case "tui":
		return pick(path, key, map[string]any{
			"":            cfg.TUI,
			"cell_width":  cfg.TUI.CellWidth,
			"cell_height": cfg.TUI.CellHeight,
		})
	case "hotkeys":
		if id, ok := strings.CutPrefix(key, "launch."); ok {
			if keys, ok := cfg.Hotkeys.Launch[id]; ok {
				return keys, nil
			}
			return nil, fmt.Errorf("unknown path: %s", path)
		}
		return pick(path, key, map[string]any{
			"":           cfg.Hotkeys,
			"start_menu": cfg.Hotkeys.StartMenu,
			"home":       cfg.Hotkeys.Home,
			"launch":     cfg.Hotkeys.Launch,
		})
	case "logging":
		return pick(path, key, map[string]any{
			"":      cfg.Logging,
			"level": cfg.Logging.Level,
			"file":  cfg.Logging.File,
		})
	}
	return nil, fmt.Errorf("unknown path: %s", path)
}

func pick(path, key string, values map[string]any) (any, error) {
	if v, ok := values[key]; ok {
		return v, nil
	}
	return nil, fmt.Errorf("unknown path: %s", path)
}

func lookupApp(cfg *Config, section, key, path string) (any, error) {
	if section == "apps" {
		if key != "" {
			return nil, fmt.Errorf("unknown path: %s", path)
		}
		return cfg.Apps, nil
	}

	idx, ok := strings.CutPrefix(section, "apps[")
	idx, ok2 := strings.CutSuffix(idx, "]")
	if !ok || !ok2 {
		return nil, fmt.Errorf("unknown path: %s", path)
	}
	i, err := strconv.Atoi(idx)
	if err != nil || i < 0 || i >= len(cfg.Apps) {
		return nil, fmt.Errorf("app index out of range: %s", path)
	}
	app := cfg.Apps[i]
	return pick(path, key, map[string]any{
		"":       app,
		"id":     app.ID,
		"title":  app.Title,
		"top":    app.Top,
		"left":   app.Left,
		"width":  app.Width,
		"height": app.Height,
	})
}
