package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// IncludeList supports either:
//
//	include: "/path/to/file.yaml"
//
// or:
//
//	include:
//	  - "/path/to/file.yaml"
//	  - "/path/to/dir"
type IncludeList []string

func (l *IncludeList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case 0:
		*l = nil
		return nil
	case yaml.ScalarNode:
		if value.Tag != "!!str" {
			return fmt.Errorf("include must be a string or list of strings")
		}
		*l = []string{value.Value}
		return nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(value.Content))
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode || item.Tag != "!!str" {
				return fmt.Errorf("include entries must be strings")
			}
			out = append(out, item.Value)
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("include must be a string or list of strings")
	}
}

type RawWindow struct {
	MinWidth  *int `yaml:"min_width"`
	MinHeight *int `yaml:"min_height"`
	ZBase     *int `yaml:"z_base"`
}

type RawMaximize struct {
	Inset     *int `yaml:"inset"`
	MinWidth  *int `yaml:"min_width"`
	MinHeight *int `yaml:"min_height"`
}

type RawBreakpoints struct {
	PhoneBelow *int `yaml:"phone_below"`
	TabletMax  *int `yaml:"tablet_max"`
}

type RawShell struct {
	TaskbarHeight   *int `yaml:"taskbar_height"`
	WidgetRailWidth *int `yaml:"widget_rail_width"`
	IconColumnWidth *int `yaml:"icon_column_width"`
	IconHeight      *int `yaml:"icon_height"`
	IconGap         *int `yaml:"icon_gap"`
	PhoneDockSize   *int `yaml:"phone_dock_size"`
}

// RawApp is one apps[] entry. Omitted frame fields inherit from the built-in
// app with the same id.
type RawApp struct {
	ID     string  `yaml:"id"`
	Title  *string `yaml:"title"`
	Top    *int    `yaml:"top"`
	Left   *int    `yaml:"left"`
	Width  *int    `yaml:"width"`
	Height *int    `yaml:"height"`
}

type RawTUI struct {
	CellWidth  *int `yaml:"cell_width"`
	CellHeight *int `yaml:"cell_height"`
}

type RawHotkeys struct {
	StartMenu *string           `yaml:"start_menu"`
	Home      *string           `yaml:"home"`
	Launch    map[string]string `yaml:"launch"`
}

type RawLogging struct {
	Level *string `yaml:"level"`
	File  *string `yaml:"file"`
}

// RawConfig mirrors the YAML file. Nil fields were not set by any file.
type RawConfig struct {
	Include     IncludeList     `yaml:"include"`
	Window      *RawWindow      `yaml:"window"`
	Maximize    *RawMaximize    `yaml:"maximize"`
	Breakpoints *RawBreakpoints `yaml:"breakpoints"`
	Shell       *RawShell       `yaml:"shell"`
	Apps        []RawApp        `yaml:"apps"`
	InitialOpen []string        `yaml:"initial_open"`
	TUI         *RawTUI         `yaml:"tui"`
	Hotkeys     *RawHotkeys     `yaml:"hotkeys"`
	Logging     *RawLogging     `yaml:"logging"`
}

func (c RawConfig) merge(overlay RawConfig) RawConfig {
	out := c

	if overlay.Window != nil {
		if out.Window == nil {
			out.Window = &RawWindow{}
		}
		mergeInt(&out.Window.MinWidth, overlay.Window.MinWidth)
		mergeInt(&out.Window.MinHeight, overlay.Window.MinHeight)
		mergeInt(&out.Window.ZBase, overlay.Window.ZBase)
	}
	if overlay.Maximize != nil {
		if out.Maximize == nil {
			out.Maximize = &RawMaximize{}
		}
		mergeInt(&out.Maximize.Inset, overlay.Maximize.Inset)
		mergeInt(&out.Maximize.MinWidth, overlay.Maximize.MinWidth)
		mergeInt(&out.Maximize.MinHeight, overlay.Maximize.MinHeight)
	}
	if overlay.Breakpoints != nil {
		if out.Breakpoints == nil {
			out.Breakpoints = &RawBreakpoints{}
		}
		mergeInt(&out.Breakpoints.PhoneBelow, overlay.Breakpoints.PhoneBelow)
		mergeInt(&out.Breakpoints.TabletMax, overlay.Breakpoints.TabletMax)
	}
	if overlay.Shell != nil {
		if out.Shell == nil {
			out.Shell = &RawShell{}
		}
		mergeInt(&out.Shell.TaskbarHeight, overlay.Shell.TaskbarHeight)
		mergeInt(&out.Shell.WidgetRailWidth, overlay.Shell.WidgetRailWidth)
		mergeInt(&out.Shell.IconColumnWidth, overlay.Shell.IconColumnWidth)
		mergeInt(&out.Shell.IconHeight, overlay.Shell.IconHeight)
		mergeInt(&out.Shell.IconGap, overlay.Shell.IconGap)
		mergeInt(&out.Shell.PhoneDockSize, overlay.Shell.PhoneDockSize)
	}

	// The app list is replaced wholesale: its order is the icon order.
	if overlay.Apps != nil {
		out.Apps = append([]RawApp(nil), overlay.Apps...)
	}
	if overlay.InitialOpen != nil {
		out.InitialOpen = append([]string(nil), overlay.InitialOpen...)
	}

	if overlay.TUI != nil {
		if out.TUI == nil {
			out.TUI = &RawTUI{}
		}
		mergeInt(&out.TUI.CellWidth, overlay.TUI.CellWidth)
		mergeInt(&out.TUI.CellHeight, overlay.TUI.CellHeight)
	}
	if h := overlay.Hotkeys; h != nil {
		if out.Hotkeys == nil {
			out.Hotkeys = &RawHotkeys{}
		}
		mergeString(&out.Hotkeys.StartMenu, h.StartMenu)
		mergeString(&out.Hotkeys.Home, h.Home)
		for id, keys := range h.Launch {
			if out.Hotkeys.Launch == nil {
				out.Hotkeys.Launch = map[string]string{}
			}
			out.Hotkeys.Launch[id] = keys
		}
	}
	if overlay.Logging != nil {
		if out.Logging == nil {
			out.Logging = &RawLogging{}
		}
		if overlay.Logging.Level != nil {
			out.Logging.Level = overlay.Logging.Level
		}
		if overlay.Logging.File != nil {
			out.Logging.File = overlay.Logging.File
		}
	}

	return out
}

func mergeInt(dst **int, src *int) {
	if src != nil {
		*dst = src
	}
}

func mergeString(dst **string, src *string) {
	if src != nil {
		*dst = src
	}
}
