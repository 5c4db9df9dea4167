package hotkeys

import (
	"sort"

	"github.com/1broseidon/deskshell/internal/config"
	"github.com/1broseidon/deskshell/internal/desktop"
)

// Action is a desktop command a hotkey can trigger.
type Action string

const (
	ActionStartMenu Action = "start_menu"
	ActionHome      Action = "home"
	ActionLaunch    Action = "launch"
)

// Binding pairs a key sequence with an action. App is set for ActionLaunch.
type Binding struct {
	Keys   string
	Action Action
	App    desktop.AppID
}

func (b Binding) String() string {
	if b.Action == ActionLaunch {
		return string(b.Action) + ":" + string(b.App)
	}
	return string(b.Action)
}

// Bindings lists the configured hotkeys in a stable order, skipping unbound
// actions. Launch bindings follow, sorted by app id.
func Bindings(cfg config.HotkeysConfig) []Binding {
	var out []Binding
	if cfg.StartMenu != "" {
		out = append(out, Binding{Keys: cfg.StartMenu, Action: ActionStartMenu})
	}
	if cfg.Home != "" {
		out = append(out, Binding{Keys: cfg.Home, Action: ActionHome})
	}

	ids := make([]string, 0, len(cfg.Launch))
	for id, keys := range cfg.Launch {
		if keys != "" {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	for _, id := range ids {
		out = append(out, Binding{Keys: cfg.Launch[id], Action: ActionLaunch, App: desktop.AppID(id)})
	}
	return out
}

// Apply runs b against d. The start menu only exists on the desktop; home
// returns a single-app mode to its home screen; launch opens the app the way
// the start menu does.
func Apply(d *desktop.Desktop, b Binding) {
	switch b.Action {
	case ActionStartMenu:
		if d.Mode() == desktop.ModeDesktop {
			d.ToggleStartMenu()
		}
	case ActionHome:
		d.GoHome()
	case ActionLaunch:
		d.Open(b.App)
	}
}
