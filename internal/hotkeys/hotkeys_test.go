package hotkeys

import (
	"reflect"
	"testing"

	"github.com/1broseidon/deskshell/internal/config"
	"github.com/1broseidon/deskshell/internal/desktop"
)

func newDesk(width, height int) *desktop.Desktop {
	d := config.DefaultConfig().NewDesktop()
	d.SetViewport(width, height)
	return d
}

func TestBindings(t *testing.T) {
	got := Bindings(config.HotkeysConfig{
		Home:   "Mod4-h",
		Launch: map[string]string{"skills": "Mod4-s", "about": "Mod4-a", "contact": ""},
	})
	want := []Binding{
		{Keys: "Mod4-h", Action: ActionHome},
		{Keys: "Mod4-a", Action: ActionLaunch, App: desktop.AppAbout},
		{Keys: "Mod4-s", Action: ActionLaunch, App: desktop.AppSkills},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Bindings() = %+v, want %+v", got, want)
	}
	if n := len(Bindings(config.DefaultConfig().Hotkeys)); n != 3 {
		t.Fatalf("default bindings = %d, want 3", n)
	}
	if s := want[1].String(); s != "launch:about" {
		t.Fatalf("String() = %q", s)
	}
}

func TestApply_Desktop(t *testing.T) {
	d := newDesk(1600, 900)

	Apply(d, Binding{Action: ActionStartMenu})
	if !d.Snapshot().StartMenuOpen {
		t.Fatal("start menu should open")
	}

	Apply(d, Binding{Action: ActionLaunch, App: desktop.AppSkills})
	snap := d.Snapshot()
	if snap.Active != desktop.AppSkills || snap.StartMenuOpen {
		t.Fatalf("launch: active=%q menu=%v", snap.Active, snap.StartMenuOpen)
	}

	before := d.Snapshot()
	Apply(d, Binding{Action: ActionHome})
	Apply(d, Binding{Action: ActionLaunch, App: "ghost"})
	if !reflect.DeepEqual(before, d.Snapshot()) {
		t.Fatal("home and unknown apps should not change the desktop")
	}
}

func TestApply_Phone(t *testing.T) {
	d := newDesk(400, 800)

	Apply(d, Binding{Action: ActionStartMenu})
	if d.Snapshot().StartMenuOpen {
		t.Fatal("start menu is desktop only")
	}

	Apply(d, Binding{Action: ActionLaunch, App: desktop.AppSkills})
	if got := d.Snapshot().PhoneApp; got != desktop.AppSkills {
		t.Fatalf("phone app = %q", got)
	}
	Apply(d, Binding{Action: ActionHome})
	if got := d.Snapshot().PhoneApp; got != desktop.NoApp {
		t.Fatalf("phone app = %q, want home", got)
	}
}

func TestLockCombinations(t *testing.T) {
	got := lockCombinations([]uint16{2, 16})
	want := []uint16{0, 2, 16, 18}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("lockCombinations() = %v, want %v", got, want)
	}
}
