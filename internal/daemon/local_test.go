package daemon

import (
	"context"
	"testing"

	"github.com/1broseidon/deskshell/internal/desktop"
	"github.com/1broseidon/deskshell/internal/geometry"
)

func TestLocal_AppCommands(t *testing.T) {
	ctx := context.Background()
	l := NewLocal(newDesk(), nil)

	snap, err := l.Open(ctx, "Projects")
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	if snap.Active != desktop.AppProjects {
		t.Fatalf("active = %q", snap.Active)
	}
	if _, err := l.Open(ctx, "ghost"); err == nil {
		t.Fatal("expected unknown app error")
	}
	if _, err := l.SetViewport(ctx, 0, 10); err == nil {
		t.Fatal("expected viewport error")
	}
	if _, err := l.SetForeground(ctx, desktop.ModeDesktop, "about"); err == nil {
		t.Fatal("expected foreground error for desktop mode")
	}
	if _, err := l.Reload(ctx); err == nil {
		t.Fatal("expected reload error without a rebuild func")
	}
}

func TestLocal_ReloadKeepsViewport(t *testing.T) {
	ctx := context.Background()
	l := NewLocal(newDesk(), func() (*desktop.Desktop, error) {
		settings := desktop.DefaultSettings()
		settings.InitialOpen = []desktop.AppID{desktop.AppHandbook}
		return desktop.New(desktop.DefaultCatalog(), settings), nil
	})

	if _, err := l.SetViewport(ctx, 640, 900); err != nil {
		t.Fatalf("SetViewport() error: %v", err)
	}
	snap, err := l.Reload(ctx)
	if err != nil {
		t.Fatalf("Reload() error: %v", err)
	}
	if snap.Mode != desktop.ModePhone || snap.Active != desktop.AppHandbook {
		t.Fatalf("after reload: mode=%s active=%q", snap.Mode, snap.Active)
	}
}

func TestLocal_SetIconBounds(t *testing.T) {
	ctx := context.Background()
	l := NewLocal(newDesk(), nil)
	l.SetViewport(ctx, 1600, 900)

	if _, err := l.SetIconBounds(ctx, map[string]geometry.Rect{"ghost": {Width: 1, Height: 1}}); err == nil {
		t.Fatal("expected unknown app error")
	}
	if _, err := l.SetIconBounds(ctx, map[string]geometry.Rect{"contact": {Top: 40, Left: 0, Width: 50, Height: 50}}); err != nil {
		t.Fatalf("SetIconBounds() error: %v", err)
	}

	l.DesktopPointerDown(ctx, desktop.PointerEvent{PointerID: 1, X: 10, Y: 10}, desktop.TargetBackground)
	snap, _ := l.PointerMove(ctx, desktop.PointerEvent{PointerID: 1, X: 30, Y: 60})
	if len(snap.Selection) != 1 || snap.Selection[0] != desktop.AppContact {
		t.Fatalf("selection = %v", snap.Selection)
	}
}

func TestLocal_ReloadKeepsIconBounds(t *testing.T) {
	ctx := context.Background()
	l := NewLocal(newDesk(), func() (*desktop.Desktop, error) {
		column := desktop.IconColumn{Catalog: desktop.DefaultCatalog(), Width: 64, Height: 64}
		return desktop.New(desktop.DefaultCatalog(), desktop.DefaultSettings(), desktop.WithIcons(column),
			desktop.WithShellLayout(desktop.ShellLayout{IconColumnWidth: 96, WidgetRailWidth: 224, TaskbarHeight: 32})), nil
	})
	l.SetViewport(ctx, 1600, 900)
	if _, err := l.SetIconBounds(ctx, map[string]geometry.Rect{"contact": {Top: 40, Left: 0, Width: 50, Height: 50}}); err != nil {
		t.Fatalf("SetIconBounds() error: %v", err)
	}

	selectBox := func() []desktop.AppID {
		t.Helper()
		l.DesktopPointerDown(ctx, desktop.PointerEvent{PointerID: 1, X: 10, Y: 10}, desktop.TargetBackground)
		snap, err := l.PointerMove(ctx, desktop.PointerEvent{PointerID: 1, X: 30, Y: 60})
		if err != nil {
			t.Fatalf("PointerMove() error: %v", err)
		}
		l.PointerUp(ctx, desktop.PointerEvent{PointerID: 1, X: 30, Y: 60})
		return snap.Selection
	}

	if got := selectBox(); len(got) != 1 || got[0] != desktop.AppContact {
		t.Fatalf("selection before reload = %v", got)
	}
	if _, err := l.Reload(ctx); err != nil {
		t.Fatalf("Reload() error: %v", err)
	}
	if got := selectBox(); len(got) != 1 || got[0] != desktop.AppContact {
		t.Fatalf("selection after reload = %v, want [contact]", got)
	}
}
