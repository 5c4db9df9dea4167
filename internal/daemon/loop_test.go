package daemon

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/1broseidon/deskshell/internal/desktop"
)

func newDesk() *desktop.Desktop {
	layout := desktop.ShellLayout{IconColumnWidth: 96, WidgetRailWidth: 224, TaskbarHeight: 32}
	return desktop.New(desktop.DefaultCatalog(), desktop.DefaultSettings(), desktop.WithShellLayout(layout))
}

func startLoop(t *testing.T, desk *desktop.Desktop) (*Loop, context.CancelFunc, <-chan error) {
	t.Helper()
	loop := NewLoop(desk, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- loop.Run(ctx)
	}()
	t.Cleanup(cancel)
	return loop, cancel, done
}

func TestLoop_DoAndSnapshot(t *testing.T) {
	loop, _, _ := startLoop(t, newDesk())
	ctx := context.Background()

	if err := loop.Do(ctx, func(d *desktop.Desktop) { d.Open(desktop.AppSkills) }); err != nil {
		t.Fatalf("Do() error: %v", err)
	}
	snap, err := loop.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot() error: %v", err)
	}
	if snap.Active != desktop.AppSkills {
		t.Fatalf("active = %q, want skills", snap.Active)
	}
}

func TestLoop_SerializesConcurrentCallers(t *testing.T) {
	loop, _, _ := startLoop(t, newDesk())
	ctx := context.Background()

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = loop.Do(ctx, func(*desktop.Desktop) { counter++ })
		}()
	}
	wg.Wait()
	if counter != 50 {
		t.Fatalf("counter = %d, want 50", counter)
	}
}

func TestLoop_RecoversPanics(t *testing.T) {
	loop, _, _ := startLoop(t, newDesk())
	ctx := context.Background()

	err := loop.Do(ctx, func(*desktop.Desktop) { panic("boom") })
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("Do() with panic = %v, want error mentioning the panic", err)
	}
	if _, err := loop.Snapshot(ctx); err != nil {
		t.Fatalf("loop should keep serving after a panic: %v", err)
	}
}

func TestLoop_ReplaceCarriesViewport(t *testing.T) {
	desk := newDesk()
	desk.SetViewport(700, 900)
	loop, _, _ := startLoop(t, desk)
	ctx := context.Background()

	next := newDesk()
	if err := loop.Replace(ctx, next); err != nil {
		t.Fatalf("Replace() error: %v", err)
	}
	snap, err := loop.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot() error: %v", err)
	}
	if snap.Mode != desktop.ModePhone || snap.Viewport.Width != 700 {
		t.Fatalf("replacement should inherit the viewport, got %s %+v", snap.Mode, snap.Viewport)
	}

	if err := loop.Replace(ctx, nil); err == nil {
		t.Fatal("Replace(nil) should fail")
	}
}

func TestLoop_ReplaceCarriesIconsAndSubscribers(t *testing.T) {
	loop, _, _ := startLoop(t, newDesk())
	ctx := context.Background()

	icons := desktop.StaticIcons{desktop.AppContact: {Top: 40, Width: 50, Height: 50}}
	err := loop.Do(ctx, func(d *desktop.Desktop) {
		d.SetViewport(1600, 900)
		d.SetIcons(icons)
	})
	if err != nil {
		t.Fatalf("Do() error: %v", err)
	}
	before := loop.Revision()
	if before == 0 {
		t.Fatal("revision should count changes")
	}

	next := desktop.New(desktop.DefaultCatalog(), desktop.DefaultSettings(),
		desktop.WithShellLayout(desktop.ShellLayout{IconColumnWidth: 96, WidgetRailWidth: 224, TaskbarHeight: 32}),
		desktop.WithIcons(desktop.IconColumn{Catalog: desktop.DefaultCatalog(), Width: 64, Height: 64}))
	if err := loop.Replace(ctx, next); err != nil {
		t.Fatalf("Replace() error: %v", err)
	}
	if loop.Revision() <= before {
		t.Fatal("replace should count as a change")
	}

	var snap desktop.Snapshot
	err = loop.Do(ctx, func(d *desktop.Desktop) {
		d.DesktopPointerDown(desktop.PointerEvent{PointerID: 1, X: 10, Y: 10}, desktop.TargetBackground)
		d.PointerMove(desktop.PointerEvent{PointerID: 1, X: 30, Y: 60})
		snap = d.Snapshot()
	})
	if err != nil {
		t.Fatalf("Do() error: %v", err)
	}
	if len(snap.Selection) != 1 || snap.Selection[0] != desktop.AppContact {
		t.Fatalf("selection after replace = %v, want [contact]", snap.Selection)
	}
}

func TestLoop_StoppedAfterCancel(t *testing.T) {
	loop, cancel, done := startLoop(t, newDesk())
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run() error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	err := loop.Do(context.Background(), func(*desktop.Desktop) {})
	if !errors.Is(err, ErrStopped) {
		t.Fatalf("Do() after stop = %v, want ErrStopped", err)
	}
}

func TestLoop_DoHonoursContext(t *testing.T) {
	// Never started: submissions can only end through ctx.
	loop := NewLoop(newDesk(), zerolog.Nop())
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := loop.Do(ctx, func(*desktop.Desktop) {})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Do() = %v, want deadline exceeded", err)
	}
}
