// Package tui renders the desktop shell in a terminal. Cells map to viewport
// pixels through the configured cell size; mouse input is turned into
// pointer events for the engine.
package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"golang.org/x/term"

	"github.com/1broseidon/deskshell/internal/config"
	"github.com/1broseidon/deskshell/internal/daemon"
	"github.com/1broseidon/deskshell/internal/desktop"
	"github.com/1broseidon/deskshell/internal/ipc"
)

// Options configures the terminal shell.
type Options struct {
	Config *config.Config
	// Driver defaults to the running daemon, or an in-process desktop when
	// none answers.
	Driver Driver
	// Rebuild backs reload for the in-process desktop.
	Rebuild func() (*desktop.Desktop, error)
	Now     func() time.Time
	Logger  zerolog.Logger
}

// Run starts the interactive shell and blocks until the user quits.
func Run(ctx context.Context, opts Options) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("tui requires an interactive terminal")
	}
	if opts.Config == nil {
		opts.Config = config.DefaultConfig()
	}
	if opts.Driver == nil {
		opts.Driver = connect(ctx, opts)
	}

	m := newModel(opts.Driver, newShell(opts.Config), opts.now(), opts.Logger)
	p := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
		tea.WithContext(ctx),
	)
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func (o Options) now() func() time.Time {
	if o.Now != nil {
		return o.Now
	}
	return time.Now
}

func newShell(cfg *config.Config) shell {
	return shell{
		grid:     grid{cellW: cfg.TUI.CellWidth, cellH: cfg.TUI.CellHeight},
		layout:   cfg.ShellLayout(),
		dockSize: cfg.Shell.PhoneDockSize,
	}
}

// connect prefers a running daemon so the terminal shares its desktop.
func connect(ctx context.Context, opts Options) Driver {
	client := ipc.NewClient()
	pingCtx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	if err := client.Ping(pingCtx); err == nil {
		opts.Logger.Info().Msg("attached to running daemon")
		return client
	}
	opts.Logger.Info().Msg("no daemon running, using an in-process desktop")
	return daemon.NewLocal(opts.Config.NewDesktop(desktop.WithLogger(opts.Logger)), opts.Rebuild)
}
