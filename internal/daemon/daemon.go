package daemon

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/1broseidon/deskshell/internal/config"
	"github.com/1broseidon/deskshell/internal/desktop"
	"github.com/1broseidon/deskshell/internal/ipc"
)

// ViewportWatcher pushes viewport changes as they happen. Watch blocks until
// ctx is done.
type ViewportWatcher interface {
	Watch(ctx context.Context, onChange func(width, height int)) error
}

// Options configures a Daemon.
type Options struct {
	// ConfigPath overrides config.DefaultConfigPath.
	ConfigPath string
	// SocketPath overrides the IPC socket location.
	SocketPath string
	Logger     zerolog.Logger

	// Viewport, when set, is polled by the reconciler. If it also implements
	// ViewportWatcher its events are applied as they arrive.
	Viewport          ViewportSource
	ReconcileInterval time.Duration

	// InitialViewport is applied at startup when no Viewport source is set.
	InitialViewport desktop.Size

	// WatchConfig reloads automatically when a loaded config file changes.
	WatchConfig bool
}

// Daemon owns the desktop loop and the services that feed it.
type Daemon struct {
	opts   Options
	logger zerolog.Logger

	mu    sync.Mutex
	cfg   *config.Config
	files []string

	loop   *Loop
	server *ipc.Server
}

// New loads configuration and builds the desktop. Nothing listens until Run.
func New(opts Options) (*Daemon, error) {
	d := &Daemon{
		opts:   opts,
		logger: opts.Logger,
	}

	res, err := d.load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	d.cfg = res.Config
	d.files = res.Files

	desk := d.newDesktop(res.Config)
	if vp := opts.InitialViewport; opts.Viewport == nil && vp.Width > 0 && vp.Height > 0 {
		desk.SetViewport(vp.Width, vp.Height)
	}
	d.loop = NewLoop(desk, d.logger.With().Str("component", "loop").Logger())

	server, err := ipc.NewServer(ipc.ServerOptions{
		SocketPath: opts.SocketPath,
		Engine:     d.loop,
		Reload:     d.Reload,
		Logger:     d.logger.With().Str("component", "ipc").Logger(),
	})
	if err != nil {
		return nil, err
	}
	d.server = server

	d.logger.Info().
		Int("apps", len(res.Config.Apps)).
		Strs("files", res.Files).
		Msg("configuration loaded")
	return d, nil
}

// Loop exposes the desktop loop.
func (d *Daemon) Loop() *Loop {
	return d.loop
}

// Config returns the configuration currently in effect.
func (d *Daemon) Config() *config.Config {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cfg
}

// SocketPath returns the IPC socket the daemon listens on.
func (d *Daemon) SocketPath() string {
	return d.server.SocketPath()
}

func (d *Daemon) load() (*config.LoadResult, error) {
	if d.opts.ConfigPath != "" {
		return config.LoadFromPath(d.opts.ConfigPath)
	}
	return config.LoadWithSources()
}

func (d *Daemon) newDesktop(cfg *config.Config) *desktop.Desktop {
	return cfg.NewDesktop(desktop.WithLogger(d.logger.With().Str("component", "desktop").Logger()))
}

// Reload re-reads configuration and swaps in a fresh desktop. Window state
// is reset to the configured initial state; the viewport, reported icon
// bounds and subscribers carry over. On
// error the running desktop is left untouched.
func (d *Daemon) Reload(ctx context.Context) error {
	res, err := d.load()
	if err != nil {
		d.logger.Warn().Err(err).Msg("config reload failed")
		return err
	}
	if err := d.loop.Replace(ctx, d.newDesktop(res.Config)); err != nil {
		return err
	}

	d.mu.Lock()
	d.cfg = res.Config
	d.files = res.Files
	d.mu.Unlock()

	d.logger.Info().Strs("files", res.Files).Msg("config reloaded")
	return nil
}

func (d *Daemon) watchedFiles() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	files := append([]string{}, d.files...)
	if len(files) == 0 {
		path := d.opts.ConfigPath
		if path == "" {
			path, _ = config.DefaultConfigPath()
		}
		if path != "" {
			files = append(files, path)
		}
	}
	return files
}

// Run starts the loop, the IPC server and the optional viewport and config
// watchers. It blocks until ctx is cancelled.
func (d *Daemon) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	loopErr := make(chan error, 1)
	wg.Add(1)
	go func() {
		defer wg.Done()
		loopErr <- d.loop.Run(ctx)
	}()

	if err := d.server.Start(ctx); err != nil {
		cancel()
		wg.Wait()
		return err
	}
	defer d.server.Stop()

	if src := d.opts.Viewport; src != nil {
		reconciler := NewReconciler(ReconcilerConfig{
			Interval: d.opts.ReconcileInterval,
			Logger:   d.logger.With().Str("component", "reconciler").Logger(),
		}, d.loop, src)
		wg.Add(1)
		go func() {
			defer wg.Done()
			reconciler.Run(ctx)
		}()

		if watcher, ok := src.(ViewportWatcher); ok {
			wg.Add(1)
			go func() {
				defer wg.Done()
				d.watchViewport(ctx, watcher)
			}()
		}
	}

	if d.opts.WatchConfig {
		cw, err := NewConfigWatcher(d.watchedFiles(), d.Reload, d.logger.With().Str("component", "config-watch").Logger())
		if err != nil {
			d.logger.Warn().Err(err).Msg("config watching disabled")
		} else {
			wg.Add(1)
			go func() {
				defer wg.Done()
				cw.Run(ctx)
			}()
		}
	}

	d.logger.Info().Str("socket", d.server.SocketPath()).Msg("deskshell daemon started")
	<-ctx.Done()
	d.logger.Info().Msg("shutting down deskshell daemon")

	wg.Wait()
	return <-loopErr
}

func (d *Daemon) watchViewport(ctx context.Context, watcher ViewportWatcher) {
	err := watcher.Watch(ctx, func(width, height int) {
		if width <= 0 || height <= 0 {
			return
		}
		err := d.loop.Do(ctx, func(desk *desktop.Desktop) {
			desk.SetViewport(width, height)
		})
		if err != nil && ctx.Err() == nil {
			d.logger.Warn().Err(err).Msg("failed to apply viewport event")
		}
	})
	if err != nil && ctx.Err() == nil {
		d.logger.Warn().Err(err).Msg("viewport watcher stopped")
	}
}
