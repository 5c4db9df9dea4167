package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/1broseidon/deskshell/internal/daemon"
	"github.com/1broseidon/deskshell/internal/desktop"
	"github.com/1broseidon/deskshell/internal/hotkeys"
	"github.com/1broseidon/deskshell/internal/x11"
)

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// parseSize reads "WIDTHxHEIGHT".
func parseSize(s string) (desktop.Size, error) {
	w, h, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "x")
	if !ok {
		return desktop.Size{}, fmt.Errorf("invalid size %q (expected WIDTHxHEIGHT)", s)
	}
	width, err1 := strconv.Atoi(w)
	height, err2 := strconv.Atoi(h)
	if err1 != nil || err2 != nil || width <= 0 || height <= 0 {
		return desktop.Size{}, fmt.Errorf("invalid size %q (expected WIDTHxHEIGHT)", s)
	}
	return desktop.Size{Width: width, Height: height}, nil
}

func runDaemon(args []string) int {
	fs := flag.NewFlagSet("daemon", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("path", "", "Config file path (default: ~/.config/deskshell/config.yaml)")
	socket := fs.String("socket", "", "IPC socket path (default: $DESKSHELL_SOCKET or the runtime dir)")
	useX11 := fs.Bool("x11", false, "Follow the X11 screen size")
	measure := fs.String("measure", "root", "X11 viewport measure: root, workarea or monitor")
	watch := fs.Bool("watch", false, "Reload when a config file changes")
	viewport := fs.String("viewport", "", "Initial viewport WIDTHxHEIGHT when not following X11")
	grabKeys := fs.Bool("hotkeys", true, "Grab the configured global hotkeys (requires --x11)")
	interval := fs.Duration("interval", 10*time.Second, "X11 viewport poll interval")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: deskshell daemon [options]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Run the desktop engine in the foreground and serve IPC requests.")
		fmt.Fprintln(os.Stderr, "SIGHUP reloads the configuration.")
		fmt.Fprintln(os.Stderr, "")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "daemon takes no arguments")
		fs.Usage()
		return 2
	}

	res, err := loadConfig(*path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	log, err := newLogger(res.Config, true)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer log.Close()

	opts := daemon.Options{
		ConfigPath:        *path,
		SocketPath:        *socket,
		Logger:            log.Component("daemon"),
		ReconcileInterval: *interval,
		WatchConfig:       *watch,
	}
	if *viewport != "" {
		size, err := parseSize(*viewport)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
		opts.InitialViewport = size
	}
	var conn *x11.Connection
	if *useX11 {
		m, err := x11.ParseMeasure(*measure)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
		c, err := x11.NewConnection()
		if err != nil {
			log.Error("failed to connect to display", err)
			return 1
		}
		defer c.Close()
		conn = c
		opts.Viewport = x11.NewViewportSource(conn, m, log.Component("x11"))
	}

	d, err := daemon.New(opts)
	if err != nil {
		log.Error("failed to start daemon", err)
		return 1
	}

	if conn != nil && *grabKeys {
		h := hotkeys.NewHandler(conn.XUtil, d.Loop(), log.Component("hotkeys"))
		if err := h.RegisterAll(hotkeys.Bindings(d.Config().Hotkeys)); err != nil {
			log.Error("hotkeys disabled", err)
			h.Unregister()
		}
	}

	ctx, cancel := signalContext()
	defer cancel()

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-hup:
				log.Info("received SIGHUP, reloading config")
				if err := d.Reload(ctx); err != nil {
					log.Error("config reload failed", err)
				}
			}
		}
	}()

	if err := d.Run(ctx); err != nil {
		log.Error("daemon stopped", err)
		return 1
	}
	return 0
}
