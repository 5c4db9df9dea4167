package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/1broseidon/deskshell/internal/config"
	"github.com/1broseidon/deskshell/internal/desktop"
	"github.com/1broseidon/deskshell/internal/ipc"
	"github.com/1broseidon/deskshell/internal/logger"
	"github.com/1broseidon/deskshell/internal/tui"
)

const requestTimeout = 5 * time.Second

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "daemon":
		os.Exit(runDaemon(os.Args[2:]))
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "snapshot":
		os.Exit(runSnapshot(os.Args[2:]))
	case "open", "close", "minimize", "maximize", "focus", "taskbar":
		os.Exit(runAppCommand(os.Args[1], os.Args[2:]))
	case "viewport":
		os.Exit(runViewport(os.Args[2:]))
	case "foreground":
		os.Exit(runForeground(os.Args[2:]))
	case "home":
		os.Exit(runSimple("home", os.Args[2:], (*ipc.Client).GoHome))
	case "reload":
		os.Exit(runSimple("reload", os.Args[2:], (*ipc.Client).Reload))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "tui":
		os.Exit(runTUI(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: deskshell <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  daemon              Start the deskshell daemon (foreground)")
	fmt.Fprintln(w, "  status              Show daemon status")
	fmt.Fprintln(w, "  snapshot            Print the desktop state")
	fmt.Fprintln(w, "  reload              Reload the daemon configuration")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  open <app>          Open an application")
	fmt.Fprintln(w, "  close <app>         Close an application window")
	fmt.Fprintln(w, "  minimize <app>      Minimize a window")
	fmt.Fprintln(w, "  maximize <app>      Toggle maximize on a window")
	fmt.Fprintln(w, "  focus <app>         Raise a window")
	fmt.Fprintln(w, "  taskbar <app>       Click an app's taskbar button")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  viewport <W> <H>    Report a viewport size")
	fmt.Fprintln(w, "  foreground <mode> [app]")
	fmt.Fprintln(w, "                      Set the phone/tablet foreground app")
	fmt.Fprintln(w, "  home                Return to the home screen")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config init         Write the default configuration file")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "  config explain      Explain a config value")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  tui                 Open the terminal desktop")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'deskshell <command> --help' for command-specific options.")
}

func isHelp(args []string) bool {
	return len(args) > 0 && (args[0] == "help" || args[0] == "-h" || args[0] == "--help")
}

func withTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), requestTimeout)
}

// loadConfig reads path, or the default location when path is empty.
func loadConfig(path string) (*config.LoadResult, error) {
	if path == "" {
		return config.LoadWithSources()
	}
	return config.LoadFromPath(path)
}

// newLogger builds the process logger from the logging section. Console
// output always goes to stderr.
func newLogger(cfg *config.Config, console bool) (*logger.Logger, error) {
	level, err := logger.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return nil, err
	}
	opts := []logger.Option{logger.WithLevel(level)}
	if console {
		opts = append(opts, logger.WithConsole())
	}
	if cfg.Logging.File != "" {
		opts = append(opts, logger.WithFile(cfg.Logging.File))
	}
	return logger.New(opts...)
}

func runStatus(args []string) int {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: deskshell status")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show daemon status via IPC.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "status takes no arguments")
		fs.Usage()
		return 2
	}

	ctx, cancel := withTimeout()
	defer cancel()
	status, err := ipc.NewClient().GetStatus(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("daemon_running: %v\n", status.DaemonRunning)
	fmt.Printf("mode:           %s\n", status.Mode)
	fmt.Printf("viewport:       %dx%d\n", status.Viewport.Width, status.Viewport.Height)
	fmt.Printf("open_count:     %d\n", status.OpenCount)
	fmt.Printf("active:         %s\n", displayOr(string(status.Active), "-"))
	fmt.Printf("dragging:       %v\n", status.Dragging)
	fmt.Printf("revision:       %d\n", status.Revision)
	fmt.Printf("uptime_seconds: %d\n", status.UptimeSeconds)
	return 0
}

func runSnapshot(args []string) int {
	fs := flag.NewFlagSet("snapshot", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	asJSON := fs.Bool("json", false, "Print the raw snapshot as JSON")
	all := fs.Bool("all", false, "Include closed windows")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: deskshell snapshot [--json] [--all]")
		fmt.Fprintln(os.Stderr, "")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	ctx, cancel := withTimeout()
	defer cancel()
	snap, err := ipc.NewClient().Snapshot(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(snap); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0
	}
	printSnapshot(os.Stdout, snap, *all, terminalWidth())
	return 0
}

func terminalWidth() int {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return 0
	}
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return 0
	}
	return w
}

// printSnapshot writes a human-readable summary. Lines are cut at width
// when it is positive.
func printSnapshot(w io.Writer, snap *desktop.Snapshot, all bool, width int) {
	line := func(format string, args ...any) {
		s := fmt.Sprintf(format, args...)
		if width > 0 && len([]rune(s)) > width {
			s = string([]rune(s)[:width])
		}
		fmt.Fprintln(w, s)
	}

	line("mode:      %s", snap.Mode)
	line("viewport:  %dx%d", snap.Viewport.Width, snap.Viewport.Height)
	if snap.Workspace != nil {
		ws := snap.Workspace
		line("workspace: %dx%d at (%d,%d)", ws.Width, ws.Height, ws.Left, ws.Top)
	}
	if snap.Mode.SingleApp() {
		line("foreground: %s", displayOr(string(snap.Foreground(snap.Mode)), "home"))
	}
	line("active:    %s", displayOr(string(snap.Active), "-"))
	sel := make([]string, len(snap.Selection))
	for i, id := range snap.Selection {
		sel[i] = string(id)
	}
	line("selection: %s", displayOr(strings.Join(sel, ","), "-"))
	line("")
	line("%-12s %-6s %-22s %-4s %s", "APP", "STATE", "FRAME", "Z", "TITLE")
	for _, win := range snap.Windows {
		if !win.Open && !all {
			continue
		}
		state := "open"
		switch {
		case !win.Open:
			state = "closed"
		case win.Minimized:
			state = "min"
		case win.Maximized:
			state = "max"
		}
		f := win.Frame
		frame := fmt.Sprintf("%dx%d+%d+%d", f.Width, f.Height, f.Left, f.Top)
		z := "-"
		if win.ZIndex > 0 {
			z = strconv.Itoa(win.ZIndex)
		}
		title := win.Title
		if win.Active {
			title += " *"
		}
		line("%-12s %-6s %-22s %-4s %s", win.ID, state, frame, z, title)
	}
}

func displayOr(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

var appCommands = map[string]struct {
	call func(*ipc.Client, context.Context, string) (*desktop.Snapshot, error)
	help string
}{
	"open":     {(*ipc.Client).Open, "Open an application (or bring it to the foreground on phone/tablet)."},
	"close":    {(*ipc.Client).Close, "Close an application window."},
	"minimize": {(*ipc.Client).Minimize, "Minimize an application window."},
	"maximize": {(*ipc.Client).ToggleMaximize, "Maximize a window, or restore it if already maximized."},
	"focus":    {(*ipc.Client).Focus, "Raise a window and make it active."},
	"taskbar":  {(*ipc.Client).TaskbarClick, "Click an app's taskbar button."},
}

func runAppCommand(name string, args []string) int {
	cmd := appCommands[name]
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: deskshell %s <app>\n\n", name)
		fmt.Fprintln(os.Stderr, cmd.help)
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "%s requires exactly one app\n", name)
		fs.Usage()
		return 2
	}

	ctx, cancel := withTimeout()
	defer cancel()
	snap, err := cmd.call(ipc.NewClient(), ctx, fs.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("active: %s\n", displayOr(string(snap.Active), "-"))
	return 0
}

func runSimple(name string, args []string, call func(*ipc.Client, context.Context) (*desktop.Snapshot, error)) int {
	if isHelp(args) {
		fmt.Fprintf(os.Stdout, "Usage: deskshell %s\n", name)
		return 0
	}
	if len(args) != 0 {
		fmt.Fprintf(os.Stderr, "%s takes no arguments\n", name)
		return 2
	}
	ctx, cancel := withTimeout()
	defer cancel()
	snap, err := call(ipc.NewClient(), ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("mode: %s\n", snap.Mode)
	return 0
}

func runViewport(args []string) int {
	if isHelp(args) {
		fmt.Fprintln(os.Stdout, "Usage: deskshell viewport <width> <height>")
		fmt.Fprintln(os.Stdout, "")
		fmt.Fprintln(os.Stdout, "Report a viewport size in pixels. The view mode follows the width.")
		return 0
	}
	if len(args) != 2 {
		fmt.Fprintln(os.Stderr, "viewport requires <width> <height>")
		return 2
	}
	width, err1 := strconv.Atoi(args[0])
	height, err2 := strconv.Atoi(args[1])
	if err1 != nil || err2 != nil {
		fmt.Fprintln(os.Stderr, "width and height must be integers")
		return 2
	}

	ctx, cancel := withTimeout()
	defer cancel()
	snap, err := ipc.NewClient().SetViewport(ctx, width, height)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("mode: %s\n", snap.Mode)
	return 0
}

func runForeground(args []string) int {
	if isHelp(args) || len(args) == 0 || len(args) > 2 {
		fmt.Fprintln(os.Stderr, "Usage: deskshell foreground <phone|tablet> [app]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Without an app the mode returns to its home screen.")
		if isHelp(args) {
			return 0
		}
		return 2
	}
	mode, err := desktop.ParseViewMode(args[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	app := ""
	if len(args) == 2 {
		app = args[1]
	}

	ctx, cancel := withTimeout()
	defer cancel()
	snap, err := ipc.NewClient().SetForeground(ctx, mode, app)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("%s: %s\n", mode, displayOr(string(snap.Foreground(mode)), "home"))
	return 0
}

// initConfig writes the built-in defaults to path, or the default location
// when path is empty. An existing file is kept unless force is set.
func initConfig(path string, force bool) (string, error) {
	if path == "" {
		def, err := config.DefaultConfigPath()
		if err != nil {
			return "", err
		}
		path = def
	}
	if _, err := os.Stat(path); err == nil && !force {
		return "", fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	if err := config.DefaultConfig().Save(path); err != nil {
		return "", err
	}
	return path, nil
}

func runConfig(args []string) int {
	if len(args) == 0 || isHelp(args) {
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  deskshell config init [--path PATH] [--force]")
		fmt.Fprintln(os.Stderr, "  deskshell config validate [--path PATH]")
		fmt.Fprintln(os.Stderr, "  deskshell config print [--path PATH] [--defaults]")
		fmt.Fprintln(os.Stderr, "  deskshell config explain [--path PATH] <yaml.path>")
		return 2
	}

	switch args[0] {
	case "init":
		fs := flag.NewFlagSet("init", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/deskshell/config.yaml)")
		force := fs.Bool("force", false, "Overwrite an existing file")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		written, err := initConfig(*path, *force)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Printf("wrote %s\n", written)
		return 0

	case "validate":
		fs := flag.NewFlagSet("validate", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/deskshell/config.yaml)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		if _, err := loadConfig(*path); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Println("config: ok")
		return 0

	case "print":
		fs := flag.NewFlagSet("print", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/deskshell/config.yaml)")
		printDefaults := fs.Bool("defaults", false, "Print built-in defaults (no files)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}

		cfg := config.DefaultConfig()
		if !*printDefaults {
			res, err := loadConfig(*path)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return 1
			}
			cfg = res.Config
		}
		data, err := cfg.Marshal()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Print(string(data))
		return 0

	case "explain":
		fs := flag.NewFlagSet("explain", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/deskshell/config.yaml)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		if fs.NArg() < 1 {
			fmt.Fprintln(os.Stderr, "explain requires <yaml.path>")
			return 2
		}
		queryPath := fs.Arg(0)

		res, err := loadConfig(*path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		value, src, err := config.Explain(res, queryPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		out, err := yaml.Marshal(value)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}

		fmt.Printf("path: %s\n", queryPath)
		fmt.Printf("source: %s\n", formatSource(src))
		fmt.Printf("value:\n%s", string(out))
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown config subcommand: %s\n", args[0])
		return 2
	}
}

func formatSource(src config.Source) string {
	switch src.Kind {
	case config.SourceFile:
		if src.File == "" {
			return "file"
		}
		if src.Line > 0 {
			return fmt.Sprintf("file:%s:%d:%d", src.File, src.Line, src.Column)
		}
		return "file:" + src.File
	case config.SourceDefault:
		return "default"
	default:
		return string(src.Kind)
	}
}

func runTUI(args []string) int {
	fs := flag.NewFlagSet("tui", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("path", "", "Config file path (default: ~/.config/deskshell/config.yaml)")

	if isHelp(args) {
		fmt.Fprintln(os.Stderr, "Usage: deskshell tui [--path PATH]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Terminal desktop. Attaches to the daemon when it is running,")
		fmt.Fprintln(os.Stderr, "otherwise runs its own desktop in-process.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Mouse: drag title bars and edges, click icons, taskbar and start menu.")
		fmt.Fprintln(os.Stderr, "Keys:  tab next window, m minimize, z maximize, x close, s start menu,")
		fmt.Fprintln(os.Stderr, "       1-9 open app, h home, r reload, ? help, q quit")
		return 0
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}

	res, err := loadConfig(*path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	// The terminal owns stdout and stderr; only a configured log file is
	// written while the UI runs.
	log, err := newLogger(res.Config, false)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer log.Close()

	rebuild := func() (*desktop.Desktop, error) {
		next, err := loadConfig(*path)
		if err != nil {
			return nil, err
		}
		return next.Config.NewDesktop(desktop.WithLogger(log.Component("desktop"))), nil
	}

	ctx, cancel := signalContext()
	defer cancel()
	err = tui.Run(ctx, tui.Options{
		Config:  res.Config,
		Rebuild: rebuild,
		Logger:  log.Component("tui"),
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
