package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/1broseidon/deskshell/internal/desktop"
	"github.com/1broseidon/deskshell/internal/geometry"
)

const (
	mousePointerID   = 1
	doubleClickDelay = 500 * time.Millisecond
	callTimeout      = 2 * time.Second
)

var (
	helpBarStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	taskbarStyle = lipgloss.NewStyle().Reverse(true)
	modeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
)

// Driver is the set of desktop calls the terminal shell makes. Both the IPC
// client and daemon.Local satisfy it.
type Driver interface {
	Snapshot(ctx context.Context) (*desktop.Snapshot, error)
	Reload(ctx context.Context) (*desktop.Snapshot, error)
	Open(ctx context.Context, app string) (*desktop.Snapshot, error)
	Close(ctx context.Context, app string) (*desktop.Snapshot, error)
	Minimize(ctx context.Context, app string) (*desktop.Snapshot, error)
	ToggleMaximize(ctx context.Context, app string) (*desktop.Snapshot, error)
	Focus(ctx context.Context, app string) (*desktop.Snapshot, error)
	TaskbarClick(ctx context.Context, app string) (*desktop.Snapshot, error)
	ClickIcon(ctx context.Context, app string) (*desktop.Snapshot, error)
	DoubleClickIcon(ctx context.Context, app string) (*desktop.Snapshot, error)
	StartDrag(ctx context.Context, app string, ev desktop.PointerEvent) (*desktop.Snapshot, error)
	StartResize(ctx context.Context, app string, dir desktop.Direction, ev desktop.PointerEvent) (*desktop.Snapshot, error)
	PointerMove(ctx context.Context, ev desktop.PointerEvent) (*desktop.Snapshot, error)
	PointerUp(ctx context.Context, ev desktop.PointerEvent) (*desktop.Snapshot, error)
	DesktopPointerDown(ctx context.Context, ev desktop.PointerEvent, target desktop.Target) (*desktop.Snapshot, error)
	GoHome(ctx context.Context) (*desktop.Snapshot, error)
	ToggleStartMenu(ctx context.Context) (*desktop.Snapshot, error)
	SetViewport(ctx context.Context, width, height int) (*desktop.Snapshot, error)
	SetIconBounds(ctx context.Context, icons map[string]geometry.Rect) (*desktop.Snapshot, error)
}

type model struct {
	driver Driver
	shell  shell
	now    func() time.Time
	logger zerolog.Logger

	keys keyMap
	help help.Model

	snap    desktop.Snapshot
	err     error
	clock   time.Time
	pressed bool

	lastIcon      desktop.AppID
	lastIconClick time.Time
}

func newModel(driver Driver, sh shell, now func() time.Time, logger zerolog.Logger) model {
	return model{
		driver: driver,
		shell:  sh,
		now:    now,
		logger: logger,
		keys:   defaultKeyMap(),
		help:   help.New(),
		clock:  now(),
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(tick(), refresh())
}

// call runs one driver request and keeps the returned snapshot.
func (m *model) call(fn func(ctx context.Context) (*desktop.Snapshot, error)) {
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()
	snap, err := fn(ctx)
	if err != nil {
		m.err = err
		m.logger.Debug().Err(err).Msg("desktop call failed")
		return
	}
	m.err = nil
	m.snap = *snap
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tickMsg:
		m.clock = time.Time(msg)
		return m, tick()

	case refreshMsg:
		m.call(m.driver.Snapshot)
		return m, refresh()

	case tea.MouseMsg:
		m.mouse(msg)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		case key.Matches(msg, m.keys.StartMenu):
			m.call(m.driver.ToggleStartMenu)
		case key.Matches(msg, m.keys.Home):
			m.call(m.driver.GoHome)
		case key.Matches(msg, m.keys.Reload):
			m.call(m.driver.Reload)
		case key.Matches(msg, m.keys.OpenApp):
			m.openNth(int(msg.String()[0] - '1'))
		}
		return m, nil
	}
	return m, nil
}

// resize reports the drawable area, one row short for the help bar, and
// the icon cells that go with it.
func (m *model) resize(cols, rows int) {
	m.shell.cols = max(1, cols)
	m.shell.rows = max(1, rows-1)
	vp := m.shell.size()
	m.call(func(ctx context.Context) (*desktop.Snapshot, error) {
		return m.driver.SetViewport(ctx, vp.Width, vp.Height)
	})
	if m.err != nil {
		return
	}
	bounds := m.shell.iconBounds(catalogOf(m.snap))
	m.call(func(ctx context.Context) (*desktop.Snapshot, error) {
		return m.driver.SetIconBounds(ctx, bounds)
	})
}

func (m *model) event(msg tea.MouseMsg) desktop.PointerEvent {
	x, y := m.shell.grid.point(msg.X, msg.Y)
	ev := desktop.PointerEvent{PointerID: mousePointerID, X: x, Y: y}
	switch msg.Button {
	case tea.MouseButtonMiddle:
		ev.Button = desktop.ButtonAuxiliary
	case tea.MouseButtonRight:
		ev.Button = desktop.ButtonSecondary
	default:
		ev.Button = desktop.ButtonPrimary
	}
	return ev
}

func (m *model) mouse(msg tea.MouseMsg) {
	ev := m.event(msg)
	switch msg.Action {
	case tea.MouseActionMotion:
		if m.pressed {
			m.call(func(ctx context.Context) (*desktop.Snapshot, error) {
				return m.driver.PointerMove(ctx, ev)
			})
		}
	case tea.MouseActionRelease:
		if m.pressed {
			m.pressed = false
			m.call(func(ctx context.Context) (*desktop.Snapshot, error) {
				return m.driver.PointerUp(ctx, ev)
			})
		}
	case tea.MouseActionPress:
		if msg.Button == tea.MouseButtonWheelUp || msg.Button == tea.MouseButtonWheelDown {
			return
		}
		m.press(ev, m.shell.hitTest(m.snap, msg.X, msg.Y))
	}
}

func (m *model) press(ev desktop.PointerEvent, h hit) {
	if m.snap.Mode.SingleApp() {
		switch h.kind {
		case hitTile:
			m.onApp(m.driver.Open, h.app)
		case hitHome:
			m.call(m.driver.GoHome)
		}
		return
	}

	m.pressed = true
	m.call(func(ctx context.Context) (*desktop.Snapshot, error) {
		return m.driver.DesktopPointerDown(ctx, ev, h.target())
	})
	if ev.Button != desktop.ButtonPrimary {
		return
	}

	switch h.kind {
	case hitIcon:
		now := m.now()
		if h.app == m.lastIcon && now.Sub(m.lastIconClick) <= doubleClickDelay {
			m.lastIcon = desktop.NoApp
			m.onApp(m.driver.DoubleClickIcon, h.app)
			return
		}
		m.lastIcon, m.lastIconClick = h.app, now
		m.onApp(m.driver.ClickIcon, h.app)
	case hitTitle:
		m.call(func(ctx context.Context) (*desktop.Snapshot, error) {
			return m.driver.StartDrag(ctx, string(h.app), ev)
		})
	case hitResize:
		m.call(func(ctx context.Context) (*desktop.Snapshot, error) {
			return m.driver.StartResize(ctx, string(h.app), h.dir, ev)
		})
	case hitWindowBody:
		m.onApp(m.driver.Focus, h.app)
	case hitMinimize:
		m.onApp(m.driver.Minimize, h.app)
	case hitMaximize:
		m.onApp(m.driver.ToggleMaximize, h.app)
	case hitClose:
		m.onApp(m.driver.Close, h.app)
	case hitTaskButton:
		m.onApp(m.driver.TaskbarClick, h.app)
	case hitStartButton:
		m.call(m.driver.ToggleStartMenu)
	case hitStartMenuItem:
		m.onApp(m.driver.Open, h.app)
	}
}

func (m *model) onApp(fn func(ctx context.Context, app string) (*desktop.Snapshot, error), id desktop.AppID) {
	m.call(func(ctx context.Context) (*desktop.Snapshot, error) {
		return fn(ctx, string(id))
	})
}

func (m *model) openNth(i int) {
	catalog := catalogOf(m.snap)
	if i < 0 || i >= len(catalog) {
		return
	}
	m.onApp(m.driver.Open, catalog[i].ID)
}

func (m model) View() string {
	if m.shell.cols == 0 {
		return "starting…"
	}
	lines := m.shell.draw(m.snap, m.clock).lines()

	if !m.snap.Mode.SingleApp() {
		tb := m.shell.taskbar()
		for row := tb.row; row <= tb.lastRow() && row < len(lines); row++ {
			if row >= 0 {
				lines[row] = taskbarStyle.Render(lines[row])
			}
		}
	}

	if m.help.ShowAll {
		full := strings.Split(m.help.FullHelpView(m.keys.FullHelp()), "\n")
		start := max(0, len(lines)-len(full))
		for i := 0; i < len(full) && start+i < len(lines); i++ {
			lines[start+i] = full[i]
		}
	}

	status := modeStyle.Render(string(m.snap.Mode)) + "  " + helpBarStyle.Render(m.help.ShortHelpView(m.keys.ShortHelp()))
	if m.err != nil {
		status = errorStyle.Render("error: " + m.err.Error())
	}
	return strings.Join(append(lines, status), "\n")
}
