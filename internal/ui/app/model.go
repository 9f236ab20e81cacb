// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/receipta-tui/internal/audit"
	"github.com/jeranaias/receipta-tui/internal/guard"
	"github.com/jeranaias/receipta-tui/internal/idle"
	"github.com/jeranaias/receipta-tui/internal/logging"
	"github.com/jeranaias/receipta-tui/internal/route"
	"github.com/jeranaias/receipta-tui/internal/ui/components"
	"github.com/jeranaias/receipta-tui/internal/ui/styles"
)

// Options configures the root model.
type Options struct {
	// Auth performs the sign-out when the session goes idle. Required.
	Auth guard.Logouter

	Classifier    *route.Classifier
	Timeout       time.Duration
	LogoutTimeout time.Duration
	LoginPath     string

	// InitialPath is the first route shown. Defaults to "/".
	InitialPath string

	Theme  *styles.Theme
	Logger logging.Logger
	Audit  guard.Auditor
	Clock  idle.Clock

	// Executor runs guard callbacks on the event loop. Nil means a
	// ProgramExecutor, attached by Run.
	Executor idle.Executor
}

// Model is the root Bubble Tea model.
type Model struct {
	guard      *guard.Guard
	bus        *idle.Bus
	router     *Router
	toasts     *components.ToastManager
	classifier *route.Classifier
	program    *ProgramExecutor
	theme      *styles.Theme
	log        logging.Logger
	audit      guard.Auditor

	keys     KeyMap
	help     help.Model
	viewport viewport.Model
	status   *components.StatusBar
	overlay  components.SignOutOverlay

	initialPath string
	width       int
	height      int

	renderer      *glamour.TermRenderer
	rendererWidth int
	renderedPath  string
	renderedWidth int

	quitting bool
}

// New wires the router, toasts and session guard into a root model.
func New(opts Options) (Model, error) {
	if opts.Auth == nil {
		return Model{}, errors.New("app: auth is required")
	}
	if opts.Classifier == nil {
		opts.Classifier = route.NewClassifier()
	}
	if opts.Theme == nil {
		opts.Theme = styles.NewTheme(styles.ThemeDark)
	}
	if opts.InitialPath == "" {
		opts.InitialPath = route.PathHome
	}

	m := Model{
		bus:         idle.NewBus(),
		router:      NewRouter(),
		toasts:      components.NewToastManager(),
		classifier:  opts.Classifier,
		theme:       opts.Theme,
		log:         logging.OrDiscard(opts.Logger),
		audit:       opts.Audit,
		keys:        DefaultKeyMap(),
		help:        help.New(),
		viewport:    viewport.New(80, 20),
		status:      components.NewStatusBar(opts.Theme),
		overlay:     components.NewSignOutOverlay(),
		initialPath: CleanPath(opts.InitialPath),
	}

	exec := opts.Executor
	if exec == nil {
		m.program = NewProgramExecutor()
		exec = m.program
	}

	toasts := m.toasts
	router := m.router
	g, err := guard.New(guard.Options{
		Classifier:    opts.Classifier,
		Timeout:       opts.Timeout,
		Bus:           m.bus,
		Executor:      exec,
		Clock:         opts.Clock,
		Auth:          opts.Auth,
		LoginPath:     opts.LoginPath,
		LogoutTimeout: opts.LogoutTimeout,
		Logger:        opts.Logger,
		Audit:         opts.Audit,
		Notifier:      toasts,
		Navigator: guard.NavigatorFunc(func(path string) {
			router.Navigate(path)
		}),
	})
	if err != nil {
		return Model{}, err
	}
	m.guard = g
	router.OnChange(g.OnRouteChanged)

	return m, nil
}

// Guard returns the session guard.
func (m Model) Guard() *guard.Guard { return m.guard }

// Bus returns the activity bus the model publishes input on.
func (m Model) Bus() *idle.Bus { return m.bus }

// Router returns the router.
func (m Model) Router() *Router { return m.router }

// Toasts returns the toast manager.
func (m Model) Toasts() *components.ToastManager { return m.toasts }

// Program returns the program-backed executor, or nil when Options supplied
// an executor.
func (m Model) Program() *ProgramExecutor { return m.program }

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		Navigate(m.initialPath),
		sessionTick(),
		components.ToastTickCmd(),
	)
}

// Update implements tea.Model. Input is published as activity before it is
// handled, so a key that navigates still counts as activity on the route it
// was pressed on.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	publishActivity(m.bus, msg)

	switch msg := msg.(type) {
	case runMsg:
		msg.fn()

	case NavigateMsg:
		m.router.Navigate(msg.Path)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.theme.SetSize(msg.Width, msg.Height)
		m.help.Width = msg.Width
		m.status.SetWidth(msg.Width)
		m.overlay.SetSize(msg.Width, msg.Height)
		m.layout()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.guard.Close()
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			m.layout()
		case key.Matches(msg, m.keys.Back):
			m.router.Back()
		case key.Matches(msg, m.keys.Navigate):
			if s, ok := ScreenForKey(msg.String()); ok {
				m.router.Navigate(s.Path)
			}
		default:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			cmds = append(cmds, cmd)
		}

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)

	case sessionTickMsg:
		cmds = append(cmds, sessionTick())

	case components.ToastTickMsg:
		m.toasts.Tick()
		cmds = append(cmds, components.ToastTickCmd())

	case ConfigReloadedMsg:
		m.applyConfig(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.overlay, cmd = m.overlay.Update(msg)
		cmds = append(cmds, cmd)
	}

	cmds = append(cmds, m.sync())
	return m, tea.Batch(cmds...)
}

// applyConfig hot-applies the idle timeout from a reloaded config. Other
// settings take effect on the next start.
func (m *Model) applyConfig(msg ConfigReloadedMsg) {
	if msg.Err != nil {
		m.log.Warn("config reload rejected", "err", msg.Err)
		m.toasts.AddWarning("Config reload failed: " + msg.Err.Error())
		return
	}
	if msg.Config == nil {
		return
	}

	d := msg.Config.IdleTimeout()
	if d == m.guard.Timeout() {
		return
	}
	if err := m.guard.SetTimeout(d); err != nil {
		m.log.Warn("idle timeout not applied", "timeout", d, "err", err)
		m.toasts.AddWarning("Idle timeout not applied: " + err.Error())
		return
	}

	m.log.Info("idle timeout changed", "timeout", d)
	if m.audit != nil {
		if err := m.audit.LogEvent(m.guard.SessionID(), audit.EventConfigReloaded, map[string]string{
			"idle_timeout_ms": strconv.FormatInt(d.Milliseconds(), 10),
		}); err != nil {
			m.log.Warn("audit write failed", "err", err)
		}
	}
	m.toasts.AddStatus(fmt.Sprintf("Idle timeout is now %s", d))
}

// sync brings the status bar, screen body and sign-out overlay in line with
// the router and guard.
func (m *Model) sync() tea.Cmd {
	path := m.router.Current()
	m.status.SetRoute(path, m.classifier.Classify(path))
	m.status.SetSession(m.guard.State(), m.guard.Remaining(), m.guard.Timeout())

	if path != m.renderedPath || m.viewport.Width != m.renderedWidth {
		m.renderScreen(path)
	}

	terminating := m.guard.State() == guard.Terminating
	switch {
	case terminating && !m.overlay.IsVisible():
		return m.overlay.Show()
	case !terminating && m.overlay.IsVisible():
		m.overlay.Hide()
	}
	return nil
}

// chromeHeight is the number of lines around the viewport.
func (m *Model) chromeHeight() int {
	helpLines := lipgloss.Height(m.help.View(m.keys))
	// nav bar + title + help + status bar
	return 1 + 1 + helpLines + 1
}

func (m *Model) layout() {
	if m.width == 0 || m.height == 0 {
		return
	}
	h := m.height - m.chromeHeight()
	if h < 1 {
		h = 1
	}
	m.viewport.Width = m.width
	m.viewport.Height = h
}

func (m *Model) renderScreen(path string) {
	m.renderedPath = path
	m.renderedWidth = m.viewport.Width

	body := "## " + TitleFor(path) + "\n\nNothing here yet."
	if s, ok := ScreenFor(path); ok {
		body = s.Body
	}
	m.viewport.SetContent(m.renderMarkdown(body))
	m.viewport.GotoTop()
}

func (m *Model) renderMarkdown(md string) string {
	width := m.viewport.Width - 2
	if width < 20 {
		width = 20
	}
	if m.renderer == nil || m.rendererWidth != width {
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(m.theme.Name),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			m.log.Debug("markdown renderer unavailable", "err", err)
			return md
		}
		m.renderer = r
		m.rendererWidth = width
	}
	out, err := m.renderer.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.overlay.IsVisible() {
		return m.overlay.View()
	}

	path := m.router.Current()
	body := m.viewport.View()

	if toasts := m.toasts.Toasts(); len(toasts) > 0 {
		stack := components.RenderToastStack(toasts, m.width, 0, m.toasts.Now())
		body = overlayBottom(body, lipgloss.PlaceHorizontal(m.width, lipgloss.Right, stack))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.navBar(path),
		m.theme.Title.Render(TitleFor(path)),
		body,
		m.help.View(m.keys),
		m.status.View(),
	)
}

func (m Model) navBar(current string) string {
	items := make([]string, 0, len(Screens)+1)
	items = append(items, m.theme.Header.Render("receipta"))
	for _, s := range Screens {
		label := m.theme.NavKey.Render(s.Key) + " " + s.Title()
		if s.Path == current {
			items = append(items, m.theme.NavItemActive.Render(s.Key+" "+s.Title()))
			continue
		}
		items = append(items, m.theme.NavItem.Render(label))
	}
	bar := lipgloss.JoinHorizontal(lipgloss.Top, items...)
	if m.width > 0 {
		bar = lipgloss.NewStyle().MaxWidth(m.width).Render(bar)
	}
	return bar
}

// overlayBottom replaces the last lines of base with top.
func overlayBottom(base, top string) string {
	baseLines := strings.Split(base, "\n")
	topLines := strings.Split(top, "\n")
	if len(topLines) >= len(baseLines) {
		return top
	}
	keep := baseLines[:len(baseLines)-len(topLines)]
	return strings.Join(append(keep, topLines...), "\n")
}
