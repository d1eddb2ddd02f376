package ui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/soundslate/internal/formatter"
	"github.com/desertthunder/soundslate/internal/models"
	"github.com/desertthunder/soundslate/internal/session"
	"github.com/desertthunder/soundslate/internal/shared"
	"github.com/desertthunder/soundslate/internal/stats"
)

// SessionStore removes the persisted session on logout. [session.FileStore] satisfies it.
type SessionStore interface {
	Clear() error
}

// Opts configures [NewModel].
type Opts struct {
	Source  stats.Source
	Session *session.Session
	Store   SessionStore
	Filters stats.Filters
	// ExportDir receives PNG exports; "" is the working directory.
	ExportDir string
	Logger    *log.Logger
	Now       func() time.Time
}

// Model represents the TUI application state.
type Model struct {
	ctx       context.Context
	loader    *stats.Loader
	view      *stats.View
	store     SessionStore
	exportDir string
	logger    *log.Logger
	now       func() time.Time

	profile   *models.Profile
	list      listPane
	loading   bool
	message   string
	status    string
	loggedOut bool

	width   int
	height  int
	spinner spinner.Model
	help    help.Model
	keys    keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, opts Opts) *Model {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.ok

	view := stats.NewView(opts.Filters)
	m := &Model{
		ctx:       ctx,
		loader:    stats.NewLoader(opts.Source, opts.Session, opts.Logger),
		view:      view,
		store:     opts.Store,
		exportDir: opts.ExportDir,
		logger:    opts.Logger,
		now:       opts.Now,
		list:      newListPane(),
		width:     defaultWidth,
		height:    defaultHeight,
		spinner:   sp,
		help:      help.New(),
		keys:      newKeyMap(),
	}
	m.list.setLayout(view.Filters().Layout)
	return m
}

// Init fetches the profile and the initial list.
func (m *Model) Init() tea.Cmd {
	m.loading = true
	return tea.Batch(m.spinner.Tick, m.load(stats.ProfileKey()), m.load(m.view.Key()))
}

// Filters returns the current selection.
func (m *Model) Filters() stats.Filters {
	return m.view.Filters()
}

// LoggedOut reports whether the session ended while the TUI was running.
func (m *Model) LoggedOut() bool {
	return m.loggedOut
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.list.resize(msg.Width, msg.Height)
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.loggedOut {
			if key.Matches(msg, m.keys.quit) {
				return m, tea.Quit
			}
			return m, nil
		}
		return m.handleKeys(msg)

	case Msg:
		switch msg.kind {
		case MsgProfileLoaded:
			return m.profileLoaded(msg.data.(stats.Result))
		case MsgListLoaded:
			return m.listLoaded(msg.data.(stats.Result))
		case MsgExported:
			e := msg.data.(exported)
			if e.err != nil {
				m.status = styles.err.Render("Export failed: " + e.err.Error())
			} else {
				m.status = styles.ok.Render("Saved " + e.path)
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list.vp, cmd = m.list.vp.Update(msg)
	return m, cmd
}

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := m.view.Filters()
	switch {
	case key.Matches(msg, m.keys.quit):
		m.loader.CancelAll()
		return m, tea.Quit
	case key.Matches(msg, m.keys.tab):
		return m, m.refetch(m.view.SelectTab(f.Tab.Next()))
	case key.Matches(msg, m.keys.rng):
		return m, m.refetch(m.view.SetTimeRange(f.TimeRange.Next()))
	case key.Matches(msg, m.keys.limit):
		return m, m.refetch(m.view.SetLimit(models.NextLimit(f.Limit)))
	case key.Matches(msg, m.keys.layout):
		if err := m.view.SetLayout(f.Layout.Next()); err == nil {
			m.list.setLayout(m.view.Filters().Layout)
		}
		return m, nil
	case key.Matches(msg, m.keys.export):
		return m, m.export()
	case key.Matches(msg, m.keys.logout):
		m.logout("")
		return m, nil
	}

	var cmd tea.Cmd
	m.list.vp, cmd = m.list.vp.Update(msg)
	return m, cmd
}

// refetch loads key when the selection changed. Unchanged selections do not fetch.
func (m *Model) refetch(k stats.Key, changed bool, err error) tea.Cmd {
	if err != nil {
		m.logger.Warn("invalid selection", "err", err)
		return nil
	}
	if !changed {
		return nil
	}
	m.loading = true
	m.message = ""
	m.status = ""
	return tea.Batch(m.spinner.Tick, m.load(k))
}

func (m *Model) load(k stats.Key) tea.Cmd {
	loader, ctx := m.loader, m.ctx
	return func() tea.Msg {
		return loadedMsg(loader.Load(ctx, k))
	}
}

func (m *Model) profileLoaded(res stats.Result) (tea.Model, tea.Cmd) {
	switch res.Status {
	case stats.StatusOK:
		m.profile = res.Profile
	case stats.StatusExpired:
		m.logout(res.Message())
	case stats.StatusFailed:
		m.logger.Warn("profile unavailable", "err", res.Err)
	}
	return m, nil
}

func (m *Model) listLoaded(res stats.Result) (tea.Model, tea.Cmd) {
	// Results for a list that is no longer selected are dropped.
	if res.Status == stats.StatusSuperseded || res.Key != m.view.Key() || m.loggedOut {
		return m, nil
	}

	m.loading = false
	m.message = res.Message()
	if res.Status == stats.StatusOK {
		m.list.set(res.Items())
	} else {
		m.list.set(nil)
	}
	return m, nil
}

func (m *Model) export() tea.Cmd {
	if m.loading || len(m.list.items) == 0 {
		m.status = styles.warn.Render("Nothing to export yet")
		return nil
	}

	f := m.view.Filters()
	list := formatter.List{
		Tab:       f.Tab,
		TimeRange: f.TimeRange,
		Owner:     m.owner(),
		Items:     m.list.items,
		Generated: m.now(),
	}
	layout, dir := m.list.layout, m.exportDir
	return func() tea.Msg {
		path, err := formatter.WriteExport(list, formatter.FormatPNG, layout, dir)
		return exportedMsg(path, err)
	}
}

// logout tears the session down and always ends on the logged out screen.
func (m *Model) logout(reason string) {
	m.loader.CancelAll()
	if m.store != nil {
		if err := m.store.Clear(); err != nil {
			m.logger.Error("failed to clear session", "err", err)
		}
	}
	m.view.Reset()
	m.profile = nil
	m.list.set(nil)
	m.loading = false
	m.message = reason
	m.loggedOut = true
	m.logger.Info("logged out", "reason", reason)
}

func (m *Model) owner() string {
	if m.profile == nil {
		return ""
	}
	return m.profile.Name()
}

// View renders the UI based on the current state.
func (m *Model) View() string {
	if m.loggedOut {
		return m.renderLoggedOut()
	}

	var b strings.Builder
	b.WriteString(styles.title.Render(shared.AppName))
	if name := m.owner(); name != "" {
		b.WriteString("  Welcome, " + name)
	}
	b.WriteString("\n\n")
	b.WriteString(m.renderTabs())
	b.WriteString("\n")
	b.WriteString(m.renderFilters())
	b.WriteString("\n\n")

	switch {
	case m.loading:
		b.WriteString(m.spinner.View() + " Loading...")
	case m.message != "":
		b.WriteString(styles.err.Render(m.message))
	case len(m.list.items) == 0:
		b.WriteString(styles.help.Render("No items"))
	default:
		b.WriteString(m.list.vp.View())
	}

	b.WriteString("\n\n")
	if m.status != "" {
		b.WriteString(m.status + "\n")
	}
	b.WriteString(m.help.ShortHelpView(m.keys.ShortHelp()))
	return b.String()
}

func (m *Model) renderTabs() string {
	active := m.view.Filters().Tab
	tabs := make([]string, 0, len(models.Tabs))
	for _, t := range models.Tabs {
		if t == active {
			tabs = append(tabs, styles.tabOn.Render(t.Label()))
		} else {
			tabs = append(tabs, styles.tab.Render(t.Label()))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m *Model) renderFilters() string {
	f := m.view.Filters()
	return fmt.Sprintf("%s %s  %s %s  %s %s",
		styles.help.Render("Time range:"), styles.selected.Render(f.TimeRange.Label()),
		styles.help.Render("Limit:"), styles.selected.Render(fmt.Sprint(f.Limit)),
		styles.help.Render("View:"), styles.selected.Render(f.Layout.Label()),
	)
}

func (m *Model) renderLoggedOut() string {
	var b strings.Builder
	b.WriteString(styles.title.Render(shared.AppName) + "\n\n")
	if m.message != "" {
		b.WriteString(styles.err.Render(m.message) + "\n")
	}
	b.WriteString("Logged out. Run `soundslate auth login` to sign in again.\n\n")
	b.WriteString(m.help.ShortHelpView([]key.Binding{m.keys.quit}))
	return b.String()
}
