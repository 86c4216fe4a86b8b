package tui

import (
	"context"
	"slices"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/kv-base-hack/coin-tracker/internal/config"
	"github.com/kv-base-hack/coin-tracker/internal/dashboard"
	"github.com/kv-base-hack/coin-tracker/internal/plexus"
	"go.uber.org/zap"
)

const (
	// world units covered by one terminal cell
	cellWidth  = 8
	cellHeight = 16

	defaultCols = 80
	defaultRows = 24
	DefaultFPS  = 30
)

type frameMsg time.Time

type Options struct {
	Log            *zap.SugaredLogger
	Fetcher        dashboard.Fetcher
	Dashboard      config.Dashboard
	Particles      int
	FPS            int
	RequestTimeout time.Duration
	// NewChart overrides the chart constructor, mostly for tests.
	NewChart dashboard.ChartFactory
}

// Model is the bubbletea program: the dashboard controller in front of the plexus background.
type Model struct {
	log   *zap.SugaredLogger
	ctrl  *dashboard.Controller
	field *plexus.Field
	scene *plexus.Scene
	frame time.Duration

	keys    keyMap
	help    help.Model
	filter  textinput.Model
	spinner spinner.Model

	width, height int
}

func New(opts Options) *Model {
	cfg := opts.Dashboard
	log := opts.Log.With("component", "tui")
	state := dashboard.NewState(cfg.Currency, cfg.ChartDays, cfg.Currencies, cfg.ChartPeriods)
	ctrl := dashboard.NewController(opts.Log, state, dashboard.NewDocument(), opts.Fetcher, opts.NewChart, opts.RequestTimeout)

	fps := opts.FPS
	if fps <= 0 {
		fps = DefaultFPS
	}
	field := plexus.New(defaultCols*cellWidth, defaultRows*cellHeight, plexus.WithCount(opts.Particles))

	ti := textinput.New()
	ti.Placeholder = filterPlaceholder
	ti.Prompt = "/ "
	ti.CharLimit = 64
	ti.Width = 40
	ti.Cursor.Style = lipgloss.NewStyle().Foreground(colorAccent)

	m := &Model{
		log:     log,
		ctrl:    ctrl,
		field:   field,
		scene:   plexus.NewScene(field, defaultCols, defaultRows),
		frame:   time.Second / time.Duration(fps),
		keys:    defaultKeyMap(),
		help:    help.New(),
		filter:  ti,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(lipgloss.NewStyle().Foreground(colorAccent))),
	}
	m.syncFilter()
	return m
}

// Run starts the program and blocks until the user quits or ctx is done.
func Run(ctx context.Context, opts Options) error {
	p := tea.NewProgram(New(opts), tea.WithAltScreen(), tea.WithMouseAllMotion(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

func (m *Model) Init() tea.Cmd {
	m.log.Debugw("start dashboard", "currency", m.ctrl.State().Currency, "frame", m.frame)
	return tea.Batch(m.ctrl.Init(), m.tick(), m.spinner.Tick)
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(m.frame, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil
	case tea.MouseMsg:
		if m.width > 0 && m.height > 0 {
			x := float64(msg.X)/float64(m.width)*2 - 1
			y := -float64(msg.Y)/float64(m.height)*2 + 1
			m.field.SetMouse(x, y)
		}
		return m, nil
	case frameMsg:
		m.field.Step()
		m.ctrl.Document().Replace(dashboard.IDBackgroundCanvas, m.scene.Render())
		return m, m.tick()
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	}
	return m, m.ctrl.Update(msg)
}

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	m.field.Resize(float64(width*cellWidth), float64(height*cellHeight))
	m.scene.Resize(width, height)
	m.help.Width = width
	m.ctrl.Resize(max(width-modalChrome, 20))
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if m.filter.Focused() {
		return m.handleFilterKey(msg)
	}
	if m.ctrl.Document().ScrollLocked {
		return m.handleModalKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case key.Matches(msg, m.keys.Filter):
		cmd := m.filter.Focus()
		m.syncFilter()
		return cmd
	case key.Matches(msg, m.keys.NextCurrency):
		return m.cycleCurrency(1)
	case key.Matches(msg, m.keys.PrevCurrency):
		return m.cycleCurrency(-1)
	case key.Matches(msg, m.keys.PrevPage):
		return m.ctrl.PaginationClicked(dashboard.ActionPrev)
	case key.Matches(msg, m.keys.NextPage):
		return m.ctrl.PaginationClicked(dashboard.ActionNext)
	case key.Matches(msg, m.keys.Up):
		m.ctrl.MoveCursor(-1)
	case key.Matches(msg, m.keys.Down):
		m.ctrl.MoveCursor(1)
	case key.Matches(msg, m.keys.Open):
		return m.ctrl.SelectFocused()
	case key.Matches(msg, m.keys.Period):
		return m.selectPeriod(msg.String())
	case key.Matches(msg, m.keys.Tracker):
		return m.ctrl.ScrollToTracker()
	}
	return nil
}

func (m *Model) handleFilterKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc, tea.KeyEnter:
		m.filter.Blur()
		m.syncFilter()
		return nil
	case tea.KeyCtrlC:
		return tea.Quit
	}
	before := m.filter.Value()
	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.syncFilter()
	if value := m.filter.Value(); value != before {
		return tea.Batch(cmd, m.ctrl.FilterChanged(value))
	}
	return cmd
}

func (m *Model) handleModalKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case key.Matches(msg, m.keys.Back):
		return m.ctrl.ModalDismissed()
	case key.Matches(msg, m.keys.NextCurrency):
		return m.cycleCurrency(1)
	case key.Matches(msg, m.keys.PrevCurrency):
		return m.cycleCurrency(-1)
	case key.Matches(msg, m.keys.Period):
		return m.selectPeriod(msg.String())
	}
	return nil
}

// syncFilter renders the input into its document region.
func (m *Model) syncFilter() {
	m.ctrl.Document().Replace(dashboard.IDFilterInput, m.filter.View())
}

func (m *Model) cycleCurrency(step int) tea.Cmd {
	s := m.ctrl.State()
	n := len(s.Currencies)
	if n == 0 {
		return nil
	}
	i := slices.Index(s.Currencies, s.Currency)
	next := s.Currencies[((i+step)%n+n)%n]
	m.log.Debugw("switch currency", "from", s.Currency, "to", next)
	return m.ctrl.CurrencyChanged(next)
}

// selectPeriod maps the digit keys onto the configured chart periods.
func (m *Model) selectPeriod(k string) tea.Cmd {
	periods := m.ctrl.State().ChartPeriods
	if len(k) != 1 {
		return nil
	}
	i := int(k[0] - '1')
	if i < 0 || i >= len(periods) {
		return nil
	}
	return m.ctrl.ChartPeriodChanged(periods[i])
}
