// Package tui implements the interactive notification tray.
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/stocktray/stocktray/internal/domain"
	"github.com/stocktray/stocktray/internal/logging"
	"github.com/stocktray/stocktray/internal/store"
)

const (
	defaultViewportWidth  = 80
	defaultViewportHeight = 20
	headerFooterLines     = 4
)

// Tray defines the store surface the TUI depends on.
type Tray interface {
	Notifications() []domain.Notification
	UnreadCount() int
	Phase() store.Phase
	LoadSnapshot(ctx context.Context, page int, filter domain.Filter) (bool, error)
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context) error
}

// trayChangedMsg signals that the store content changed outside the
// TUI loop (a pushed notification or a health transition).
type trayChangedMsg struct{}

// snapshotDoneMsg reports a refresh or load-more outcome.
type snapshotDoneMsg struct {
	page int
	more bool
	err  error
}

// markDoneMsg reports a mark-read outcome.
type markDoneMsg struct {
	err error
}

// Model is the Bubble Tea model for the tray.
type Model struct {
	tray   Tray
	logger logging.Logger
	keys   keyMap

	viewport viewport.Model
	spinner  spinner.Model
	width    int
	height   int
	cursor   int

	rows     []domain.Notification
	loading  bool
	nextPage int
	hasMore  bool
	lastErr  error
}

// NewModel creates the tray model around a running store.
func NewModel(tray Tray, logger logging.Logger) *Model {
	if tray == nil {
		panic("tui.NewModel: tray dependency cannot be nil")
	}
	if logger == nil {
		logger = logging.Noop()
	}
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return &Model{
		tray:     tray,
		logger:   logger,
		keys:     defaultKeyMap(),
		viewport: viewport.New(defaultViewportWidth, defaultViewportHeight),
		spinner:  sp,
		width:    defaultViewportWidth,
		height:   defaultViewportHeight,
		rows:     tray.Notifications(),
		nextPage: 2,
		hasMore:  true,
	}
}

// ChangeListener returns a callback suitable for the store's change
// hook. The returned function is safe to call from any goroutine.
func ChangeListener(program *tea.Program) func() {
	return func() {
		program.Send(trayChangedMsg{})
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport = viewport.New(msg.Width, max(msg.Height-headerFooterLines, 1))
		m.syncViewport()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case trayChangedMsg:
		m.reload()
		return m, nil

	case snapshotDoneMsg:
		m.loading = false
		m.lastErr = msg.err
		if msg.err == nil {
			m.hasMore = msg.more
			m.nextPage = msg.page + 1
		}
		m.reload()
		return m, nil

	case markDoneMsg:
		m.lastErr = msg.err
		m.reload()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)

	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)

	case key.Matches(msg, m.keys.MarkRead):
		if n, ok := m.selected(); ok && !n.Read {
			return m, m.markReadCmd(n.ID)
		}

	case key.Matches(msg, m.keys.MarkAllRead):
		if m.tray.UnreadCount() > 0 {
			return m, m.markAllReadCmd()
		}

	case key.Matches(msg, m.keys.Refresh):
		if !m.loading {
			m.loading = true
			return m, m.snapshotCmd(1)
		}

	case key.Matches(msg, m.keys.More):
		if !m.loading && m.hasMore {
			m.loading = true
			return m, m.snapshotCmd(m.nextPage)
		}
	}
	return m, nil
}

func (m *Model) snapshotCmd(page int) tea.Cmd {
	return func() tea.Msg {
		more, err := m.tray.LoadSnapshot(context.Background(), page, domain.FilterAll)
		return snapshotDoneMsg{page: page, more: more, err: err}
	}
}

func (m *Model) markReadCmd(id string) tea.Cmd {
	return func() tea.Msg {
		return markDoneMsg{err: m.tray.MarkRead(context.Background(), id)}
	}
}

func (m *Model) markAllReadCmd() tea.Cmd {
	return func() tea.Msg {
		return markDoneMsg{err: m.tray.MarkAllRead(context.Background())}
	}
}

// reload pulls the current list from the store and re-renders.
func (m *Model) reload() {
	m.rows = m.tray.Notifications()
	if m.cursor >= len(m.rows) {
		m.cursor = max(len(m.rows)-1, 0)
	}
	m.syncViewport()
}

func (m *Model) moveCursor(delta int) {
	m.cursor += delta
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.cursor >= len(m.rows) {
		m.cursor = max(len(m.rows)-1, 0)
	}
	m.syncViewport()
}

func (m *Model) selected() (domain.Notification, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return domain.Notification{}, false
	}
	return m.rows[m.cursor], true
}

func (m *Model) syncViewport() {
	m.viewport.SetContent(m.renderRows())
	m.scrollToCursor()
}

func (m *Model) scrollToCursor() {
	top := m.viewport.YOffset
	bottom := top + m.viewport.Height - 1
	if m.cursor < top {
		m.viewport.SetYOffset(m.cursor)
	} else if m.cursor > bottom {
		m.viewport.SetYOffset(m.cursor - m.viewport.Height + 1)
	}
}
