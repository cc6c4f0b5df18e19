// Package tui renders the live token table in the terminal.
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/sangram-sethi/Axiom-pulse/internal/domain"
	"github.com/sangram-sethi/Axiom-pulse/internal/engine"
)

// RefetchFunc re-fetches the snapshot. Wired to the provider in main.
type RefetchFunc func(ctx context.Context) error

// Options configures the TUI model.
type Options struct {
	Engine  *engine.Engine
	Logger  *zap.Logger
	Refetch RefetchFunc
}

// viewMsg wraps an engine update for the bubbletea loop.
type viewMsg engine.ViewUpdate

// refetchDoneMsg reports the outcome of a manual refetch.
type refetchDoneMsg struct{ err error }

// Model is the bubbletea model for the token table.
type Model struct {
	engine  *engine.Engine
	logger  *zap.Logger
	refetch RefetchFunc

	updates <-chan engine.ViewUpdate
	unsub   func()

	current   engine.ViewUpdate
	cursor    int
	searching bool
	search    textinput.Model
	width     int
	height    int
	notice    string
}

// NewModel creates the table model and subscribes it to the engine.
func NewModel(opts Options) *Model {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	ti := textinput.New()
	ti.Placeholder = "name or symbol"
	ti.Prompt = "/"
	ti.CharLimit = 64

	updates, unsub := opts.Engine.Subscribe()

	return &Model{
		engine:  opts.Engine,
		logger:  opts.Logger.Named("tui"),
		refetch: opts.Refetch,
		updates: updates,
		unsub:   unsub,
		current: opts.Engine.Current(),
		search:  ti,
	}
}

// Close releases the engine subscription.
func (m *Model) Close() {
	m.unsub()
}

func (m *Model) waitForUpdate() tea.Cmd {
	return func() tea.Msg {
		u, ok := <-m.updates
		if !ok {
			return tea.Quit()
		}
		return viewMsg(u)
	}
}

func (m *Model) runRefetch() tea.Cmd {
	if m.refetch == nil {
		return nil
	}
	refetch := m.refetch
	return func() tea.Msg {
		return refetchDoneMsg{err: refetch(context.Background())}
	}
}

func (m *Model) Init() tea.Cmd {
	return m.waitForUpdate()
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case viewMsg:
		m.current = engine.ViewUpdate(msg)
		m.clampCursor()
		return m, m.waitForUpdate()

	case refetchDoneMsg:
		if msg.err != nil {
			m.notice = "refetch failed: " + msg.err.Error()
			m.logger.Warn("refetch failed", zap.Error(msg.err))
		} else {
			m.notice = ""
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case tea.KeyMsg:
		if m.searching {
			return m.updateSearching(msg)
		}
		return m.updateBrowsing(msg)
	}

	return m, nil
}

// updateSearching handles keys while the search input is focused. Every
// keystroke re-derives the table, mirroring type-ahead filtering.
func (m *Model) updateSearching(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.searching = false
		m.search.Blur()
		return m, nil
	case tea.KeyEsc:
		m.searching = false
		m.search.Blur()
		m.search.SetValue("")
		m.current = m.engine.SetSearch("")
		m.clampCursor()
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.current = m.engine.SetSearch(m.search.Value())
	m.clampCursor()
	return m, cmd
}

func (m *Model) updateBrowsing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		m.unsub()
		return m, tea.Quit

	case key.Matches(msg, keys.Search):
		m.searching = true
		m.search.Focus()
		return m, textinput.Blink

	case key.Matches(msg, keys.Escape):
		if m.search.Value() != "" {
			m.search.SetValue("")
			m.current = m.engine.SetSearch("")
			m.clampCursor()
		}
		return m, nil

	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case key.Matches(msg, keys.Down):
		if m.cursor < len(m.current.Page.Items)-1 {
			m.cursor++
		}
		return m, nil

	case key.Matches(msg, keys.NextPage):
		if m.current.Page.Page < m.current.Page.TotalPages {
			m.current = m.engine.SetPage(m.current.Page.Page + 1)
			m.clampCursor()
		}
		return m, nil

	case key.Matches(msg, keys.PrevPage):
		if m.current.Page.Page > 1 {
			m.current = m.engine.SetPage(m.current.Page.Page - 1)
			m.clampCursor()
		}
		return m, nil

	case key.Matches(msg, keys.TabNew):
		return m.setTab(domain.TabNew)
	case key.Matches(msg, keys.TabFinal):
		return m.setTab(domain.TabFinal)
	case key.Matches(msg, keys.TabMigr):
		return m.setTab(domain.TabMigrated)
	case key.Matches(msg, keys.TabWatch):
		return m.setTab(domain.TabWatchlist)

	case key.Matches(msg, keys.SortCap):
		return m.toggleSort(domain.SortByMarketCap)
	case key.Matches(msg, keys.SortLiq):
		return m.toggleSort(domain.SortByLiquidity)
	case key.Matches(msg, keys.SortVol):
		return m.toggleSort(domain.SortByVolume24h)
	case key.Matches(msg, keys.SortTxns):
		return m.toggleSort(domain.SortByTxns)
	case key.Matches(msg, keys.SortScore):
		return m.toggleSort(domain.SortByScore)

	case key.Matches(msg, keys.Watch):
		if row, ok := m.selectedRow(); ok {
			m.current = m.engine.ToggleWatchlist(row.Token.ID)
			m.clampCursor()
		}
		return m, nil

	case key.Matches(msg, keys.Live):
		m.current = m.engine.SetLiveUpdates(!m.current.Query.LiveUpdates)
		return m, nil

	case key.Matches(msg, keys.Density):
		next := domain.DensityCompact
		if m.current.Query.Density == domain.DensityCompact {
			next = domain.DensityComfortable
		}
		m.current = m.engine.SetDensity(next)
		return m, nil

	case key.Matches(msg, keys.Refetch):
		m.notice = "refetching…"
		return m, m.runRefetch()
	}

	return m, nil
}

func (m *Model) setTab(tab domain.Tab) (tea.Model, tea.Cmd) {
	m.current = m.engine.SetTab(tab)
	m.cursor = 0
	return m, nil
}

func (m *Model) toggleSort(key domain.SortKey) (tea.Model, tea.Cmd) {
	m.current = m.engine.ToggleSort(key)
	m.cursor = 0
	return m, nil
}

func (m *Model) selectedRow() (domain.Row, bool) {
	items := m.current.Page.Items
	if m.cursor < 0 || m.cursor >= len(items) {
		return domain.Row{}, false
	}
	return items[m.cursor], true
}

func (m *Model) clampCursor() {
	if n := len(m.current.Page.Items); m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}
