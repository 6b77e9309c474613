// Package app wires the grid engine to the terminal UI: it owns the grid
// state, dispatches actions, runs fetches as commands, and routes results
// from the mutation queue back into the update loop through an event
// channel.
package app

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pgtui/gridq/config"
	"github.com/pgtui/gridq/drivers"
	"github.com/pgtui/gridq/grid"
	"github.com/pgtui/gridq/logger"
	"github.com/pgtui/gridq/meta"
	"github.com/pgtui/gridq/queue"
	"github.com/pgtui/gridq/rows"
	"github.com/pgtui/gridq/ui/filterbar"
	"github.com/pgtui/gridq/ui/gridview"
	"github.com/pgtui/gridq/ui/help"
	"github.com/pgtui/gridq/ui/modal"
	"github.com/pgtui/gridq/ui/prompt"
	"github.com/pgtui/gridq/ui/sqlpreview"
	"github.com/pgtui/gridq/ui/theme"
	"github.com/pgtui/gridq/ui/toast"
	"github.com/pgtui/gridq/viewstate"
)

const (
	// Sort and filter changes coalesce into one fetch after this quiet
	// period; page changes fetch immediately.
	refreshDebounce = 350 * time.Millisecond

	viewSaveDebounce = time.Second
)

// Focus represents which input surface receives keys
type Focus int

const (
	FocusGrid Focus = iota
	FocusFilter
)

type confirmIntent int

const (
	confirmNone confirmIntent = iota
	confirmDeleteRows
	confirmDeleteAll
	confirmQuit
)

type promptIntent int

const (
	promptNone promptIntent = iota
	promptEditCell
	promptInsertRow
)

// cellEdit is the edit in progress while the prompt is open.
type cellEdit struct {
	record rows.Record
	column grid.Column
}

type Model struct {
	Grid      gridview.Model
	FilterBar filterbar.Model
	Preview   *sqlpreview.Model
	Prompt    prompt.Model
	Confirm   modal.Model
	Help      help.Model
	Toast     toast.Model
	Focus     Focus

	state grid.State

	table *meta.Table
	svc   *rows.Service
	queue *queue.Queue
	saver *viewstate.Saver
	ref   string

	cfg *config.Config

	// events carries results from the mutation queue's worker goroutine
	// and from service error callbacks into the update loop.
	events chan tea.Msg

	confirm       confirmIntent
	promptFor     promptIntent
	pendingEdit   cellEdit
	pendingDelete []rows.Record

	debounceGen int
	savedGen    int
	saving      bool
	justSaved   bool

	themeIndex int

	width  int
	height int
}

// New builds the app model for one table on one connection. connID is the
// saved-connection id used for statement logging, zero for ad-hoc
// connections; ref keys the per-connection view-state file.
func New(base drivers.Executor, connID int64, table *meta.Table, cache *viewstate.Cache, cfg *config.Config, ref string) Model {
	theme.SetTheme(theme.GetThemeByName(cfg.Theme))

	themeIdx := 0
	for i, t := range theme.GetAvailableThemes() {
		if t == cfg.Theme {
			themeIdx = i
			break
		}
	}

	events := make(chan tea.Msg, 64)

	preview := sqlpreview.New()
	exec := newRecordingExecutor(base, preview, connID)

	q := queue.New(queue.WithBusyIdle(
		func() { events <- queueBusyMsg{} },
		func() { events <- queueIdleMsg{} },
	))
	svc := rows.NewService(table, exec, q, func(err error) {
		events <- errMsg{err: err}
	})
	saver := viewstate.NewSaver(cache, viewSaveDebounce)

	restored, err := cache.Load(ref, table.Info.Schema, table.Info.Name)
	if err != nil {
		logger.Error("view state load failed", map[string]any{
			"table": table.Info.Name, "error": err.Error(),
		})
	}

	state := grid.Apply(grid.NewState(cfg.RowsPerPage), grid.InitTable{
		Table:    table,
		Restored: restored,
	})

	columnKeys := make([]string, len(state.Columns))
	for i, c := range state.Columns {
		columnKeys[i] = c.Key
	}
	bar := filterbar.New(columnKeys)
	if len(state.Filters) > 0 {
		bar.SetFilter(&state.Filters[0])
	}

	gv := gridview.New()
	gv.SetState(state)

	return Model{
		Grid:      gv,
		FilterBar: bar,
		Preview:   preview,
		Prompt:    prompt.New(),
		Confirm:   modal.New(),
		Help:      help.New(),
		Toast:     toast.New(),
		Focus:     FocusGrid,

		state:      state,
		table:      table,
		svc:        svc,
		queue:      q,
		saver:      saver,
		ref:        ref,
		cfg:        cfg,
		events:     events,
		themeIndex: themeIdx,
	}
}

// Init starts the event listener and the initial fetch.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.listen(), m.refreshCmd())
}

// listen delivers the next queue/service event as a message. Handlers of
// channel-borne messages must re-issue it.
func (m Model) listen() tea.Cmd {
	return func() tea.Msg { return <-m.events }
}

// dispatch applies one action to the grid state, schedules a view-state
// save when the action changes persisted layout, and turns the resulting
// refresh mode into fetch commands.
func (m *Model) dispatch(a grid.Action) tea.Cmd {
	m.state = grid.Apply(m.state, a)
	m.Grid.SetState(m.state)
	m.scheduleViewSave(a)

	switch m.state.Refresh {
	case grid.RefreshImmediate:
		m.state.Refresh = grid.RefreshNone
		return m.refreshCmd()
	case grid.RefreshDebounced:
		m.state.Refresh = grid.RefreshNone
		m.debounceGen++
		gen := m.debounceGen
		return tea.Tick(refreshDebounce, func(time.Time) tea.Msg {
			return refreshTickMsg{gen: gen}
		})
	}
	return nil
}

func (m *Model) scheduleViewSave(a grid.Action) {
	switch a.(type) {
	case grid.ResizeColumn, grid.MoveColumn, grid.FreezeColumn,
		grid.SetSorts, grid.ToggleSort,
		grid.SetFilters, grid.AddFilter, grid.RemoveFilter, grid.ClearFilters:
		m.saver.Schedule(m.ref, m.table.Info.Schema, m.table.Info.Name, m.state.Snapshot())
	}
}

// shutdown flushes pending view-state writes and drains the mutation
// queue before quitting.
func (m Model) shutdown() tea.Cmd {
	m.saver.Flush()
	m.queue.Close()
	return tea.Quit
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height

	const (
		headerHeight  = 1
		filterHeight  = 3
		previewHeight = 6
	)
	m.Grid.SetSize(width, max(3, height-headerHeight-filterHeight-previewHeight))
	m.FilterBar.SetWidth(width)
	m.Preview.SetSize(width, previewHeight)
	m.Prompt.SetSize(width, height)
	m.Confirm.SetSize(width, height)
	m.Help.SetSize(width, height)
	m.Toast.SetSize(width, height)
}
