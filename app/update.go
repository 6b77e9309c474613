package app

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pgtui/gridq/drivers"
	"github.com/pgtui/gridq/export"
	"github.com/pgtui/gridq/grid"
	"github.com/pgtui/gridq/meta"
	"github.com/pgtui/gridq/query"
	"github.com/pgtui/gridq/rows"
	"github.com/pgtui/gridq/ui/filterbar"
	"github.com/pgtui/gridq/ui/modal"
	"github.com/pgtui/gridq/ui/prompt"
	"github.com/pgtui/gridq/ui/theme"
)

// Messages produced by fetch commands and by the mutation queue. The
// channel-borne ones (errMsg, queueBusyMsg, queueIdleMsg, rowUpdatedMsg,
// rowsInsertedMsg, rowsDeletedMsg, allRowsDeletedMsg) re-arm the listener
// when handled.
type (
	pageFetchedMsg  struct{ page rows.Page }
	countFetchedMsg struct{ total int64 }
	countFailedMsg  struct{ err error }
	refreshTickMsg  struct{ gen int }

	errMsg            struct{ err error }
	queueBusyMsg      struct{}
	queueIdleMsg      struct{}
	rowUpdatedMsg     struct{ record rows.Record }
	rowsInsertedMsg   struct{ inserted []drivers.Row }
	rowsDeletedMsg    struct{ idxs []int }
	allRowsDeletedMsg struct{}

	savedFlashMsg struct{ gen int }

	exportDoneMsg struct {
		count int
		err   error
	}
)

// savedFlash is how long the "saved" indicator stays up once the
// mutation queue drains.
const savedFlash = 1500 * time.Millisecond

// refreshCmd fetches the current page, plus a recount when the total has
// been invalidated.
func (m Model) refreshCmd() tea.Cmd {
	cmds := []tea.Cmd{m.fetchPageCmd()}
	if m.state.TotalRows == grid.TotalRowsUnknown {
		cmds = append(cmds, m.countCmd())
	}
	return tea.Batch(cmds...)
}

func (m Model) fetchPageCmd() tea.Cmd {
	svc := m.svc
	page, size := m.state.Page, m.state.RowsPerPage
	filters, sorts := m.state.Filters, m.state.Sorts
	return func() tea.Msg {
		return pageFetchedMsg{page: svc.FetchPage(context.Background(), page, size, filters, sorts)}
	}
}

func (m Model) countCmd() tea.Cmd {
	svc := m.svc
	filters := m.state.Filters
	return func() tea.Msg {
		total, err := svc.Count(context.Background(), filters)
		if err != nil {
			return countFailedMsg{err: err}
		}
		return countFetchedMsg{total: total}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case pageFetchedMsg:
		cmd := m.dispatch(grid.SetRows{Page: msg.page})
		if m.state.Loaded {
			// The first loaded page unlocks view-state persistence; before
			// that a save would clobber the stored layout with defaults.
			m.saver.Enable()
		}
		return m, cmd

	case countFetchedMsg:
		return m, m.dispatch(grid.SetTotalRows{Total: msg.total})

	case countFailedMsg:
		m.Toast.ShowError(drivers.ErrorMessage(msg.err))
		return m, nil

	case refreshTickMsg:
		if msg.gen != m.debounceGen {
			// Superseded by a newer change.
			return m, nil
		}
		return m, m.refreshCmd()

	case errMsg:
		m.Toast.ShowError(drivers.ErrorMessage(msg.err))
		return m, m.listen()

	case queueBusyMsg:
		m.saving = true
		return m, m.listen()

	case queueIdleMsg:
		m.saving = false
		m.justSaved = true
		m.savedGen++
		gen := m.savedGen
		return m, tea.Batch(m.listen(), tea.Tick(savedFlash, func(time.Time) tea.Msg {
			return savedFlashMsg{gen: gen}
		}))

	case savedFlashMsg:
		if msg.gen == m.savedGen && !m.saving {
			m.justSaved = false
		}
		return m, nil

	case exportDoneMsg:
		if msg.err != nil {
			m.Toast.ShowError("Export failed: " + msg.err.Error())
		} else {
			m.Toast.ShowSuccess("Copied " + strconv.Itoa(msg.count) + " row(s) as CSV")
		}
		return m, nil

	case rowUpdatedMsg:
		cmd := m.dispatch(grid.EditRow{Record: msg.record})
		return m, tea.Batch(cmd, m.listen())

	case rowsInsertedMsg:
		var cmds []tea.Cmd
		for _, data := range msg.inserted {
			cmds = append(cmds, m.dispatch(grid.AddNewRow{Record: rows.Record{Idx: -1, Data: data}}))
		}
		m.Toast.ShowSuccess("Row inserted")
		cmds = append(cmds, m.listen())
		return m, tea.Batch(cmds...)

	case rowsDeletedMsg:
		cmd := m.dispatch(grid.RemoveRows{Idxs: msg.idxs})
		return m, tea.Batch(cmd, m.listen())

	case allRowsDeletedMsg:
		cmd := m.dispatch(grid.RemoveAllRows{})
		return m, tea.Batch(cmd, m.listen())

	case filterbar.MapKeyMsg:
		m.Focus = FocusGrid
		m.Grid.SetFocused(true)
		switch msg.Key {
		case "enter":
			if f := m.FilterBar.Filter(); f != nil {
				return m, m.dispatch(grid.SetFilters{Filters: []query.Filter{*f}})
			}
			return m, m.dispatch(grid.ClearFilters{})
		case "ctrl+c":
			return m, m.dispatch(grid.ClearFilters{})
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

// handleKey routes keys to whichever overlay or surface has focus.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	if m.Toast.Visible() {
		m.Toast, _ = m.Toast.Update(msg)
		return m, nil
	}
	if m.Help.Visible() {
		m.Help, _ = m.Help.Update(msg)
		return m, nil
	}
	if m.Confirm.Visible() {
		m.Confirm, _ = m.Confirm.Update(msg)
		if !m.Confirm.Visible() {
			return m.resolveConfirm()
		}
		return m, nil
	}
	if m.Prompt.Visible() {
		m.Prompt, cmd = m.Prompt.Update(msg)
		if !m.Prompt.Visible() {
			next, resolveCmd := m.resolvePrompt()
			return next, tea.Batch(cmd, resolveCmd)
		}
		return m, cmd
	}
	if m.Focus == FocusFilter {
		m.FilterBar, cmd = m.FilterBar.Update(msg)
		return m, cmd
	}

	return m.handleGridKey(msg)
}

func (m Model) handleGridKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		m.confirm = confirmQuit
		m.Confirm.Show("Quit", "Quit and close the connection?")
		return m, nil

	case "?":
		m.Help.Show()
		return m, nil

	case "T":
		themes := theme.GetAvailableThemes()
		m.themeIndex = (m.themeIndex + 1) % len(themes)
		m.cfg.Theme = themes[m.themeIndex]
		theme.SetTheme(theme.GetThemeByName(m.cfg.Theme))
		if err := m.cfg.Save(); err != nil {
			m.Toast.ShowWarning("Theme changed but config save failed: " + err.Error())
		}
		return m, nil

	case ">":
		if m.state.TotalRows != grid.TotalRowsUnknown {
			lastPage := int((m.state.TotalRows + int64(m.state.RowsPerPage) - 1) / int64(m.state.RowsPerPage))
			if m.state.Page >= lastPage {
				return m, nil
			}
		}
		return m, m.dispatch(grid.SetPage{Page: m.state.Page + 1})

	case "<":
		if m.state.Page <= 1 {
			return m, nil
		}
		return m, m.dispatch(grid.SetPage{Page: m.state.Page - 1})

	case "space", "s":
		if col, ok := m.Grid.CursorColumn(); ok {
			return m, m.dispatch(grid.ToggleSort{Column: col.Key})
		}
		return m, nil

	case "/":
		m.Focus = FocusFilter
		m.Grid.SetFocused(false)
		m.FilterBar.Focus()
		return m, textinput.Blink

	case "C":
		m.FilterBar.Clear()
		return m, m.dispatch(grid.ClearFilters{})

	case "enter", "e":
		return m.startCellEdit()

	case "o":
		if m.table.ReadOnly {
			m.Toast.ShowWarning("Table is read-only")
			return m, nil
		}
		m.promptFor = promptInsertRow
		m.Prompt.Show("Insert row", "JSON object of column values", "{}")
		return m, nil

	case "v":
		if rec, ok := m.Grid.CursorRecord(); ok {
			return m, m.dispatch(grid.SelectRow{Idx: rec.Idx, Selected: !m.state.Selected[rec.Idx]})
		}
		return m, nil

	case "V":
		return m, m.dispatch(grid.SelectAll{})

	case "esc":
		return m, m.dispatch(grid.ClearSelection{})

	case "d":
		return m.startDelete()

	case "D":
		m.confirm = confirmDeleteAll
		m.Confirm.Show("Delete all rows", "Delete ALL rows matching the current filters?")
		return m, nil

	case "y":
		rec, okr := m.Grid.CursorRecord()
		col, okc := m.Grid.CursorColumn()
		if okr && okc {
			if err := export.CopyCell(rec.Data[col.Key]); err != nil {
				m.Toast.ShowError("Copy failed: " + err.Error())
			} else {
				m.Toast.ShowSuccess("Cell copied")
			}
		}
		return m, nil

	case "Y":
		if m.state.AllSelected {
			// All-rows selections re-query instead of exporting the
			// loaded page.
			return m, m.exportAllCmd()
		}
		records := m.state.SelectedRecords()
		if len(records) == 0 {
			records = m.state.Records
		}
		return m, m.copyCSV(records)

	case "E":
		return m, m.copyCSV(m.state.Records)

	case "f":
		if col, ok := m.Grid.CursorColumn(); ok {
			return m, m.dispatch(grid.FreezeColumn{Key: col.Key, Frozen: !col.Frozen})
		}
		return m, nil

	case "+", "=":
		if col, ok := m.Grid.CursorColumn(); ok {
			return m, m.dispatch(grid.ResizeColumn{Key: col.Key, Width: col.Width + 40})
		}
		return m, nil

	case "-":
		if col, ok := m.Grid.CursorColumn(); ok {
			return m, m.dispatch(grid.ResizeColumn{Key: col.Key, Width: col.Width - 40})
		}
		return m, nil

	case "{":
		_, colIdx := m.Grid.Cursor()
		if colIdx > 0 && colIdx < len(m.state.Columns) {
			return m, m.dispatch(grid.MoveColumn{
				Key:       m.state.Columns[colIdx].Key,
				TargetKey: m.state.Columns[colIdx-1].Key,
			})
		}
		return m, nil

	case "}":
		_, colIdx := m.Grid.Cursor()
		if colIdx >= 0 && colIdx < len(m.state.Columns)-1 {
			return m, m.dispatch(grid.MoveColumn{
				Key:       m.state.Columns[colIdx].Key,
				TargetKey: m.state.Columns[colIdx+1].Key,
			})
		}
		return m, nil

	case "u":
		return m, m.refreshCmd()
	}

	var gridCmd tea.Cmd
	m.Grid, gridCmd = m.Grid.Update(msg)
	return m, gridCmd
}

func (m Model) startCellEdit() (tea.Model, tea.Cmd) {
	rec, okr := m.Grid.CursorRecord()
	col, okc := m.Grid.CursorColumn()
	if !okr || !okc {
		return m, nil
	}
	if !col.Editable {
		m.Toast.ShowWarning("Column " + col.Key + " is not editable")
		return m, nil
	}

	contextLine := m.table.Info.Schema + "." + m.table.Info.Name
	if len(col.Enums) > 0 {
		contextLine += "  (" + strings.Join(col.Enums, " | ") + ")"
	}

	m.promptFor = promptEditCell
	m.pendingEdit = cellEdit{record: rec, column: col}
	m.Prompt.Show("Edit "+col.Key, contextLine, m.Grid.CursorCell())
	return m, nil
}

func (m Model) startDelete() (tea.Model, tea.Cmd) {
	if m.state.AllSelected {
		m.confirm = confirmDeleteAll
		m.Confirm.Show("Delete all rows",
			"Delete all "+strconv.FormatInt(m.state.SelectionCount(), 10)+" matching rows?")
		return m, nil
	}

	records := m.state.SelectedRecords()
	if len(records) == 0 {
		rec, ok := m.Grid.CursorRecord()
		if !ok {
			return m, nil
		}
		records = []rows.Record{rec}
	}

	m.confirm = confirmDeleteRows
	m.pendingDelete = records
	m.Confirm.Show("Delete rows", "Delete "+strconv.Itoa(len(records))+" row(s)?")
	return m, nil
}

func (m Model) resolveConfirm() (tea.Model, tea.Cmd) {
	intent := m.confirm
	m.confirm = confirmNone
	if m.Confirm.Result() != modal.ResultYes {
		m.pendingDelete = nil
		return m, nil
	}

	switch intent {
	case confirmQuit:
		return m, m.shutdown()

	case confirmDeleteRows:
		records := m.pendingDelete
		m.pendingDelete = nil
		idxs := make([]int, len(records))
		for i, r := range records {
			idxs[i] = r.Idx
		}
		events := m.events
		if err := m.svc.Delete(records, func() {
			events <- rowsDeletedMsg{idxs: idxs}
		}); err != nil {
			m.Toast.ShowError(err.Error())
		}

	case confirmDeleteAll:
		events := m.events
		if err := m.svc.DeleteAll(m.state.Filters, func() {
			events <- allRowsDeletedMsg{}
		}); err != nil {
			m.Toast.ShowError(err.Error())
		}
	}
	return m, nil
}

func (m Model) resolvePrompt() (tea.Model, tea.Cmd) {
	intent := m.promptFor
	m.promptFor = promptNone
	if m.Prompt.Result() != prompt.ResultSubmit {
		return m, nil
	}

	events := m.events
	switch intent {
	case promptEditCell:
		record := m.pendingEdit.record
		col := m.pendingEdit.column

		data := make(drivers.Row, len(record.Data))
		for k, v := range record.Data {
			data[k] = v
		}
		data[col.Key] = parseCellInput(m.Prompt.Value(), col.Kind)
		record.Data = data

		if err := m.svc.Update(record, col.Key, func(updated rows.Record) {
			events <- rowUpdatedMsg{record: updated}
		}); err != nil {
			m.Toast.ShowError(err.Error())
		}

	case promptInsertRow:
		var rowData map[string]any
		if err := json.Unmarshal([]byte(m.Prompt.Value()), &rowData); err != nil {
			m.Toast.ShowError("Invalid row JSON: " + err.Error())
			return m, nil
		}
		if err := m.svc.Insert([]map[string]any{rowData}, func(inserted []drivers.Row) {
			events <- rowsInsertedMsg{inserted: inserted}
		}); err != nil {
			m.Toast.ShowError(err.Error())
		}
	}
	return m, nil
}

// exportAllCmd exports every row matching the current filters, fetched
// fresh and bounded by the export cap.
func (m Model) exportAllCmd() tea.Cmd {
	svc := m.svc
	filters, sorts := m.state.Filters, m.state.Sorts
	columns := m.state.Columns
	limit := m.cfg.MaxExportRows
	return func() tea.Msg {
		records, err := svc.FetchAll(context.Background(), filters, sorts, limit)
		if err != nil {
			return exportDoneMsg{err: err}
		}
		if err := export.CopyCSV(columns, records, limit); err != nil {
			return exportDoneMsg{err: err}
		}
		return exportDoneMsg{count: len(records)}
	}
}

func (m *Model) copyCSV(records []rows.Record) tea.Cmd {
	if len(records) == 0 {
		m.Toast.ShowWarning("Nothing to export")
		return nil
	}
	if err := export.CopyCSV(m.state.Columns, records, m.cfg.MaxExportRows); err != nil {
		m.Toast.ShowError("Export failed: " + err.Error())
		return nil
	}
	m.Toast.ShowSuccess("Copied " + strconv.Itoa(len(records)) + " row(s) as CSV")
	return nil
}

// parseCellInput interprets the prompt text by column kind: "null" means
// SQL NULL, numbers and booleans become typed values, everything else
// stays a string.
func parseCellInput(text string, kind meta.Kind) any {
	if strings.EqualFold(strings.TrimSpace(text), "null") {
		return nil
	}
	switch kind {
	case meta.KindNumber:
		trimmed := strings.TrimSpace(text)
		if n, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
			return n
		}
		if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return f
		}
	case meta.KindBoolean:
		if b, err := strconv.ParseBool(strings.TrimSpace(text)); err == nil {
			return b
		}
	}
	return text
}
