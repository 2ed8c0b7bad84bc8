package tui

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"io"
	"strings"
	"time"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/atotto/clipboard"
	"github.com/charmbracelet/log"
	"github.com/hylla/tavla/internal/app"
	"github.com/hylla/tavla/internal/domain"
)

// Service represents service data used by this package.
type Service interface {
	LoadBoard(context.Context) ([]domain.Task, error)
	Tasks() []domain.Task
	Changes() <-chan struct{}
	ListContacts(context.Context) ([]domain.Contact, error)
	OpenTask(context.Context, string) (domain.Task, error)
	MoveTask(context.Context, string, domain.Status) (domain.Task, error)
	SaveTask(context.Context, app.EditTaskInput) (domain.Task, error)
	CreateTask(context.Context, app.CreateTaskInput) (domain.Task, error)
	DeleteTask(context.Context, string) error
	AddSubtask(context.Context, string, string) (domain.Task, error)
	EditSubtask(context.Context, string, int, string) (domain.Task, error)
	RemoveSubtask(context.Context, string, int) (domain.Task, error)
	ToggleSubtask(context.Context, string, int, bool) (domain.Task, error)
}

// inputMode describes input mode values.
type inputMode int

// modeNone and related constants define package defaults.
const (
	modeNone inputMode = iota
	modeDetail
	modeEditTask
	modeAddTask
	modeSubtaskInput
	modeConfirmDelete
)

// layout constants used by rendering and mouse hit testing.
const (
	// header row plus spacer
	boardTop = 2
	// border (2) + padding (2) + margin-right (1)
	columnOverhead = 5
	// column border plus title row above the first card
	columnChrome = 2
)

// Model represents model data used by this package.
type Model struct {
	svc      Service
	logger   app.Logger
	copyText func(string) error

	ready  bool
	width  int
	height int
	err    error
	status string

	help        help.Model
	keys        keyMap
	board       BoardConfig
	displayName string
	markdown    *markdownRenderer

	tasks    map[string]domain.Task
	contacts []domain.Contact
	layout   *app.Layout

	selectedColumn int
	selectedTask   int
	pendingFocusID string

	drag      app.Drag
	mouseDrag bool

	mode           inputMode
	detail         domain.Task
	detailSubtask  int
	subtaskInput   textinput.Model
	subtaskEditIdx int
	editor         *taskEditor
	confirmID      string
	confirmBack    inputMode
}

// loadedMsg carries message data through update handling.
type loadedMsg struct {
	tasks       []domain.Task
	contacts    []domain.Contact
	contactsErr error
	err         error
}

// boardChangedMsg signals that the service store changed.
type boardChangedMsg struct{}

// detailMsg carries a fetched or mutated task for the detail modal.
type detailMsg struct {
	task   domain.Task
	open   bool
	edit   bool
	status string
	err    error
}

// moveResultMsg reports the outcome of one optimistic card move.
type moveResultMsg struct {
	move app.Move
	task domain.Task
	err  error
}

// savedMsg reports the outcome of the task form.
type savedMsg struct {
	task    domain.Task
	created bool
	err     error
}

// actionMsg carries message data through update handling.
type actionMsg struct {
	status      string
	closeDetail bool
	err         error
}

// NewModel constructs a new value for this package.
func NewModel(svc Service, opts ...Option) Model {
	h := help.New()
	h.ShowAll = false
	m := Model{
		svc:            svc,
		logger:         log.New(io.Discard),
		copyText:       clipboard.WriteAll,
		status:         "loading...",
		help:           h,
		keys:           newKeyMap(),
		board:          DefaultBoardConfig(),
		markdown:       &markdownRenderer{},
		tasks:          map[string]domain.Task{},
		layout:         app.NewLayout(nil),
		subtaskInput:   newModalInput("", "Add new subtask", "", 120),
		subtaskEditIdx: -1,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&m)
		}
	}
	return m
}

// Init handles init.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadData, waitForBoardChange(m.svc.Changes()))
}

// waitForBoardChange blocks on the store change channel and reports one signal.
func waitForBoardChange(changes <-chan struct{}) tea.Cmd {
	if changes == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-changes; !ok {
			return nil
		}
		return boardChangedMsg{}
	}
}

// Update updates state for the requested operation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.logger.Error("board load failed", "err", msg.err)
			return m, nil
		}
		m.err = nil
		m.contacts = msg.contacts
		m.syncFromStore()
		switch {
		case msg.contactsErr != nil:
			m.logger.Warn("contacts unavailable", "err", msg.contactsErr)
			m.status = "contacts unavailable"
		case m.status == "" || m.status == "loading..." || m.status == "reloading...":
			m.status = "ready"
		}
		return m, nil

	case boardChangedMsg:
		m.syncFromStore()
		return m, waitForBoardChange(m.svc.Changes())

	case detailMsg:
		return m.handleDetailMsg(msg)

	case moveResultMsg:
		if msg.err != nil {
			m.logger.Error("card move failed", "task_id", msg.move.TaskID, "to", msg.move.To, "err", msg.err)
			if errors.Is(msg.err, app.ErrNotFound) {
				m.syncFromStore()
				m.status = "task no longer exists"
				return m, nil
			}
			m.layout.Revert(msg.move)
			m.focusTaskByID(msg.move.TaskID)
			m.status = "move failed: " + msg.err.Error()
			return m, nil
		}
		m.pendingFocusID = msg.task.ID
		m.syncFromStore()
		m.status = fmt.Sprintf("moved %q to %s", msg.task.Title, msg.move.To.Name())
		return m, nil

	case savedMsg:
		return m.handleSavedMsg(msg)

	case actionMsg:
		if msg.err != nil {
			if errors.Is(msg.err, app.ErrNotFound) {
				m.closeDetail()
				m.syncFromStore()
				m.status = "task no longer exists"
				return m, nil
			}
			m.logger.Error("board action failed", "err", msg.err)
			m.status = "error: " + msg.err.Error()
			return m, nil
		}
		if msg.closeDetail {
			m.closeDetail()
		}
		m.syncFromStore()
		if msg.status != "" {
			m.status = msg.status
		}
		return m, nil

	case tea.KeyPressMsg:
		if m.err != nil {
			switch {
			case key.Matches(msg, m.keys.quit):
				return m, tea.Quit
			case key.Matches(msg, m.keys.reload):
				m.err = nil
				m.status = "reloading..."
				return m, m.loadData
			}
			return m, nil
		}
		if m.help.ShowAll {
			if key.Matches(msg, m.keys.toggleHelp) || msg.String() == "esc" {
				m.help.ShowAll = false
			}
			return m, nil
		}
		if m.mode != modeNone {
			return m.handleInputModeKey(msg)
		}
		if m.drag.Active() {
			return m.handleDragKey(msg)
		}
		return m.handleNormalModeKey(msg)

	case tea.MouseWheelMsg:
		return m.handleMouseWheel(msg)

	case tea.MouseClickMsg:
		return m.handleMouseClick(msg)

	case tea.MouseMotionMsg:
		return m.handleMouseMotion(msg)

	case tea.MouseReleaseMsg:
		return m.handleMouseRelease(msg)

	default:
		return m, nil
	}
}

// loadData loads required data for the current operation.
func (m Model) loadData() tea.Msg {
	ctx := context.Background()
	tasks, err := m.svc.LoadBoard(ctx)
	if err != nil {
		return loadedMsg{err: err}
	}
	contacts, contactsErr := m.svc.ListContacts(ctx)
	return loadedMsg{tasks: tasks, contacts: contacts, contactsErr: contactsErr}
}

// syncFromStore re-derives the board from the service store.
func (m *Model) syncFromStore() {
	focusID := m.pendingFocusID
	if focusID == "" {
		focusID = m.selectedTaskID()
	}
	tasks := m.svc.Tasks()
	m.tasks = make(map[string]domain.Task, len(tasks))
	for _, task := range tasks {
		m.tasks[task.ID] = task
	}
	m.layout = app.NewLayout(tasks)
	if m.drag.Active() {
		if _, ok := m.tasks[m.drag.TaskID()]; !ok {
			m.drag.Cancel()
			m.mouseDrag = false
		}
	}
	if m.mode == modeDetail || m.mode == modeSubtaskInput {
		if task, ok := m.tasks[m.detail.ID]; ok {
			m.detail = task
			m.detailSubtask = clamp(m.detailSubtask, 0, len(task.Subtasks)-1)
		}
	}
	m.pendingFocusID = ""
	if focusID != "" && m.focusTaskByID(focusID) {
		return
	}
	m.clampSelections()
}

// focusTaskByID moves the selection to the card with id.
func (m *Model) focusTaskByID(id string) bool {
	status, idx, ok := m.layout.ColumnOf(id)
	if !ok {
		return false
	}
	m.selectedColumn = status.Index()
	m.selectedTask = idx
	return true
}

// clampSelections clamps selections.
func (m *Model) clampSelections() {
	m.selectedColumn = clamp(m.selectedColumn, 0, len(domain.Statuses())-1)
	m.selectedTask = clamp(m.selectedTask, 0, m.layout.Len(m.currentStatus())-1)
}

// currentStatus returns the status of the focused column.
func (m Model) currentStatus() domain.Status {
	statuses := domain.Statuses()
	return statuses[clamp(m.selectedColumn, 0, len(statuses)-1)]
}

// selectedTaskID returns the focused card id, or "" in an empty column.
func (m Model) selectedTaskID() string {
	ids := m.layout.Column(m.currentStatus())
	if len(ids) == 0 {
		return ""
	}
	return ids[clamp(m.selectedTask, 0, len(ids)-1)]
}

// selectedTaskValue returns the focused task.
func (m Model) selectedTaskValue() (domain.Task, bool) {
	task, ok := m.tasks[m.selectedTaskID()]
	return task, ok
}

// handleNormalModeKey handles normal mode key.
func (m Model) handleNormalModeKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.reload):
		m.status = "reloading..."
		return m, m.loadData
	case key.Matches(msg, m.keys.toggleHelp):
		m.help.ShowAll = true
		return m, nil
	case key.Matches(msg, m.keys.moveLeft):
		m.selectedColumn = clamp(m.selectedColumn-1, 0, len(domain.Statuses())-1)
		m.clampSelections()
		return m, nil
	case key.Matches(msg, m.keys.moveRight):
		m.selectedColumn = clamp(m.selectedColumn+1, 0, len(domain.Statuses())-1)
		m.clampSelections()
		return m, nil
	case key.Matches(msg, m.keys.moveUp):
		m.selectedTask = clamp(m.selectedTask-1, 0, m.layout.Len(m.currentStatus())-1)
		return m, nil
	case key.Matches(msg, m.keys.moveDown):
		m.selectedTask = clamp(m.selectedTask+1, 0, m.layout.Len(m.currentStatus())-1)
		return m, nil
	case key.Matches(msg, m.keys.openTask):
		if id := m.selectedTaskID(); id != "" {
			m.status = "opening..."
			return m, m.openTaskCmd(id, false)
		}
		return m, nil
	case key.Matches(msg, m.keys.editTask):
		if id := m.selectedTaskID(); id != "" {
			m.status = "opening..."
			return m, m.openTaskCmd(id, true)
		}
		return m, nil
	case key.Matches(msg, m.keys.addTask):
		cmd := m.startCreate(m.currentStatus())
		return m, cmd
	case key.Matches(msg, m.keys.deleteTask):
		if id := m.selectedTaskID(); id != "" {
			m.startConfirmDelete(id)
		}
		return m, nil
	case key.Matches(msg, m.keys.pickUp):
		return m.startDrag(m.selectedTaskID(), false)
	case key.Matches(msg, m.keys.taskLeft):
		return m.moveSelectedTask(-1)
	case key.Matches(msg, m.keys.taskRight):
		return m.moveSelectedTask(1)
	}
	return m, nil
}

// startDrag picks up the card with id.
func (m Model) startDrag(id string, mouse bool) (tea.Model, tea.Cmd) {
	if id == "" {
		return m, nil
	}
	if err := m.drag.Start(m.layout, id); err != nil {
		m.status = "cannot pick up card: " + err.Error()
		return m, nil
	}
	m.mouseDrag = mouse
	m.status = fmt.Sprintf("dragging %q • drop on a column", m.tasks[id].Title)
	return m, nil
}

// handleDragKey handles keys while a card is picked up.
func (m Model) handleDragKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.String() == "ctrl+c":
		return m, tea.Quit
	case key.Matches(msg, m.keys.cancel):
		m.drag.Cancel()
		m.mouseDrag = false
		m.status = "drag cancelled"
		return m, nil
	case key.Matches(msg, m.keys.moveLeft), key.Matches(msg, m.keys.taskLeft):
		m.drag.Hover(m.drag.Hovering().Shift(-1))
		m.selectedColumn = m.drag.Hovering().Index()
		return m, nil
	case key.Matches(msg, m.keys.moveRight), key.Matches(msg, m.keys.taskRight):
		m.drag.Hover(m.drag.Hovering().Shift(1))
		m.selectedColumn = m.drag.Hovering().Index()
		return m, nil
	case key.Matches(msg, m.keys.pickUp), key.Matches(msg, m.keys.drop):
		return m.dropOn(m.drag.Hovering())
	}
	return m, nil
}

// dropOn ends the active drag on target and starts the optimistic move.
func (m Model) dropOn(target domain.Status) (tea.Model, tea.Cmd) {
	m.mouseDrag = false
	move, err := m.drag.Drop(target)
	if err != nil {
		m.status = "drop failed: " + err.Error()
		return m, nil
	}
	if !move.Changed() {
		m.focusTaskByID(move.TaskID)
		m.status = "card left in place"
		return m, nil
	}
	m.layout.Apply(move)
	m.focusTaskByID(move.TaskID)
	m.status = "moving..."
	return m, m.moveCmd(move)
}

// moveSelectedTask moves the focused card one column over.
func (m Model) moveSelectedTask(delta int) (tea.Model, tea.Cmd) {
	id := m.selectedTaskID()
	if id == "" {
		return m, nil
	}
	from := m.currentStatus()
	to := from.Shift(delta)
	if to == from {
		return m, nil
	}
	if err := m.drag.Start(m.layout, id); err != nil {
		m.status = "cannot move card: " + err.Error()
		return m, nil
	}
	return m.dropOn(to)
}

// moveCmd persists one move.
func (m Model) moveCmd(move app.Move) tea.Cmd {
	return func() tea.Msg {
		task, err := m.svc.MoveTask(context.Background(), move.TaskID, move.To)
		return moveResultMsg{move: move, task: task, err: err}
	}
}

// openTaskCmd fetches the authoritative task before the detail or edit view opens.
func (m Model) openTaskCmd(id string, edit bool) tea.Cmd {
	return func() tea.Msg {
		task, err := m.svc.OpenTask(context.Background(), id)
		return detailMsg{task: task, open: true, edit: edit, err: err}
	}
}

// startCreate opens the add form for status.
func (m *Model) startCreate(status domain.Status) tea.Cmd {
	m.editor = newCreateEditor(status, m.contacts)
	m.mode = modeAddTask
	m.status = "add task"
	return m.editor.focusField(0)
}

// startEdit opens the edit form over the held detail entity.
func (m *Model) startEdit(task domain.Task) tea.Cmd {
	m.detail = task
	m.editor = newEditEditor(task, m.contacts)
	m.mode = modeEditTask
	m.status = "edit task"
	return m.editor.focusField(0)
}

// startConfirmDelete asks before deleting id.
func (m *Model) startConfirmDelete(id string) {
	m.confirmBack = m.mode
	m.confirmID = id
	m.mode = modeConfirmDelete
	m.status = "confirm delete"
}

// closeDetail leaves every modal and forgets the held entity.
func (m *Model) closeDetail() {
	m.mode = modeNone
	m.detail = domain.Task{}
	m.detailSubtask = 0
	m.editor = nil
	m.confirmID = ""
	m.subtaskEditIdx = -1
	m.subtaskInput.Blur()
	m.subtaskInput.SetValue("")
}

// handleDetailMsg applies a fetched or mutated task.
func (m Model) handleDetailMsg(msg detailMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		if errors.Is(msg.err, app.ErrNotFound) {
			m.closeDetail()
			m.syncFromStore()
			m.status = "task no longer exists"
			return m, nil
		}
		m.logger.Error("task action failed", "task_id", msg.task.ID, "err", msg.err)
		m.status = "error: " + msg.err.Error()
		return m, nil
	}
	m.syncFromStore()
	if msg.edit {
		cmd := m.startEdit(msg.task)
		return m, cmd
	}
	if !msg.open && m.mode != modeDetail {
		return m, nil
	}
	m.mode = modeDetail
	m.detail = msg.task
	m.detailSubtask = clamp(m.detailSubtask, 0, len(msg.task.Subtasks)-1)
	m.status = msg.status
	if m.status == "" {
		m.status = "task details"
	}
	return m, nil
}

// handleSavedMsg applies the result of the task form.
func (m Model) handleSavedMsg(msg savedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		if m.editor != nil && m.editor.applyError(msg.err) {
			m.status = "fix the highlighted field"
			return m, nil
		}
		if errors.Is(msg.err, app.ErrNotFound) {
			m.closeDetail()
			m.syncFromStore()
			m.status = "task no longer exists"
			return m, nil
		}
		m.logger.Error("save failed", "err", msg.err)
		m.status = "save failed: " + msg.err.Error()
		return m, nil
	}
	m.editor = nil
	m.pendingFocusID = msg.task.ID
	m.syncFromStore()
	if msg.created {
		m.mode = modeNone
		m.status = fmt.Sprintf("created %q in %s", msg.task.Title, msg.task.Status.Name())
		return m, nil
	}
	m.detail = msg.task
	m.detailSubtask = clamp(m.detailSubtask, 0, len(msg.task.Subtasks)-1)
	m.mode = modeDetail
	m.status = "saved"
	return m, nil
}

// handleInputModeKey handles input mode key.
func (m Model) handleInputModeKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case modeDetail:
		return m.handleDetailKey(msg)
	case modeSubtaskInput:
		return m.handleSubtaskInputKey(msg)
	case modeEditTask, modeAddTask:
		return m.handleEditorKey(msg)
	case modeConfirmDelete:
		switch msg.String() {
		case "y", "enter":
			id := m.confirmID
			m.mode = m.confirmBack
			m.confirmID = ""
			m.status = "deleting..."
			return m, m.deleteCmd(id)
		case "n", "esc":
			m.mode = m.confirmBack
			m.confirmID = ""
			m.status = "delete cancelled"
		}
		return m, nil
	}
	return m, nil
}

// handleEditorKey routes keys to the task form.
func (m Model) handleEditorKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	if m.editor == nil {
		m.mode = modeNone
		return m, nil
	}
	if m.editor.selector != nil {
		switch msg.String() {
		case "esc":
			m.editor.closeSelector(false)
			return m, nil
		case "enter":
			m.editor.closeSelector(true)
			return m, nil
		}
		_, cmd := m.editor.selector.update(msg)
		return m, cmd
	}
	switch {
	case key.Matches(msg, m.keys.cancel):
		creating := m.editor.creating
		m.editor = nil
		if creating {
			m.mode = modeNone
			m.status = "add cancelled"
		} else {
			m.mode = modeDetail
			m.status = "edit discarded"
		}
		return m, nil
	case key.Matches(msg, m.keys.save):
		m.status = "saving..."
		return m, m.saveCmd(m.editor)
	case key.Matches(msg, m.keys.nextField):
		return m, m.editor.focusField(m.editor.focus + 1)
	case key.Matches(msg, m.keys.prevField):
		return m, m.editor.focusField(m.editor.focus - 1)
	}
	return m, m.editor.update(msg)
}

// saveCmd submits the task form.
func (m Model) saveCmd(editor *taskEditor) tea.Cmd {
	if editor.creating {
		in := editor.createInput()
		return func() tea.Msg {
			task, err := m.svc.CreateTask(context.Background(), in)
			return savedMsg{task: task, created: true, err: err}
		}
	}
	in := editor.editInput()
	return func() tea.Msg {
		task, err := m.svc.SaveTask(context.Background(), in)
		return savedMsg{task: task, err: err}
	}
}

// deleteCmd removes one task.
func (m Model) deleteCmd(id string) tea.Cmd {
	title := m.tasks[id].Title
	return func() tea.Msg {
		if err := m.svc.DeleteTask(context.Background(), id); err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{status: fmt.Sprintf("deleted %q", title), closeDetail: true}
	}
}

// handleMouseWheel handles mouse wheel.
func (m Model) handleMouseWheel(msg tea.MouseWheelMsg) (tea.Model, tea.Cmd) {
	if m.help.ShowAll || m.mode != modeNone {
		return m, nil
	}
	switch msg.Button {
	case tea.MouseWheelUp:
		m.selectedTask = clamp(m.selectedTask-1, 0, m.layout.Len(m.currentStatus())-1)
	case tea.MouseWheelDown:
		m.selectedTask = clamp(m.selectedTask+1, 0, m.layout.Len(m.currentStatus())-1)
	}
	return m, nil
}

// handleMouseClick selects the card under the pointer and picks it up.
func (m Model) handleMouseClick(msg tea.MouseClickMsg) (tea.Model, tea.Cmd) {
	if m.help.ShowAll || m.mode != modeNone || msg.Button != tea.MouseLeft {
		return m, nil
	}
	if m.drag.Active() {
		m.drag.Cancel()
	}
	colIdx := m.columnAt(msg.X)
	if colIdx < 0 {
		return m, nil
	}
	m.selectedColumn = colIdx
	cardIdx := m.cardAt(colIdx, msg.Y)
	if cardIdx < 0 {
		m.clampSelections()
		return m, nil
	}
	m.selectedTask = cardIdx
	return m.startDrag(m.selectedTaskID(), true)
}

// handleMouseMotion highlights the column under a dragged card.
func (m Model) handleMouseMotion(msg tea.MouseMotionMsg) (tea.Model, tea.Cmd) {
	if !m.mouseDrag || !m.drag.Active() {
		return m, nil
	}
	if colIdx := m.columnAt(msg.X); colIdx >= 0 {
		m.drag.Hover(domain.Statuses()[colIdx])
	}
	return m, nil
}

// handleMouseRelease drops a dragged card on the column under the pointer.
func (m Model) handleMouseRelease(msg tea.MouseReleaseMsg) (tea.Model, tea.Cmd) {
	if !m.mouseDrag || !m.drag.Active() {
		return m, nil
	}
	target := m.drag.Hovering()
	if colIdx := m.columnAt(msg.X); colIdx >= 0 {
		target = domain.Statuses()[colIdx]
	}
	if target == m.drag.Origin() {
		m.drag.Cancel()
		m.mouseDrag = false
		m.status = "ready"
		return m, nil
	}
	return m.dropOn(target)
}

// columnAt returns the column index under x, or -1.
func (m Model) columnAt(x int) int {
	outer := m.columnWidth() + columnOverhead
	if x < 0 || outer <= 0 {
		return -1
	}
	idx := x / outer
	if idx >= len(domain.Statuses()) {
		return -1
	}
	return idx
}

// cardAt returns the card index under y in column colIdx, or -1.
func (m Model) cardAt(colIdx, y int) int {
	row := y - boardTop - columnChrome
	if row < 0 {
		return -1
	}
	status := domain.Statuses()[colIdx]
	idx := m.scrollTop(colIdx) + row/cardHeight(m.board)
	if idx >= m.layout.Len(status) {
		return -1
	}
	return idx
}

// columnWidth returns the inner column width.
func (m Model) columnWidth() int {
	if m.width <= 0 {
		return 28
	}
	return clamp(m.width/len(domain.Statuses())-columnOverhead, 18, 42)
}

// columnHeight returns the rendered column height.
func (m Model) columnHeight() int {
	// status line plus bordered help line
	footerLines := 3
	return max(cardHeight(m.board)+columnChrome+1, m.height-boardTop-footerLines)
}

// visibleCards returns how many cards fit in one column.
func (m Model) visibleCards() int {
	return max(1, (m.columnHeight()-columnChrome-1)/cardHeight(m.board))
}

// scrollTop returns the first rendered card of one column.
func (m Model) scrollTop(colIdx int) int {
	if colIdx != m.selectedColumn {
		return 0
	}
	return max(0, m.selectedTask-m.visibleCards()+1)
}

// View handles view.
func (m Model) View() tea.View {
	if m.err != nil {
		v := tea.NewView("error: " + m.err.Error() + "\n\npress r to retry • q quit\n")
		v.MouseMode = tea.MouseModeCellMotion
		v.AltScreen = true
		return v
	}
	if !m.ready {
		v := tea.NewView("loading...")
		v.MouseMode = tea.MouseModeCellMotion
		v.AltScreen = true
		return v
	}

	accent := lipgloss.Color("62")
	muted := lipgloss.Color("241")
	dim := lipgloss.Color("239")
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	statusStyle := lipgloss.NewStyle().Foreground(dim)

	header := titleStyle.Render("tavla") + "  " + greeting(m.displayName, time.Now())
	header += statusStyle.Render(fmt.Sprintf("  %d tasks", len(m.tasks)))
	if m.drag.Active() {
		header += statusStyle.Render("  dragging: " + truncate(m.tasks[m.drag.TaskID()].Title, 32))
	}

	body := m.renderBoard(accent, muted, dim)
	sections := []string{header, "", body}
	if strings.TrimSpace(m.status) != "" && m.status != "ready" {
		sections = append(sections, statusStyle.Render(m.status))
	}
	content := strings.Join(sections, "\n")

	helpBubble := m.help
	helpBubble.ShowAll = false
	helpBubble.SetWidth(max(0, m.width-2))
	helpLine := lipgloss.NewStyle().
		Foreground(muted).
		BorderTop(true).
		BorderForeground(dim).
		Padding(0, 1).
		Width(max(0, m.width)).
		Render(helpBubble.View(m.keys))

	if m.height > 0 {
		content = fitLines(content, max(0, m.height-lipgloss.Height(helpLine)))
	}
	fullContent := content + "\n" + helpLine

	overlay := m.renderModeOverlay(accent, muted, dim, m.width-8)
	if m.help.ShowAll {
		overlay = m.renderHelpOverlay(accent, muted, dim, m.width-8)
	}
	if overlay != "" {
		overlayHeight := lipgloss.Height(fullContent)
		if m.height > 0 {
			overlayHeight = m.height
		}
		fullContent = overlayOnContent(fullContent, overlay, max(1, m.width), max(1, overlayHeight))
	}

	view := tea.NewView(fullContent)
	view.MouseMode = tea.MouseModeCellMotion
	view.AltScreen = true
	return view
}

// renderBoard draws the four columns side by side.
func (m Model) renderBoard(accent, muted, dim color.Color) string {
	colWidth := m.columnWidth()
	innerHeight := max(1, m.columnHeight()-2)
	visible := m.visibleCards()
	colTitle := lipgloss.NewStyle().Bold(true).Foreground(accent)
	placeholderStyle := lipgloss.NewStyle().Foreground(muted).Italic(true)
	baseColStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(dim).
		Padding(0, 1).
		MarginRight(1)

	views := make([]string, 0, len(domain.Statuses()))
	for colIdx, column := range domain.Columns() {
		ids := m.layout.Column(column.Status)
		title := fmt.Sprintf("%s (%d)", column.Name, len(ids))
		hovered := m.drag.Active() && m.drag.Hovering() == column.Status
		if hovered && column.Status != m.drag.Origin() {
			title += " ⇣ drop here"
		}
		lines := []string{colTitle.Render(truncate(title, colWidth))}
		if len(ids) == 0 || m.layout.HasPlaceholder(column.Status) {
			lines = append(lines, placeholderStyle.Render(truncate(column.Status.Placeholder(), colWidth)))
		}
		start := m.scrollTop(colIdx)
		end := min(len(ids), start+visible)
		for idx := start; idx < end; idx++ {
			task, ok := m.tasks[ids[idx]]
			if !ok {
				continue
			}
			state := cardState{
				Focused:  colIdx == m.selectedColumn && idx == m.selectedTask,
				Dragging: m.drag.Active() && m.drag.TaskID() == task.ID,
			}
			lines = append(lines, renderCard(buildCard(task), colWidth, m.board, state, accent, muted))
		}
		content := lipgloss.NewStyle().Width(colWidth).Render(fitLines(strings.Join(lines, "\n"), innerHeight))
		style := baseColStyle
		switch {
		case hovered:
			style = style.BorderForeground(lipgloss.Color("212")).BorderStyle(lipgloss.DoubleBorder())
		case colIdx == m.selectedColumn:
			style = style.BorderForeground(accent)
		}
		views = append(views, style.Render(content))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, views...)
}

// renderModeOverlay renders the modal for the active input mode.
func (m Model) renderModeOverlay(accent, muted, dim color.Color, maxWidth int) string {
	width := clamp(maxWidth, 48, 96)
	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(dim).
		Padding(0, 1)
	if maxWidth > 0 {
		style = style.Width(width)
	}
	switch m.mode {
	case modeDetail, modeSubtaskInput:
		return style.BorderForeground(accent).Render(m.renderDetail(accent, muted, width-4))
	case modeEditTask, modeAddTask:
		if m.editor == nil {
			return ""
		}
		return style.BorderForeground(accent).Render(m.editor.view(accent, muted, width-4))
	case modeConfirmDelete:
		title := m.tasks[m.confirmID].Title
		if title == "" {
			title = m.detail.Title
		}
		lines := []string{
			lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")).Render("Delete task"),
			fmt.Sprintf("Delete %q? This cannot be undone.", truncate(title, width-20)),
			"",
			lipgloss.NewStyle().Foreground(muted).Render("y confirm • n cancel"),
		}
		return style.Render(strings.Join(lines, "\n"))
	}
	return ""
}

// renderHelpOverlay renders help overlay.
func (m Model) renderHelpOverlay(accent, muted, dim color.Color, maxWidth int) string {
	width := clamp(maxWidth, 56, 100)
	hb := m.help
	hb.ShowAll = true
	hb.SetWidth(width - 4)

	workflow := []string{
		lipgloss.NewStyle().Bold(true).Foreground(accent).Render("Workflows"),
		"1. enter open task  •  e edit  •  n add task in the focused column",
		"2. space pick up card  •  h/l choose column  •  space/enter drop  •  esc cancel",
		"3. [ ] move the focused card one column",
		"4. mouse: press on a card, drag over a column, release to drop",
		"5. task view: x toggle subtask  •  a add  •  c change  •  backspace remove  •  y copy",
	}
	lines := []string{
		lipgloss.NewStyle().Bold(true).Foreground(accent).Render("tavla help"),
		"",
		hb.View(m.keys),
		"",
		lipgloss.NewStyle().Foreground(muted).Render(strings.Join(workflow, "\n")),
		lipgloss.NewStyle().Foreground(muted).Render("press ? or esc to close"),
	}
	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(dim).
		Padding(0, 1)
	if maxWidth > 0 {
		style = style.Width(width)
	}
	return style.Render(strings.Join(lines, "\n"))
}

// greeting returns the time-of-day header greeting.
func greeting(name string, now time.Time) string {
	salutation := "Good evening"
	switch hour := now.Hour(); {
	case hour < 12:
		salutation = "Good morning"
	case hour < 18:
		salutation = "Good afternoon"
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return salutation
	}
	return salutation + ", " + name
}

// newModalInput constructs modal input.
func newModalInput(prompt, placeholder, value string, limit int) textinput.Model {
	in := textinput.New()
	in.Prompt = prompt
	in.Placeholder = placeholder
	in.CharLimit = limit
	styles := in.Styles()
	styles.Cursor.Blink = false
	in.SetStyles(styles)
	if value != "" {
		in.SetValue(value)
	}
	return in
}

// wrapIndex wraps an index by delta for a bounded collection.
func wrapIndex(current int, delta int, total int) int {
	if total <= 0 {
		return 0
	}
	next := current + delta
	for next < 0 {
		next += total
	}
	for next >= total {
		next -= total
	}
	return next
}

// windowBounds returns an inclusive-exclusive list window that keeps selected visible.
func windowBounds(total, selected, windowSize int) (int, int) {
	if total <= 0 || windowSize <= 0 {
		return 0, 0
	}
	if total <= windowSize {
		return 0, total
	}
	selected = clamp(selected, 0, total-1)
	start := max(0, selected-windowSize/2)
	end := start + windowSize
	if end > total {
		end = total
		start = max(0, end-windowSize)
	}
	return start, end
}

// clamp clamps the requested operation.
func clamp(v, minV, maxV int) int {
	if maxV < minV {
		return minV
	}
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}

// fitLines fits lines.
func fitLines(content string, maxLines int) string {
	if maxLines <= 0 {
		return ""
	}
	lines := strings.Split(content, "\n")
	switch {
	case len(lines) > maxLines:
		if maxLines == 1 {
			lines = []string{"…"}
		} else {
			lines = append(lines[:maxLines-1], "…")
		}
	case len(lines) < maxLines:
		lines = append(lines, make([]string, maxLines-len(lines))...)
	}
	return strings.Join(lines, "\n")
}

// overlayOnContent overlays on content.
func overlayOnContent(base, overlay string, width, height int) string {
	if width <= 0 || height <= 0 {
		if strings.TrimSpace(overlay) == "" {
			return base
		}
		return overlay + "\n\n" + base
	}
	base = fitLines(base, height)
	canvas := lipgloss.NewCanvas(width, height)
	canvas.Compose(lipgloss.NewLayer(base).X(0).Y(0).Z(0))
	centered := lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, overlay)
	canvas.Compose(lipgloss.NewLayer(centered).X(0).Y(0).Z(10))
	return canvas.Render()
}

// truncate truncates the requested operation.
func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	rs := []rune(s)
	if len(rs) <= max {
		return s
	}
	if max <= 1 {
		return string(rs[:max])
	}
	return string(rs[:max-1]) + "…"
}
