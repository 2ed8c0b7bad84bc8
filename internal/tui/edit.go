package tui

import (
	"errors"
	"fmt"
	"image/color"
	"slices"
	"strings"

	"charm.land/bubbles/v2/textarea"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/hylla/tavla/internal/app"
	"github.com/hylla/tavla/internal/domain"
)

// editField identifies one focusable row of the task form.
type editField int

// task-form fields in display order.
const (
	editFieldTitle editField = iota
	editFieldDescription
	editFieldDue
	editFieldPriority
	editFieldCategory
	editFieldAssignees
	editFieldSubtasks
)

// editFieldLabels stores row labels for the task form.
var editFieldLabels = map[editField]string{
	editFieldTitle:       "Title",
	editFieldDescription: "Description",
	editFieldDue:         "Due date",
	editFieldPriority:    "Priority",
	editFieldCategory:    "Category",
	editFieldAssignees:   "Assigned to",
	editFieldSubtasks:    "Subtasks",
}

// validationFields maps service validation fields to form rows.
var validationFields = map[string]editField{
	"title":    editFieldTitle,
	"dueDate":  editFieldDue,
	"priority": editFieldPriority,
	"category": editFieldCategory,
	"subtasks": editFieldSubtasks,
}

// taskEditor is the working copy behind the add and edit forms. Nothing here
// touches the held task until the save succeeds.
type taskEditor struct {
	taskID   string
	creating bool
	status   domain.Status
	fields   []editField
	focus    int

	title       textinput.Model
	due         textinput.Model
	description textarea.Model
	subtaskIn   textinput.Model

	priority   domain.Priority
	category   domain.Category
	assignees  []domain.Assignee
	subtasks   domain.Subtasks
	subCursor  int
	subEditing int

	selector     *contactSelector
	fieldErrors  map[editField]string
	contactsSeen []domain.Contact
}

// newEditEditor seeds an editor from the held detail entity.
func newEditEditor(task domain.Task, contacts []domain.Contact) *taskEditor {
	e := newTaskEditor(contacts)
	e.taskID = task.ID
	e.status = task.Status
	e.category = task.Category
	e.fields = []editField{editFieldTitle, editFieldDescription, editFieldDue, editFieldPriority, editFieldAssignees, editFieldSubtasks}
	in := task.EditInput()
	e.title.SetValue(in.Title)
	e.description.SetValue(in.Description)
	e.due.SetValue(in.DueDate)
	e.priority = in.Priority
	e.assignees = in.AssignedTo
	e.subtasks = in.Subtasks
	return e
}

// newCreateEditor opens an empty form that creates the task in status.
func newCreateEditor(status domain.Status, contacts []domain.Contact) *taskEditor {
	e := newTaskEditor(contacts)
	e.creating = true
	e.status = status
	e.priority = domain.PriorityMedium
	e.category = domain.CategoryTechnicalTask
	e.fields = []editField{editFieldTitle, editFieldDescription, editFieldDue, editFieldPriority, editFieldCategory, editFieldAssignees, editFieldSubtasks}
	e.subtasks = domain.Subtasks{}
	return e
}

func newTaskEditor(contacts []domain.Contact) *taskEditor {
	description := textarea.New()
	description.Placeholder = "Markdown description"
	description.ShowLineNumbers = false
	description.SetHeight(4)
	styles := description.Styles()
	styles.Cursor.Blink = false
	description.SetStyles(styles)
	return &taskEditor{
		title:        newModalInput("", "Enter a title", "", 120),
		due:          newModalInput("", domain.DueDateLayout, "", 10),
		description:  description,
		subtaskIn:    newModalInput("+ ", "Add new subtask", "", 120),
		subEditing:   -1,
		fieldErrors:  map[editField]string{},
		contactsSeen: append([]domain.Contact(nil), contacts...),
	}
}

// current returns the focused field.
func (e *taskEditor) current() editField {
	return e.fields[clamp(e.focus, 0, len(e.fields)-1)]
}

// focusField moves focus and updates which widget receives keys.
func (e *taskEditor) focusField(idx int) tea.Cmd {
	e.focus = wrapIndex(idx, 0, len(e.fields))
	e.title.Blur()
	e.due.Blur()
	e.description.Blur()
	e.subtaskIn.Blur()
	switch e.current() {
	case editFieldTitle:
		return e.title.Focus()
	case editFieldDue:
		return e.due.Focus()
	case editFieldDescription:
		return e.description.Focus()
	case editFieldSubtasks:
		return e.subtaskIn.Focus()
	default:
		return nil
	}
}

// cyclePriority steps through the selectable priorities.
func (e *taskEditor) cyclePriority(delta int) {
	options := domain.Priorities()
	idx := slices.Index(options, e.priority)
	if idx < 0 {
		if delta > 0 {
			e.priority = options[0]
		} else {
			e.priority = options[len(options)-1]
		}
		return
	}
	e.priority = options[wrapIndex(idx, delta, len(options))]
}

// cycleCategory steps through the categories.
func (e *taskEditor) cycleCategory(delta int) {
	options := domain.Categories()
	idx := slices.Index(options, e.category)
	if idx < 0 {
		idx = 0
	}
	e.category = options[wrapIndex(idx, delta, len(options))]
}

// submitSubtask adds the input text or replaces the subtask being edited.
func (e *taskEditor) submitSubtask() bool {
	text := e.subtaskIn.Value()
	var changed bool
	if e.subEditing >= 0 {
		e.subtasks, changed = e.subtasks.Edit(e.subEditing, text)
	} else {
		e.subtasks, changed = e.subtasks.Add(text)
		if changed {
			e.subCursor = len(e.subtasks) - 1
		}
	}
	if changed {
		e.subtaskIn.SetValue("")
		e.subEditing = -1
	}
	return changed
}

// beginSubtaskEdit loads the selected subtask into the input.
func (e *taskEditor) beginSubtaskEdit() {
	if e.subCursor < 0 || e.subCursor >= len(e.subtasks) {
		return
	}
	e.subEditing = e.subCursor
	e.subtaskIn.SetValue(e.subtasks[e.subCursor].Text)
	e.subtaskIn.CursorEnd()
}

// removeSubtask deletes the selected subtask.
func (e *taskEditor) removeSubtask() {
	next, ok := e.subtasks.Remove(e.subCursor)
	if !ok {
		return
	}
	e.subtasks = next
	e.subEditing = -1
	e.subCursor = clamp(e.subCursor, 0, len(e.subtasks)-1)
}

// update routes one key to the focused field.
func (e *taskEditor) update(msg tea.KeyPressMsg) tea.Cmd {
	var cmd tea.Cmd
	switch e.current() {
	case editFieldTitle:
		e.title, cmd = e.title.Update(msg)
		delete(e.fieldErrors, editFieldTitle)
	case editFieldDue:
		e.due, cmd = e.due.Update(msg)
		delete(e.fieldErrors, editFieldDue)
	case editFieldDescription:
		e.description, cmd = e.description.Update(msg)
	case editFieldPriority:
		switch msg.String() {
		case "left", "h":
			e.cyclePriority(-1)
		case "right", "l", "space":
			e.cyclePriority(1)
		}
	case editFieldCategory:
		switch msg.String() {
		case "left", "h":
			e.cycleCategory(-1)
		case "right", "l", "space":
			e.cycleCategory(1)
		}
	case editFieldAssignees:
		switch msg.String() {
		case "enter", "space":
			selector := newContactSelector(e.contactsSeen, e.assignees)
			e.selector = &selector
			return e.selector.filter.Focus()
		}
	case editFieldSubtasks:
		switch msg.String() {
		case "up":
			e.subCursor = clamp(e.subCursor-1, 0, len(e.subtasks)-1)
		case "down":
			e.subCursor = clamp(e.subCursor+1, 0, len(e.subtasks)-1)
		case "enter":
			e.submitSubtask()
		case "ctrl+e":
			e.beginSubtaskEdit()
		case "ctrl+d":
			e.removeSubtask()
		case "ctrl+t":
			if e.subCursor >= 0 && e.subCursor < len(e.subtasks) {
				e.subtasks, _ = e.subtasks.SetDone(e.subCursor, !e.subtasks[e.subCursor].Done)
			}
		default:
			e.subtaskIn, cmd = e.subtaskIn.Update(msg)
		}
	}
	return cmd
}

// closeSelector ends contact selection, keeping the result only when accepted.
func (e *taskEditor) closeSelector(accept bool) {
	if e.selector == nil {
		return
	}
	if accept {
		e.assignees = e.selector.Selected()
	}
	e.selector = nil
}

// editInput returns the edit payload for the service.
func (e *taskEditor) editInput() app.EditTaskInput {
	return app.EditTaskInput{
		TaskID:      e.taskID,
		Title:       e.title.Value(),
		Description: e.description.Value(),
		DueDate:     e.due.Value(),
		Priority:    e.priority,
		AssignedTo:  domain.CloneAssignees(e.assignees),
		Subtasks:    e.subtasks.Clone(),
	}
}

// createInput returns the create payload for the service.
func (e *taskEditor) createInput() app.CreateTaskInput {
	return app.CreateTaskInput{
		Title:       e.title.Value(),
		Description: e.description.Value(),
		Category:    e.category,
		DueDate:     e.due.Value(),
		Priority:    e.priority,
		Status:      e.status,
		AssignedTo:  domain.CloneAssignees(e.assignees),
		Subtasks:    e.subtasks.Clone(),
	}
}

// applyError marks the offending field for validation failures. It reports
// whether err was a validation error.
func (e *taskEditor) applyError(err error) bool {
	var validationErr *app.ValidationError
	if !errors.As(err, &validationErr) {
		return false
	}
	field, ok := validationFields[validationErr.Field]
	if !ok {
		field = editFieldTitle
	}
	e.fieldErrors[field] = validationErr.Err.Error()
	if idx := slices.Index(e.fields, field); idx >= 0 {
		e.focusField(idx)
	}
	return true
}

// view renders the form.
func (e *taskEditor) view(accent, muted color.Color, width int) string {
	if e.selector != nil {
		return e.selector.view(accent, muted, width)
	}
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(accent)
	labelStyle := lipgloss.NewStyle().Foreground(muted)
	focusStyle := lipgloss.NewStyle().Bold(true).Foreground(accent)
	errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("203"))

	heading := "Edit Task"
	if e.creating {
		heading = "Add Task • " + e.status.Name()
	}
	inputWidth := max(16, width-6)
	e.title.SetWidth(inputWidth)
	e.due.SetWidth(inputWidth)
	e.description.SetWidth(inputWidth)
	e.subtaskIn.SetWidth(inputWidth)

	lines := []string{titleStyle.Render(heading)}
	for idx, field := range e.fields {
		label := editFieldLabels[field]
		if idx == e.focus {
			label = focusStyle.Render("› " + label)
		} else {
			label = labelStyle.Render("  " + label)
		}
		lines = append(lines, label)
		switch field {
		case editFieldTitle:
			lines = append(lines, "  "+e.title.View())
		case editFieldDescription:
			lines = append(lines, indentLines(e.description.View(), "  "))
		case editFieldDue:
			lines = append(lines, "  "+e.due.View())
		case editFieldPriority:
			lines = append(lines, "  "+priorityChoices(e.priority, accent, muted))
		case editFieldCategory:
			lines = append(lines, "  "+labelStyle.Render("‹ ")+e.category.Label()+labelStyle.Render(" ›"))
		case editFieldAssignees:
			summary := selectionSummary(e.assignees)
			if chips := assigneeChips(e.assignees); chips != "" {
				summary = chips + "  " + labelStyle.Render(summary)
			}
			lines = append(lines, "  "+summary)
		case editFieldSubtasks:
			for subIdx, item := range e.subtasks {
				mark := "[ ]"
				if item.Done {
					mark = "[x]"
				}
				prefix := "  "
				if idx == e.focus && subIdx == e.subCursor {
					prefix = "> "
				}
				lines = append(lines, fmt.Sprintf("  %s%s %s", prefix, mark, truncate(item.Text, inputWidth-8)))
			}
			lines = append(lines, "  "+e.subtaskIn.View())
		}
		if msg, ok := e.fieldErrors[field]; ok {
			lines = append(lines, "  "+errStyle.Render(msg))
		}
	}
	hint := "tab next • ctrl+s save • esc cancel"
	if e.current() == editFieldSubtasks {
		hint = "enter add • ctrl+e edit • ctrl+d remove • ctrl+t done • " + hint
	}
	lines = append(lines, "", labelStyle.Render(hint))
	return strings.Join(lines, "\n")
}

// priorityChoices renders the priority toggle row.
func priorityChoices(selected domain.Priority, accent, muted color.Color) string {
	parts := make([]string, 0, 4)
	for _, p := range domain.Priorities() {
		label := priorityIcon(p) + " " + string(p)
		if p == selected {
			parts = append(parts, lipgloss.NewStyle().Bold(true).Foreground(accent).Render("["+label+"]"))
			continue
		}
		parts = append(parts, lipgloss.NewStyle().Foreground(muted).Render(" "+label+" "))
	}
	if selected == domain.PriorityNone {
		parts = append(parts, lipgloss.NewStyle().Foreground(muted).Render("(none)"))
	}
	return strings.Join(parts, " ")
}

// indentLines prefixes every line of s.
func indentLines(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for idx := range lines {
		lines[idx] = prefix + lines[idx]
	}
	return strings.Join(lines, "\n")
}
