package tui

import (
	"context"
	"fmt"
	"image/color"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/hylla/tavla/internal/domain"
)

// handleDetailKey handles keys while the task detail modal is open.
func (m Model) handleDetailKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	task := m.detail
	switch msg.String() {
	case "esc", "q":
		m.closeDetail()
		m.status = "ready"
		return m, nil
	case "up", "k":
		m.detailSubtask = clamp(m.detailSubtask-1, 0, len(task.Subtasks)-1)
		return m, nil
	case "down", "j":
		m.detailSubtask = clamp(m.detailSubtask+1, 0, len(task.Subtasks)-1)
		return m, nil
	case "x", "space":
		if len(task.Subtasks) == 0 {
			return m, nil
		}
		idx := clamp(m.detailSubtask, 0, len(task.Subtasks)-1)
		done := !task.Subtasks[idx].Done
		return m, m.subtaskCmd(task.ID, func(ctx context.Context) (domain.Task, error) {
			return m.svc.ToggleSubtask(ctx, task.ID, idx, done)
		})
	case "a":
		cmd := m.startSubtaskInput(-1)
		return m, cmd
	case "c":
		if len(task.Subtasks) == 0 {
			return m, nil
		}
		cmd := m.startSubtaskInput(clamp(m.detailSubtask, 0, len(task.Subtasks)-1))
		return m, cmd
	case "backspace", "delete":
		if len(task.Subtasks) == 0 {
			return m, nil
		}
		idx := clamp(m.detailSubtask, 0, len(task.Subtasks)-1)
		return m, m.subtaskCmd(task.ID, func(ctx context.Context) (domain.Task, error) {
			return m.svc.RemoveSubtask(ctx, task.ID, idx)
		})
	case "e":
		cmd := m.startEdit(task)
		return m, cmd
	case "d":
		m.startConfirmDelete(task.ID)
		return m, nil
	case "y":
		if err := m.copyText(taskSummary(task)); err != nil {
			m.logger.Warn("clipboard write failed", "err", err)
			m.status = "copy failed: " + err.Error()
			return m, nil
		}
		m.status = "copied task summary"
		return m, nil
	}
	return m, nil
}

// startSubtaskInput opens the inline subtask input; idx < 0 adds a new one.
func (m *Model) startSubtaskInput(idx int) tea.Cmd {
	m.mode = modeSubtaskInput
	m.subtaskEditIdx = idx
	m.subtaskInput.SetValue("")
	m.subtaskInput.Prompt = "+ "
	if idx >= 0 && idx < len(m.detail.Subtasks) {
		m.subtaskInput.Prompt = "~ "
		m.subtaskInput.SetValue(m.detail.Subtasks[idx].Text)
		m.subtaskInput.CursorEnd()
	}
	return m.subtaskInput.Focus()
}

// handleSubtaskInputKey handles keys while the inline subtask input is focused.
func (m Model) handleSubtaskInputKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeDetail
		m.subtaskEditIdx = -1
		m.subtaskInput.Blur()
		return m, nil
	case "enter":
		text := strings.TrimSpace(m.subtaskInput.Value())
		if text == "" {
			return m, nil
		}
		taskID := m.detail.ID
		idx := m.subtaskEditIdx
		m.mode = modeDetail
		m.subtaskEditIdx = -1
		m.subtaskInput.Blur()
		m.subtaskInput.SetValue("")
		if idx >= 0 {
			return m, m.subtaskCmd(taskID, func(ctx context.Context) (domain.Task, error) {
				return m.svc.EditSubtask(ctx, taskID, idx, text)
			})
		}
		m.detailSubtask = len(m.detail.Subtasks)
		return m, m.subtaskCmd(taskID, func(ctx context.Context) (domain.Task, error) {
			return m.svc.AddSubtask(ctx, taskID, text)
		})
	}
	var cmd tea.Cmd
	m.subtaskInput, cmd = m.subtaskInput.Update(msg)
	return m, cmd
}

// subtaskCmd runs one subtask mutation and reports the updated task.
func (m Model) subtaskCmd(taskID string, run func(context.Context) (domain.Task, error)) tea.Cmd {
	return func() tea.Msg {
		task, err := run(context.Background())
		if err != nil {
			task.ID = taskID
			return detailMsg{task: task, err: err}
		}
		done, total := task.Subtasks.Progress()
		return detailMsg{task: task, status: fmt.Sprintf("%d/%d subtasks", done, total)}
	}
}

// renderDetail renders the task detail modal body.
func (m Model) renderDetail(accent, muted color.Color, width int) string {
	task := m.detail
	labelStyle := lipgloss.NewStyle().Bold(true).Foreground(accent)
	mutedStyle := lipgloss.NewStyle().Foreground(muted)
	badge := lipgloss.NewStyle().
		Foreground(lipgloss.Color("255")).
		Background(categoryColor(task.Category)).
		Padding(0, 1).
		Render(task.Category.Label())

	lines := []string{
		badge,
		lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252")).Render(task.Title),
		"",
	}
	if desc := strings.TrimSpace(task.Description); desc != "" {
		lines = append(lines, m.markdown.render(desc, width))
	} else {
		lines = append(lines, mutedStyle.Render("No description"))
	}
	lines = append(lines, "")

	due := task.DueDate
	if due == "" {
		due = mutedStyle.Render("No date set")
	}
	lines = append(lines, labelStyle.Render("Due date: ")+due)

	priority := mutedStyle.Render("None")
	if task.Priority != "" && task.Priority != domain.PriorityNone {
		priority = string(task.Priority) + " " + priorityIcon(task.Priority)
	}
	lines = append(lines, labelStyle.Render("Priority: ")+priority, "")

	lines = append(lines, labelStyle.Render("Assigned To:"))
	if len(task.AssignedTo) == 0 {
		lines = append(lines, "  "+mutedStyle.Render("None"))
	}
	for _, assignee := range task.AssignedTo {
		lines = append(lines, "  "+renderChips([]chip{{Label: assignee.Initials, Color: assignee.Color}}, 0)+" "+truncate(assignee.FullName, max(8, width-10)))
	}
	lines = append(lines, "")

	lines = append(lines, labelStyle.Render("Subtasks"))
	if len(task.Subtasks) == 0 {
		lines = append(lines, "  "+mutedStyle.Render("No subtasks"))
	}
	start, end := windowBounds(len(task.Subtasks), m.detailSubtask, 8)
	for idx := start; idx < end; idx++ {
		item := task.Subtasks[idx]
		mark := "[ ]"
		if item.Done {
			mark = "[x]"
		}
		prefix := "  "
		if idx == m.detailSubtask {
			prefix = "> "
		}
		lines = append(lines, fmt.Sprintf("%s%s %s", prefix, mark, truncate(item.Text, max(8, width-8))))
	}
	if m.mode == modeSubtaskInput {
		m.subtaskInput.SetWidth(max(8, width-4))
		lines = append(lines, "  "+m.subtaskInput.View())
	}

	hint := "x toggle • a add • c change • backspace remove • e edit • d delete • y copy • esc close"
	if m.mode == modeSubtaskInput {
		hint = "enter save • esc cancel"
	}
	lines = append(lines, "", mutedStyle.Render(hint))
	return strings.Join(lines, "\n")
}

// taskSummary formats one task as plain text for the clipboard.
func taskSummary(task domain.Task) string {
	parts := []string{task.Title + " [" + task.Category.Label() + "]"}
	if task.DueDate != "" {
		parts = append(parts, "due "+task.DueDate)
	}
	if task.Priority != "" {
		parts = append(parts, "priority "+string(task.Priority))
	}
	if done, total := task.Subtasks.Progress(); total > 0 {
		parts = append(parts, fmt.Sprintf("%d/%d subtasks", done, total))
	}
	out := strings.Join(parts, " • ")
	if desc := strings.TrimSpace(task.Description); desc != "" {
		out += "\n\n" + desc
	}
	return out
}
