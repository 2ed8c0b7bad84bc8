package tui

import (
	"fmt"
	"image/color"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/hylla/tavla/internal/domain"
)

// maxChips is the number of assignee chips drawn before the overflow chip.
const maxChips = 4

// chip is one assignee badge.
type chip struct {
	Label string
	Color string
}

// cardView is the render-ready projection of one task.
type cardView struct {
	ID              string
	Category        domain.Category
	CategoryLabel   string
	Title           string
	Description     string
	DueDate         string
	Priority        string
	PriorityIcon    string
	ProgressVisible bool
	ProgressText    string
	ProgressPercent float64
	Chips           []chip
	Overflow        int
}

// cardState carries the interaction highlights for one rendered card.
type cardState struct {
	Focused  bool
	Dragging bool
}

// buildCard maps one task to its card view.
func buildCard(task domain.Task) cardView {
	view := cardView{
		ID:            task.ID,
		Category:      task.Category,
		CategoryLabel: task.Category.Label(),
		Title:         task.Title,
		Description:   firstLine(task.Description),
		DueDate:       task.DueDate,
		Priority:      string(task.Priority),
		PriorityIcon:  priorityIcon(task.Priority),
	}
	if done, total := task.Subtasks.Progress(); total > 0 {
		view.ProgressVisible = true
		view.ProgressText = fmt.Sprintf("%d/%d subtasks", done, total)
		view.ProgressPercent = 100 * float64(done) / float64(total)
	}
	for idx, assignee := range task.AssignedTo {
		if idx >= maxChips {
			view.Overflow = len(task.AssignedTo) - maxChips
			break
		}
		view.Chips = append(view.Chips, chip{Label: assignee.Initials, Color: assignee.Color})
	}
	return view
}

// priorityIcon returns the glyph for known priorities and the raw value otherwise.
func priorityIcon(priority domain.Priority) string {
	switch priority {
	case domain.PriorityUrgent:
		return "⏶⏶"
	case domain.PriorityMedium:
		return "="
	case domain.PriorityLow:
		return "⏷"
	default:
		return string(priority)
	}
}

// categoryColor returns the badge color for one category.
func categoryColor(category domain.Category) color.Color {
	switch category {
	case domain.CategoryUserStory:
		return lipgloss.Color("#0038FF")
	case domain.CategoryTechnicalTask:
		return lipgloss.Color("#1FD7C1")
	default:
		return lipgloss.Color("241")
	}
}

// progressBar draws a fill proportional to percent.
func progressBar(percent float64, width int) string {
	if width <= 0 {
		return ""
	}
	filled := int(percent * float64(width) / 100)
	filled = clamp(filled, 0, width)
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// renderChips draws the assignee badges and the overflow chip.
func renderChips(chips []chip, overflow int) string {
	parts := make([]string, 0, len(chips)+1)
	for _, c := range chips {
		style := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("255")).Padding(0, 1)
		if strings.TrimSpace(c.Color) != "" {
			style = style.Background(lipgloss.Color(c.Color))
		} else {
			style = style.Background(lipgloss.Color("239"))
		}
		parts = append(parts, style.Render(c.Label))
	}
	if overflow > 0 {
		parts = append(parts, lipgloss.NewStyle().
			Foreground(lipgloss.Color("255")).
			Background(lipgloss.Color("#2A3647")).
			Padding(0, 1).
			Render(fmt.Sprintf("+%d", overflow)))
	}
	return strings.Join(parts, " ")
}

// cardBodyLines returns the inner lines of one card; the count is fixed per board config.
func cardBodyLines(view cardView, width int, cfg BoardConfig, muted color.Color) []string {
	badge := lipgloss.NewStyle().
		Foreground(lipgloss.Color("255")).
		Background(categoryColor(view.Category)).
		Padding(0, 1).
		Render(view.CategoryLabel)
	titleStyle := lipgloss.NewStyle().Bold(true)
	mutedStyle := lipgloss.NewStyle().Foreground(muted)

	lines := []string{
		badge,
		titleStyle.Render(truncate(view.Title, width)),
	}
	if cfg.ShowDescription {
		lines = append(lines, mutedStyle.Render(truncate(view.Description, width)))
	}

	progress := ""
	if view.ProgressVisible {
		barWidth := max(4, width-len(view.ProgressText)-1)
		progress = progressBar(view.ProgressPercent, barWidth) + " " + view.ProgressText
	}
	lines = append(lines, truncate(progress, width))

	footer := renderChips(view.Chips, view.Overflow)
	meta := view.PriorityIcon
	if cfg.ShowDueDate && view.DueDate != "" {
		meta = view.DueDate + " " + meta
	}
	gap := max(1, width-lipgloss.Width(footer)-lipgloss.Width(meta))
	lines = append(lines, footer+strings.Repeat(" ", gap)+mutedStyle.Render(meta))
	return lines
}

// cardHeight returns the rendered height of one card including its border.
func cardHeight(cfg BoardConfig) int {
	lines := 4
	if cfg.ShowDescription {
		lines++
	}
	return lines + 2
}

// renderCard draws one bordered card.
func renderCard(view cardView, width int, cfg BoardConfig, state cardState, accent, muted color.Color) string {
	inner := max(8, width-4)
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("239")).
		Padding(0, 1)
	switch {
	case state.Dragging:
		border = border.BorderForeground(lipgloss.Color("212")).BorderStyle(lipgloss.DoubleBorder())
	case state.Focused:
		border = border.BorderForeground(accent)
	}
	body := lipgloss.NewStyle().Width(inner).Render(strings.Join(cardBodyLines(view, inner, cfg, muted), "\n"))
	return border.Render(body)
}

// firstLine returns the first non-blank line of s.
func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}
