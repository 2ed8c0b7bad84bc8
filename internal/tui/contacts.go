package tui

import (
	"fmt"
	"image/color"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/hylla/tavla/internal/domain"
	"github.com/sahilm/fuzzy"
)

// contactSelector edits a private copy of one assignment list.
type contactSelector struct {
	contacts []domain.Contact
	selected []domain.Assignee
	filter   textinput.Model
	visible  []int
	cursor   int
}

// newContactSelector seeds the selector with a deep copy of assigned.
func newContactSelector(contacts []domain.Contact, assigned []domain.Assignee) contactSelector {
	s := contactSelector{
		contacts: append([]domain.Contact(nil), contacts...),
		selected: domain.CloneAssignees(assigned),
		filter:   newModalInput("filter: ", "type to fuzzy-filter contacts", "", 60),
	}
	s.applyFilter()
	return s
}

// applyFilter recomputes the visible contacts from the filter text.
func (s *contactSelector) applyFilter() {
	query := strings.TrimSpace(s.filter.Value())
	s.visible = s.visible[:0]
	if query == "" {
		for idx := range s.contacts {
			s.visible = append(s.visible, idx)
		}
	} else {
		names := make([]string, len(s.contacts))
		for idx, contact := range s.contacts {
			names[idx] = contact.FullName
		}
		for _, match := range fuzzy.Find(query, names) {
			s.visible = append(s.visible, match.Index)
		}
	}
	s.cursor = clamp(s.cursor, 0, len(s.visible)-1)
}

// current returns the contact under the cursor.
func (s contactSelector) current() (domain.Contact, bool) {
	if len(s.visible) == 0 {
		return domain.Contact{}, false
	}
	return s.contacts[s.visible[clamp(s.cursor, 0, len(s.visible)-1)]], true
}

// toggle flips the assignment of the contact with id.
func (s *contactSelector) toggle(id string) bool {
	for _, contact := range s.contacts {
		if contact.ID == id {
			s.selected = domain.ToggleAssignee(s.selected, contact)
			return true
		}
	}
	return false
}

// isSelected reports whether the contact is assigned.
func (s contactSelector) isSelected(id string) bool {
	return domain.HasAssignee(s.selected, id)
}

// Selected returns a copy of the current assignment list.
func (s contactSelector) Selected() []domain.Assignee {
	return domain.CloneAssignees(s.selected)
}

// summary describes the selection for the edit form.
func (s contactSelector) summary() string {
	return selectionSummary(s.selected)
}

func selectionSummary(list []domain.Assignee) string {
	if len(list) == 0 {
		return "Select contacts to assign"
	}
	return fmt.Sprintf("%d selected", len(list))
}

// update handles one key while the selector is open. It reports whether the
// key was consumed.
func (s *contactSelector) update(msg tea.KeyPressMsg) (bool, tea.Cmd) {
	switch msg.String() {
	case "up", "ctrl+p":
		s.cursor = clamp(s.cursor-1, 0, len(s.visible)-1)
		return true, nil
	case "down", "ctrl+n":
		s.cursor = clamp(s.cursor+1, 0, len(s.visible)-1)
		return true, nil
	case "tab", "space":
		if contact, ok := s.current(); ok {
			s.toggle(contact.ID)
		}
		return true, nil
	}
	var cmd tea.Cmd
	before := s.filter.Value()
	s.filter, cmd = s.filter.Update(msg)
	if s.filter.Value() != before {
		s.applyFilter()
	}
	return true, cmd
}

// view renders the selector list with chips of the current selection.
func (s contactSelector) view(accent, muted color.Color, width int) string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(accent)
	hintStyle := lipgloss.NewStyle().Foreground(muted)
	lines := []string{titleStyle.Render("Assigned to"), s.filter.View()}
	if len(s.visible) == 0 {
		lines = append(lines, hintStyle.Render("(no matching contacts)"))
	}
	start, end := windowBounds(len(s.visible), s.cursor, 8)
	for pos := start; pos < end; pos++ {
		contact := s.contacts[s.visible[pos]]
		mark := "[ ]"
		if s.isSelected(contact.ID) {
			mark = "[x]"
		}
		prefix := "  "
		if pos == s.cursor {
			prefix = "> "
		}
		line := fmt.Sprintf("%s%s %s %s", prefix, mark, renderChips([]chip{{Label: contact.Initials, Color: contact.Color}}, 0), truncate(contact.FullName, max(8, width-14)))
		lines = append(lines, line)
	}
	chips := assigneeChips(s.selected)
	if chips != "" {
		lines = append(lines, "", chips)
	}
	lines = append(lines, hintStyle.Render(s.summary()), hintStyle.Render("space/tab toggle • enter done • esc discard"))
	return strings.Join(lines, "\n")
}

// assigneeChips renders every assignee as a chip, using the card overflow rule.
func assigneeChips(list []domain.Assignee) string {
	chips := make([]chip, 0, min(len(list), maxChips))
	for idx, assignee := range list {
		if idx >= maxChips {
			break
		}
		chips = append(chips, chip{Label: assignee.Initials, Color: assignee.Color})
	}
	return renderChips(chips, max(0, len(list)-maxChips))
}
