package domain

import (
	"strings"
	"unicode"
)

// Contact represents one entry of the shared, read-only contact list.
type Contact struct {
	ID       string
	FullName string
	Color    string
	Initials string
	Image    string
}

// Assignee is the snapshot of a contact embedded in a task.
type Assignee struct {
	ID       string
	FullName string
	Color    string
	Initials string
}

// NewContact constructs a new value for this package.
func NewContact(id, fullName, color, initials string) (Contact, error) {
	id = strings.TrimSpace(id)
	fullName = strings.TrimSpace(fullName)
	if id == "" {
		return Contact{}, ErrInvalidID
	}
	if fullName == "" {
		return Contact{}, ErrInvalidName
	}
	initials = strings.TrimSpace(initials)
	if initials == "" {
		initials = Initials(fullName)
	}
	return Contact{
		ID:       id,
		FullName: fullName,
		Color:    strings.TrimSpace(color),
		Initials: clipInitials(initials),
	}, nil
}

// Initials derives an upper-case abbreviation from the first and last name parts.
func Initials(fullName string) string {
	parts := strings.Fields(fullName)
	if len(parts) == 0 {
		return ""
	}
	first := firstLetter(parts[0])
	if len(parts) == 1 {
		return first
	}
	return first + firstLetter(parts[len(parts)-1])
}

// Assignee snapshots the display fields of the contact.
func (c Contact) Assignee() Assignee {
	return Assignee{
		ID:       c.ID,
		FullName: c.FullName,
		Color:    c.Color,
		Initials: c.Initials,
	}
}

// CloneAssignees returns an independent copy of the list.
func CloneAssignees(in []Assignee) []Assignee {
	out := make([]Assignee, len(in))
	copy(out, in)
	return out
}

// HasAssignee reports whether the contact id is assigned.
func HasAssignee(list []Assignee, contactID string) bool {
	for _, assignee := range list {
		if assignee.ID == contactID {
			return true
		}
	}
	return false
}

// ToggleAssignee adds the contact when absent and removes it when present, matched by id.
func ToggleAssignee(list []Assignee, contact Contact) []Assignee {
	out := make([]Assignee, 0, len(list)+1)
	removed := false
	for _, assignee := range list {
		if assignee.ID == contact.ID {
			removed = true
			continue
		}
		out = append(out, assignee)
	}
	if !removed {
		out = append(out, contact.Assignee())
	}
	return out
}

func firstLetter(word string) string {
	for _, r := range word {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return string(unicode.ToUpper(r))
		}
	}
	return ""
}

func clipInitials(initials string) string {
	runes := []rune(strings.ToUpper(initials))
	if len(runes) > 2 {
		runes = runes[:2]
	}
	return string(runes)
}
