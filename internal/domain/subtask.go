package domain

import "strings"

// Subtask is one checklist entry, identified only by its position.
type Subtask struct {
	Text string
	Done bool
}

// Subtasks is an ordered checklist. Mutators return a new slice and leave the receiver untouched.
type Subtasks []Subtask

// Clone returns a copy of the list; nil stays nil-safe as an empty list.
func (s Subtasks) Clone() Subtasks {
	out := make(Subtasks, len(s))
	copy(out, s)
	return out
}

// Clean trims texts and drops blank entries.
func (s Subtasks) Clean() Subtasks {
	out := make(Subtasks, 0, len(s))
	for _, item := range s {
		item.Text = strings.TrimSpace(item.Text)
		if item.Text == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}

// Add appends an open subtask. Blank text is rejected and reported as unchanged.
func (s Subtasks) Add(text string) (Subtasks, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return s.Clone(), false
	}
	out := append(s.Clone(), Subtask{Text: text})
	return out, true
}

// Edit replaces the text at idx; blank text keeps the original.
func (s Subtasks) Edit(idx int, text string) (Subtasks, bool) {
	out := s.Clone()
	if !s.inRange(idx) {
		return out, false
	}
	text = strings.TrimSpace(text)
	if text == "" || text == out[idx].Text {
		return out, false
	}
	out[idx].Text = text
	return out, true
}

// Remove deletes the entry at idx, shifting later entries down.
func (s Subtasks) Remove(idx int) (Subtasks, bool) {
	if !s.inRange(idx) {
		return s.Clone(), false
	}
	out := make(Subtasks, 0, len(s)-1)
	out = append(out, s[:idx]...)
	out = append(out, s[idx+1:]...)
	return out, true
}

// SetDone sets the completion flag at idx.
func (s Subtasks) SetDone(idx int, done bool) (Subtasks, bool) {
	out := s.Clone()
	if !s.inRange(idx) {
		return out, false
	}
	if out[idx].Done == done {
		return out, false
	}
	out[idx].Done = done
	return out, true
}

// Progress returns done and total counts.
func (s Subtasks) Progress() (int, int) {
	done := 0
	for _, item := range s {
		if item.Done {
			done++
		}
	}
	return done, len(s)
}

func (s Subtasks) inRange(idx int) bool {
	return idx >= 0 && idx < len(s)
}
