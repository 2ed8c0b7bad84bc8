package tui

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"charm.land/bubbles/v2/key"
)

// keyMap represents key map data used by this package.
type keyMap struct {
	quit       key.Binding
	reload     key.Binding
	toggleHelp key.Binding
	moveLeft   key.Binding
	moveRight  key.Binding
	moveUp     key.Binding
	moveDown   key.Binding
	openTask   key.Binding
	editTask   key.Binding
	addTask    key.Binding
	deleteTask key.Binding
	pickUp     key.Binding
	drop       key.Binding
	cancel     key.Binding
	taskLeft   key.Binding
	taskRight  key.Binding
	toggleSub  key.Binding
	copyTask   key.Binding
	save       key.Binding
	nextField  key.Binding
	prevField  key.Binding
}

// KeyConfig holds user overrides for the drag shortcuts.
type KeyConfig struct {
	PickUp    string
	MoveLeft  string
	MoveRight string
}

// newKeyMap constructs key map.
func newKeyMap() keyMap {
	return keyMap{
		quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		reload:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		toggleHelp: key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
		moveLeft:   key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h/←", "column left")),
		moveRight:  key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("l/→", "column right")),
		moveUp:     key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "card up")),
		moveDown:   key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "card down")),
		openTask:   key.NewBinding(key.WithKeys("enter", "i"), key.WithHelp("enter", "open task")),
		editTask:   key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit task")),
		addTask:    key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new task")),
		deleteTask: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete task")),
		pickUp:     key.NewBinding(key.WithKeys(" ", "space"), key.WithHelp("space", "pick up card")),
		drop:       key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "drop card")),
		cancel:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		taskLeft:   key.NewBinding(key.WithKeys("["), key.WithHelp("[", "move card left")),
		taskRight:  key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "move card right")),
		toggleSub:  key.NewBinding(key.WithKeys("x", " ", "space"), key.WithHelp("x", "toggle subtask")),
		copyTask:   key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy summary")),
		save:       key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
		nextField:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
		prevField:  key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "previous field")),
	}
}

// applyConfig rebinds configurable shortcuts, keeping defaults for blank values.
func (k *keyMap) applyConfig(cfg KeyConfig) {
	configureBinding(&k.pickUp, cfg.PickUp, "space", "pick up card")
	configureBinding(&k.taskLeft, cfg.MoveLeft, "[", "move card left")
	configureBinding(&k.taskRight, cfg.MoveRight, "]", "move card right")
}

// configureBinding replaces one binding's keys and help text.
func configureBinding(b *key.Binding, raw, fallback, desc string) {
	keys, help := parseBindingKeys(raw, fallback)
	b.SetKeys(keys...)
	b.SetHelp(help, desc)
}

// parseBindingKeys maps one configured key name to bubbletea key strings.
func parseBindingKeys(raw, fallback string) ([]string, string) {
	value := strings.TrimSpace(raw)
	if value == "" {
		value = fallback
	}
	if value == "space" || value == " " {
		return []string{" ", "space"}, "space"
	}
	if utf8.RuneCountInString(value) == 1 {
		r, _ := utf8.DecodeRuneInString(value)
		if unicode.IsUpper(r) {
			return []string{value, "shift+" + strings.ToLower(value)}, value
		}
		return []string{value}, value
	}
	return []string{strings.ToLower(value)}, value
}

// ShortHelp handles short help.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.openTask, k.addTask, k.pickUp, k.taskLeft, k.taskRight, k.toggleHelp, k.quit,
	}
}

// FullHelp handles full help.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.moveLeft, k.moveRight, k.moveUp, k.moveDown},
		{k.openTask, k.editTask, k.addTask, k.deleteTask, k.copyTask},
		{k.pickUp, k.drop, k.cancel, k.taskLeft, k.taskRight},
		{k.toggleSub, k.save, k.nextField, k.prevField, k.reload, k.toggleHelp, k.quit},
	}
}
