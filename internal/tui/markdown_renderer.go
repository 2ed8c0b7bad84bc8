package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

const (
	descriptionMinWrap  = 24
	descriptionMaxWrap  = 96
	descriptionMaxLines = 12
)

// markdownRenderer turns task descriptions into styled text for the detail modal.
// Renderers are built lazily per wrap width since resizing the terminal changes it.
type markdownRenderer struct {
	byWidth map[int]*glamour.TermRenderer
}

// render returns the styled description clipped to descriptionMaxLines.
// Raw text is returned if glamour cannot render it.
func (r *markdownRenderer) render(source string, width int) string {
	source = strings.TrimSpace(source)
	if source == "" {
		return ""
	}
	wrap := clamp(width, descriptionMinWrap, descriptionMaxWrap)
	tr, err := r.rendererFor(wrap)
	if err != nil {
		return clipLines(source, descriptionMaxLines)
	}
	out, err := tr.Render(source)
	if err != nil {
		return clipLines(source, descriptionMaxLines)
	}

	// glamour pads every line out to the wrap width and frames the block with blank lines
	lines := strings.Split(out, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " ")
	}
	return clipLines(strings.Trim(strings.Join(lines, "\n"), "\n"), descriptionMaxLines)
}

func (r *markdownRenderer) rendererFor(wrap int) (*glamour.TermRenderer, error) {
	if tr, ok := r.byWidth[wrap]; ok {
		return tr, nil
	}
	tr, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(wrap),
		glamour.WithPreservedNewLines(),
	)
	if err != nil {
		return nil, err
	}
	if r.byWidth == nil {
		r.byWidth = make(map[int]*glamour.TermRenderer)
	}
	r.byWidth[wrap] = tr
	return tr, nil
}

// clipLines keeps the first n lines and marks the cut with an ellipsis line.
func clipLines(text string, n int) string {
	lines := strings.Split(text, "\n")
	if n <= 0 || len(lines) <= n {
		return text
	}
	return strings.Join(append(lines[:n:n], "…"), "\n")
}
