package display

import (
	"io"
	"strings"
)

// Warning is a user-facing warning block.
type Warning struct {
	Title      string // Main warning title
	Message    string // Detailed explanation (optional)
	Suggestion string // Action to take (optional)
}

// Display writes the warning in yellow with the standard layout.
func (w Warning) Display(out io.Writer) {
	var b strings.Builder

	b.WriteString("\x1b[33m")
	b.WriteString("Warning: ")
	b.WriteString(w.Title)
	b.WriteString("\n")

	if w.Message != "" {
		b.WriteString("    ")
		b.WriteString(w.Message)
		b.WriteString("\n")
	}

	if w.Suggestion != "" {
		b.WriteString("    Suggestion: ")
		b.WriteString(w.Suggestion)
		b.WriteString("\n")
	}

	b.WriteString("\x1b[0m")
	io.WriteString(out, b.String())
}
