package generator

import "strings"

// Writer accumulates C++ source lines with two-space indentation.
// Consecutive blank lines are collapsed and a program never starts with one.
type Writer struct {
	lines []string
	depth int
}

// NewWriter returns an empty Writer at indentation level zero.
func NewWriter() *Writer {
	return &Writer{}
}

// AddLine appends the concatenation of parts at the current indentation.
func (w *Writer) AddLine(parts ...string) {
	w.lines = append(w.lines, strings.Repeat("  ", w.depth)+strings.Join(parts, ""))
}

// AddEmptyLine appends a blank line unless the last line is already blank
// or nothing has been written yet.
func (w *Writer) AddEmptyLine() {
	if len(w.lines) > 0 && w.lines[len(w.lines)-1] != "" {
		w.lines = append(w.lines, "")
	}
}

// AddText appends a multi-line fragment at the current indentation. Blank
// lines of the fragment follow the AddEmptyLine rules.
func (w *Writer) AddText(text string) {
	if text == "" {
		return
	}
	for _, line := range strings.Split(text, "\n") {
		if line == "" {
			w.AddEmptyLine()
			continue
		}
		w.AddLine(line)
	}
}

func (w *Writer) Indent() { w.depth++ }

func (w *Writer) Unindent() {
	if w.depth > 0 {
		w.depth--
	}
}

// Len returns the number of lines written.
func (w *Writer) Len() int { return len(w.lines) }

// String joins the lines with newlines. A trailing blank line therefore
// shows up as a trailing newline.
func (w *Writer) String() string {
	return strings.Join(w.lines, "\n")
}
