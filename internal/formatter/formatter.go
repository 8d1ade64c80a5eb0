package formatter

import (
	"fmt"
	"regexp"
	"strings"
)

// writerIndent is the indentation unit of generated code.
const writerIndent = 2

var lineRegex = regexp.MustCompile(`^( *)(.*?)[ \t]*$`)

// Formatter lays out generated C++ code
type Formatter struct {
	indent  int
	useTabs bool
}

// Option configures a Formatter
type Option func(*Formatter)

// WithIndent sets the number of spaces per indentation level
func WithIndent(n int) Option {
	return func(f *Formatter) {
		if n >= 0 {
			f.indent = n
		}
	}
}

// WithTabs indents with one tab per level
func WithTabs(useTabs bool) Option {
	return func(f *Formatter) {
		f.useTabs = useTabs
	}
}

// NewFormatter creates a new Formatter instance
func NewFormatter(opts ...Option) *Formatter {
	f := &Formatter{indent: writerIndent}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Format re-indents code, strips trailing whitespace and ends it with a
// single newline. Code with unbalanced braces is rejected.
func (f *Formatter) Format(code string) (string, error) {
	if strings.TrimSpace(code) == "" {
		return "", nil
	}

	if err := checkBraces(code); err != nil {
		return "", fmt.Errorf("failed to format C++ code: %w", err)
	}

	unit := strings.Repeat(" ", f.indent)
	if f.useTabs {
		unit = "\t"
	}

	lines := strings.Split(strings.Trim(code, "\n"), "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		m := lineRegex.FindStringSubmatch(line)
		if m[2] == "" {
			if !blank {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		level, extra := len(m[1])/writerIndent, len(m[1])%writerIndent
		out = append(out, strings.Repeat(unit, level)+strings.Repeat(" ", extra)+m[2])
	}

	return strings.Join(out, "\n") + "\n", nil
}

// Wrap places code in a function body and adds the includes it needs, so
// the result compiles on its own.
func (f *Formatter) Wrap(code, function string) string {
	var sb strings.Builder

	sb.WriteString("#include <ArduinoJson.h>\n")
	if strings.Contains(code, "std::cerr") || strings.Contains(code, "std::istream") || strings.Contains(code, "std::ostream") {
		sb.WriteString("#include <iostream>\n")
	}
	if strings.Contains(code, "std::string") {
		sb.WriteString("#include <string>\n")
	}

	sb.WriteString("\nvoid " + function + "() {\n")
	for _, line := range strings.Split(strings.Trim(code, "\n"), "\n") {
		if strings.TrimSpace(line) == "" {
			sb.WriteString("\n")
			continue
		}
		sb.WriteString(strings.Repeat(" ", writerIndent) + line + "\n")
	}
	sb.WriteString("}\n")

	return sb.String()
}

// checkBraces reports the first unmatched brace, ignoring string literals
// and line comments.
func checkBraces(code string) error {
	depth := 0
	for n, line := range strings.Split(code, "\n") {
		inString := false
		for i := 0; i < len(line); i++ {
			c := line[i]
			switch {
			case inString && c == '\\':
				i++
			case c == '"':
				inString = !inString
			case inString:
			case c == '/' && i+1 < len(line) && line[i+1] == '/':
				i = len(line)
			case c == '{':
				depth++
			case c == '}':
				depth--
				if depth < 0 {
					return fmt.Errorf("unexpected '}' on line %d", n+1)
				}
			}
		}
	}
	if depth > 0 {
		return fmt.Errorf("%d unclosed '{'", depth)
	}
	return nil
}
