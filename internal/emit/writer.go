// Package emit buffers generated Go source. Writer builds indented function
// bodies; File collects declarations and imports and renders a formatted Go
// file.
package emit

import (
	"fmt"
	"strings"
)

// Writer accumulates lines of Go code at a tracked indentation depth.
type Writer struct {
	sb     strings.Builder
	indent int
}

// Line writes one formatted line at the current depth.
func (w *Writer) Line(format string, args ...any) {
	line := format
	if len(args) > 0 {
		line = fmt.Sprintf(format, args...)
	}

	if line == "" {
		w.sb.WriteByte('\n')
		return
	}

	w.sb.WriteString(strings.Repeat("\t", w.indent))
	w.sb.WriteString(line)
	w.sb.WriteByte('\n')
}

// Open writes a line ending a block opener and indents what follows.
func (w *Writer) Open(format string, args ...any) {
	w.Line(format, args...)
	w.indent++
}

// Close dedents and writes the closing line.
func (w *Writer) Close(format string, args ...any) {
	if w.indent > 0 {
		w.indent--
	}

	w.Line(format, args...)
}

// Middle writes a line at the enclosing depth without changing it, as for
// "} else {" or "case x:".
func (w *Writer) Middle(format string, args ...any) {
	w.indent--
	w.Line(format, args...)
	w.indent++
}

// Block writes a multi-line fragment, indenting each non-empty line to the
// current depth.
func (w *Writer) Block(fragment string) {
	fragment = strings.TrimRight(fragment, "\n")
	if fragment == "" {
		return
	}

	for _, line := range IndentAll(strings.Split(fragment, "\n"), w.indent) {
		w.sb.WriteString(line)
		w.sb.WriteByte('\n')
	}
}

// Blank writes an empty line.
func (w *Writer) Blank() {
	w.sb.WriteByte('\n')
}

// String returns the code written so far.
func (w *Writer) String() string {
	return w.sb.String()
}

// IndentAll prefixes every non-empty line with tabs.
func IndentAll(lines []string, tabs int) []string {
	if len(lines) == 0 || tabs <= 0 {
		return lines
	}

	prefix := strings.Repeat("\t", tabs)
	out := make([]string, 0, len(lines))

	for _, l := range lines {
		if l == "" {
			out = append(out, l)
		} else {
			out = append(out, prefix+l)
		}
	}

	return out
}

// Quote renders s as a Go string literal.
func Quote(s string) string {
	return fmt.Sprintf("%q", s)
}
