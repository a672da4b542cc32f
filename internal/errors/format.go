package errors

import (
	"fmt"
	"io"
	"strings"
	"sync/atomic"
)

const (
	ansiReset = "\033[0m"
	ansiRed   = "\033[1;31m"
	ansiBold  = "\033[1m"
	ansiCyan  = "\033[36m"
)

// detailWidth is the column at which Format wraps Detail text.
const detailWidth = 70

var plain atomic.Bool

// DisableColors turns off ANSI escapes in Format and Fprint output.
func DisableColors() { plain.Store(true) }

// EnableColors turns ANSI escapes back on.
func EnableColors() { plain.Store(false) }

func paint(style, s string) string {
	if plain.Load() {
		return s
	}
	return style + s + ansiReset
}

// Format renders e for a terminal: a headline with the code and message,
// then indented detail, cause and hint lines when present.
func (e *Error) Format() string {
	var b strings.Builder
	b.WriteString(paint(ansiRed, "ERROR") + " ")
	if e.Code != "" {
		b.WriteString(paint(ansiBold, e.Code+":") + " ")
	}
	b.WriteString(e.Message)
	b.WriteByte('\n')

	indent := func(s string) { b.WriteString("  " + s + "\n") }
	for _, line := range wrapText(e.Detail, detailWidth) {
		indent(line)
	}
	if e.Wrapped != nil {
		indent("caused by: " + e.Wrapped.Error())
	}
	if e.Suggestion != "" {
		indent(paint(ansiCyan, "Hint:") + " " + e.Suggestion)
	}
	return b.String()
}

// FormatCompact renders e on one line without detail.
func (e *Error) FormatCompact() string {
	if e.Code == "" {
		return e.Message
	}
	return e.Code + ": " + e.Message
}

// wrapText splits text into lines of at most width bytes, breaking on
// whitespace. Single words longer than width get a line of their own.
func wrapText(text string, width int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	lines := []string{words[0]}
	for _, w := range words[1:] {
		last := &lines[len(lines)-1]
		if len(*last)+1+len(w) > width {
			lines = append(lines, w)
			continue
		}
		*last += " " + w
	}
	return lines
}

// Fprint writes err to w. *Error values use Format; other errors get the
// same headline without a code.
func Fprint(w io.Writer, err error) {
	if e, ok := err.(*Error); ok {
		io.WriteString(w, e.Format())
		return
	}
	fmt.Fprintln(w, paint(ansiRed, "ERROR"), err.Error())
}
