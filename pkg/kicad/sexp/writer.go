package sexp

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

// Writer emits indented S-expressions. The first error is kept and
// returned by Flush and Err; later writes are no-ops.
type Writer struct {
	w     *bufio.Writer
	depth int
	err   error
}

// NewWriter creates a writer on w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// Open starts the list (name ...) on a new line.
func (w *Writer) Open(name string) *Writer {
	if w.depth > 0 {
		w.raw("\n")
		w.raw(strings.Repeat("  ", w.depth))
	}
	w.raw("(")
	w.raw(name)
	w.depth++
	return w
}

// Close ends the innermost open list.
func (w *Writer) Close() *Writer {
	if w.depth == 0 {
		return w
	}
	w.depth--
	w.raw(")")
	if w.depth == 0 {
		w.raw("\n")
	}
	return w
}

// Atom writes an unquoted symbol.
func (w *Writer) Atom(s string) *Writer {
	w.raw(" ")
	w.raw(s)
	return w
}

// String writes a quoted string.
func (w *Writer) String(s string) *Writer {
	w.raw(" ")
	w.raw(quote(s))
	return w
}

// Int writes an integer.
func (w *Writer) Int(v int) *Writer {
	return w.Atom(strconv.Itoa(v))
}

// Float writes a float in the shortest exact form.
func (w *Writer) Float(v float64) *Writer {
	return w.Atom(strconv.FormatFloat(v, 'f', -1, 64))
}

// MM writes a length given in nanometres as millimetres.
func (w *Writer) MM(nm int64) *Writer {
	return w.Float(float64(nm) / MMToNanometers)
}

// Flush writes buffered output and returns the first error.
func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	w.err = w.w.Flush()
	return w.err
}

// Err returns the first write error. Output past the buffer size reaches the
// underlying writer before Flush, so long writers can stop early.
func (w *Writer) Err() error { return w.err }

func (w *Writer) raw(s string) {
	if w.err != nil {
		return
	}
	_, w.err = w.w.WriteString(s)
}

func needsQuote(s string) bool {
	return s == "" || strings.ContainsAny(s, " \t\n()\"\\")
}

func quote(s string) string {
	return strconv.Quote(s)
}
