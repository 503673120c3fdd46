// Package emit is the indentation-tracked text builder every generator
// writes through. Writers only append (level, text) records; the text is
// produced once, by Bytes.
package emit

import (
	"fmt"
	"strings"
)

// Options controls rendering.
type Options struct {
	IndentWidth int
	UseTabs     bool
}

func (o Options) withDefaults() Options {
	if o.IndentWidth <= 0 {
		o.IndentWidth = 2
	}
	return o
}

type record struct {
	level int
	text  string
	// join glues text onto the previous record instead of starting a line.
	join bool
}

// Writer accumulates generated source as an append-only record log.
type Writer struct {
	opt     Options
	records []record
	level   int
}

// New creates a writer. Each preset is written verbatim at level 0 and
// followed by a blank line.
func New(opt Options, presets ...string) *Writer {
	w := &Writer{opt: opt.withDefaults(), records: make([]record, 0, 64)}
	for _, p := range presets {
		for _, l := range strings.Split(strings.TrimRight(p, "\n"), "\n") {
			w.Line(l)
		}
		w.Blank()
	}
	return w
}

// Line starts a new line at the current level.
func (w *Writer) Line(s string) {
	w.records = append(w.records, record{level: w.level, text: s})
}

// Linef starts a new formatted line.
func (w *Writer) Linef(format string, args ...any) {
	w.Line(fmt.Sprintf(format, args...))
}

// Append continues the last line.
func (w *Writer) Append(s string) {
	w.records = append(w.records, record{level: w.level, text: s, join: true})
}

// Blank writes an empty line.
func (w *Writer) Blank() {
	w.records = append(w.records, record{})
}

// IndentPush increases the indentation level.
func (w *Writer) IndentPush() {
	w.level++
}

// IndentPop decreases the indentation level.
func (w *Writer) IndentPop() {
	if w.level > 0 {
		w.level--
	}
}

// Level reports the current indentation level.
func (w *Writer) Level() int {
	return w.level
}

// Block writes header, the body one level deeper, then a blank line.
func (w *Writer) Block(header string, body func()) {
	w.Line(header)
	w.IndentPush()
	body()
	w.IndentPop()
	w.Blank()
}

// Group writes header, the body one level deeper and tail back at the
// header's level. With join the header continues the last line, which is how
// nested literals hang off a key.
func (w *Writer) Group(header, tail string, join bool, body func()) {
	if join {
		w.Append(header)
	} else {
		w.Line(header)
	}
	w.IndentPush()
	body()
	w.IndentPop()
	w.Line(tail)
}

// Bytes renders the log. Trailing whitespace is trimmed from every line and
// the output ends with exactly one newline.
func (w *Writer) Bytes() []byte {
	var sb strings.Builder
	var cur strings.Builder
	started := false
	flush := func() {
		sb.WriteString(strings.TrimRight(cur.String(), " \t"))
		sb.WriteByte('\n')
		cur.Reset()
	}
	for _, r := range w.records {
		if r.join && started {
			cur.WriteString(r.text)
			continue
		}
		if started {
			flush()
		}
		started = true
		if r.text != "" {
			cur.WriteString(w.indent(r.level))
		}
		cur.WriteString(r.text)
	}
	if started {
		flush()
	}
	out := strings.TrimRight(sb.String(), "\n")
	if out == "" {
		return nil
	}
	return []byte(out + "\n")
}

// String renders the log as a string.
func (w *Writer) String() string {
	return string(w.Bytes())
}

func (w *Writer) indent(level int) string {
	if w.opt.UseTabs {
		return strings.Repeat("\t", level)
	}
	return strings.Repeat(" ", level*w.opt.IndentWidth)
}
