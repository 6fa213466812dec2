// Package render draws the live multi-task status display.
//
// Terminal layout:
//
//	Downloading binaries: 1 / 2
//	    [X] Wildfly => Downloaded: 180 MiB
//	    [ ] JDBC PostgreSQL => 40% 0/1 MiB
//	<blank>
//
// On a terminal every frame replaces the previous one in place. On other writers
// a frame is written only when the completed or failed count changes.
package render

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"
)

// ANSI escape codes for cursor control
const (
	clearLine = "\033[2K"
	cursorUp  = "\033[1A"
)

// State of one line.
type State int

const (
	Pending State = iota
	Completed
	Failed
)

// Line is one task row.
type Line struct {
	State State
	Text  string
}

// Frame is a full render of one phase.
type Frame struct {
	Title     string
	Completed int
	Total     int
	Lines     []Line
}

// Renderer writes frames to an output.
type Renderer struct {
	mu            sync.Mutex
	out           io.Writer
	inPlace       bool
	drawnLines    int
	lastTitle     string
	lastCompleted int
	lastFailed    int
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithInPlace forces in-place redraw on or off instead of detecting a terminal.
func WithInPlace(inPlace bool) Option {
	return func(r *Renderer) {
		r.inPlace = inPlace
	}
}

// New returns a renderer writing to out.
func New(out io.Writer, opts ...Option) *Renderer {
	r := &Renderer{
		out:           out,
		inPlace:       IsTerminal(out),
		lastCompleted: -1,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// IsTerminal reports whether w is connected to a terminal.
func IsTerminal(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return term.IsTerminal(int(f.Fd()))
	}
	return false
}

// Draw renders f, replacing the previous frame of the same phase.
func (r *Renderer) Draw(f Frame) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if f.Title != r.lastTitle {
		r.drawnLines = 0
		r.lastCompleted = -1
		r.lastFailed = 0
		r.lastTitle = f.Title
	}
	failed := f.Failed()
	if !r.inPlace && f.Completed == r.lastCompleted && failed == r.lastFailed {
		return
	}
	r.lastCompleted = f.Completed
	r.lastFailed = failed

	var b strings.Builder
	if r.inPlace {
		b.WriteString(strings.Repeat(cursorUp+clearLine, r.drawnLines))
	}
	b.WriteString(FormatFrame(f))
	fmt.Fprint(r.out, b.String())
	r.drawnLines = len(f.Lines) + 2
}

// Finish ends the current phase so the next frame starts below it.
func (r *Renderer) Finish() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.drawnLines = 0
	r.lastCompleted = -1
	r.lastFailed = 0
	r.lastTitle = ""
}

// Failed counts the failed lines of f.
func (f Frame) Failed() int {
	n := 0
	for _, line := range f.Lines {
		if line.State == Failed {
			n++
		}
	}
	return n
}

// FormatFrame returns the text of f without cursor control.
func FormatFrame(f Frame) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %d / %d\n", f.Title, f.Completed, f.Total)
	for _, line := range f.Lines {
		fmt.Fprintf(&b, "    [%s] %s\n", marker(line.State), line.Text)
	}
	b.WriteString("\n")
	return b.String()
}

func marker(s State) string {
	switch s {
	case Completed:
		return "X"
	case Failed:
		return "!"
	default:
		return " "
	}
}
