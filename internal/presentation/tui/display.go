package tui

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/aretw0/utm/pkg/domain"
	"github.com/aretw0/utm/pkg/tape"
	"github.com/muesli/termenv"
)

// DefaultWindow is the number of cells shown around the head.
const DefaultWindow = 21

var _ tape.Display = (*TapeDisplay)(nil)

// TapeDisplay draws the tape around the head, one line per frame.
type TapeDisplay struct {
	mu      sync.Mutex
	out     *termenv.Output
	w       io.Writer
	window  int
	inPlace bool
}

// DisplayOption configures a TapeDisplay.
type DisplayOption func(*TapeDisplay)

// WithWindow sets the number of cells drawn.
func WithWindow(n int) DisplayOption {
	return func(d *TapeDisplay) {
		if n > 0 {
			d.window = n
		}
	}
}

// WithProfile forces a colour profile (termenv.Ascii disables styling).
func WithProfile(p termenv.Profile) DisplayOption {
	return func(d *TapeDisplay) {
		d.out = termenv.NewOutput(d.w, termenv.WithProfile(p))
	}
}

// WithInPlace redraws frames over the previous line instead of scrolling.
func WithInPlace(inPlace bool) DisplayOption {
	return func(d *TapeDisplay) {
		d.inPlace = inPlace
	}
}

// NewTapeDisplay creates a display writing to w.
func NewTapeDisplay(w io.Writer, opts ...DisplayOption) *TapeDisplay {
	d := &TapeDisplay{
		w:      w,
		out:    termenv.NewOutput(w),
		window: DefaultWindow,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Frame draws one animation frame.
func (d *TapeDisplay) Frame(s tape.Snapshot) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.inPlace {
		fmt.Fprintf(d.w, "\r%s", d.line(s))
		return
	}
	fmt.Fprintln(d.w, d.line(s))
}

// Halt draws the final tape and the outcome.
func (d *TapeDisplay) Halt(outcome domain.HaltOutcome, s tape.Snapshot) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.inPlace {
		fmt.Fprint(d.w, "\r")
	}
	fmt.Fprintln(d.w, d.line(s))

	color := "#22c55e"
	if outcome == domain.Rejected {
		color = "#ef4444"
	}
	label := d.out.String(outcome.String()).Bold().Foreground(d.out.Color(color))
	fmt.Fprintf(d.w, "%s  tape=%s\n", label, s.String())
}

// line renders the window around the head; the head cell is bracketed and reversed.
func (d *TapeDisplay) line(s tape.Snapshot) string {
	cells := s.Window(d.window)
	center := d.window / 2
	parts := make([]string, len(cells))
	for i, c := range cells {
		if i == center {
			parts[i] = d.out.String("[" + c.String() + "]").Reverse().String()
			continue
		}
		parts[i] = " " + c.String() + " "
	}
	return fmt.Sprintf("%-8s %s", s.State, strings.Join(parts, ""))
}
