// Package tape provides the in-process tape/head collaborator used by hosts of the engine.
package tape

import (
	"strings"
	"time"

	"github.com/aretw0/utm/pkg/domain"
	"github.com/aretw0/utm/pkg/ports"
)

var _ ports.Tape = (*Tape)(nil)

// Display renders tape motion. Implementations must not retain the snapshot's slices.
type Display interface {
	// Frame is called after every animated head motion.
	Frame(s Snapshot)
	// Halt is called once, when the run reports its outcome.
	Halt(outcome domain.HaltOutcome, s Snapshot)
}

// Tape is an unbounded, origin-anchored tape with a single head.
// Non-negative positions live in right, negative positions in left (left[i] is position -(i+1)).
// Not safe for concurrent use: a Tape belongs to a single run.
type Tape struct {
	right []domain.Symbol
	left  []domain.Symbol

	head  int
	state domain.State
	blank domain.Symbol

	outcome domain.HaltOutcome
	reports int

	display    Display
	frameDelay time.Duration
	sleep      func(time.Duration)
}

// Option configures a Tape.
type Option func(*Tape)

// WithBlank sets the blank symbol returned for never-written cells.
func WithBlank(blank domain.Symbol) Option {
	return func(t *Tape) {
		t.blank = blank
	}
}

// WithDisplay attaches a display that receives animation frames and the halt report.
func WithDisplay(d Display) Option {
	return func(t *Tape) {
		t.display = d
	}
}

// WithFrameDelay sets the pause after each animated frame.
func WithFrameDelay(d time.Duration) Option {
	return func(t *Tape) {
		t.frameDelay = d
	}
}

// New creates an empty tape with the head at the origin.
func New(opts ...Option) *Tape {
	t := &Tape{
		blank: domain.DefaultBlank,
		sleep: time.Sleep,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Tape) cell(pos int) domain.Symbol {
	if pos >= 0 {
		if pos < len(t.right) {
			return t.right[pos]
		}
		return t.blank
	}
	i := -pos - 1
	if i < len(t.left) {
		return t.left[i]
	}
	return t.blank
}

func (t *Tape) set(pos int, sym domain.Symbol) {
	if pos >= 0 {
		for len(t.right) <= pos {
			t.right = append(t.right, t.blank)
		}
		t.right[pos] = sym
		return
	}
	i := -pos - 1
	for len(t.left) <= i {
		t.left = append(t.left, t.blank)
	}
	t.left[i] = sym
}

// Read returns the symbol under the head.
func (t *Tape) Read() domain.Symbol {
	return t.cell(t.head)
}

// Write overwrites the cell under the head.
func (t *Tape) Write(sym domain.Symbol) {
	t.set(t.head, sym)
}

// Move shifts the head right for domain.Right and left for anything else.
func (t *Tape) Move(dir domain.Direction, animated bool) {
	if dir == domain.Right {
		t.head++
	} else {
		t.head--
	}
	if animated {
		t.frame()
	}
}

// Reset rewinds the head to the origin.
func (t *Tape) Reset() {
	t.head = 0
	if t.display != nil {
		t.display.Frame(t.Snapshot())
	}
}

// CurrentState returns the head state.
func (t *Tape) CurrentState() domain.State {
	return t.state
}

// UpdateState sets the head state.
func (t *Tape) UpdateState(state domain.State) {
	t.state = state
}

// LoadInput clears the tape and writes symbols starting at the origin.
// The head is placed on the origin.
func (t *Tape) LoadInput(symbols []domain.Symbol) {
	t.right = make([]domain.Symbol, len(symbols))
	copy(t.right, symbols)
	t.left = nil
	t.head = 0
}

// ReportHaltOutcome records the outcome and notifies the display.
func (t *Tape) ReportHaltOutcome(outcome domain.HaltOutcome) {
	t.outcome = outcome
	t.reports++
	if t.display != nil {
		t.display.Halt(outcome, t.Snapshot())
	}
}

// Head returns the absolute head position (the origin is 0).
func (t *Tape) Head() int {
	return t.head
}

// Outcome returns the reported outcome, or 0 if the run has not halted.
func (t *Tape) Outcome() domain.HaltOutcome {
	return t.outcome
}

// Reports counts ReportHaltOutcome calls.
func (t *Tape) Reports() int {
	return t.reports
}

// Blank returns the blank symbol.
func (t *Tape) Blank() domain.Symbol {
	return t.blank
}

// Bounds returns the lowest and highest populated positions.
// An empty tape reports (0, -1).
func (t *Tape) Bounds() (lo, hi int) {
	return -len(t.left), len(t.right) - 1
}

// Len is the length of the populated region.
func (t *Tape) Len() int {
	return len(t.left) + len(t.right)
}

// At returns the symbol at an absolute position.
func (t *Tape) At(pos int) domain.Symbol {
	return t.cell(pos)
}

// Contents returns the populated region as a string, lowest position first.
// The region spans every cell that was loaded or written, so blanks inside it
// (and blanks written at its edges) are kept; the blank symbol is often a digit.
func (t *Tape) Contents() string {
	var sb strings.Builder
	lo, hi := t.Bounds()
	for pos := lo; pos <= hi; pos++ {
		sb.WriteRune(rune(t.cell(pos)))
	}
	return sb.String()
}

func (t *Tape) frame() {
	if t.display == nil {
		return
	}
	t.display.Frame(t.Snapshot())
	if t.frameDelay > 0 {
		t.sleep(t.frameDelay)
	}
}
