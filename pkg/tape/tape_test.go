package tape

import (
	"testing"
	"time"

	"github.com/aretw0/utm/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingDisplay struct {
	frames []Snapshot
	halts  []domain.HaltOutcome
}

func (d *recordingDisplay) Frame(s Snapshot) { d.frames = append(d.frames, s) }

func (d *recordingDisplay) Halt(o domain.HaltOutcome, s Snapshot) { d.halts = append(d.halts, o) }

func TestTape_ReadWriteMove(t *testing.T) {
	tp := New()
	assert.Equal(t, domain.DefaultBlank, tp.Read(), "untouched cell reads blank")

	tp.Write('1')
	tp.Move(domain.Right, false)
	tp.Write('1')
	tp.Move(domain.Left, false)
	tp.Move(domain.Left, false)
	assert.Equal(t, -1, tp.Head())
	assert.Equal(t, domain.DefaultBlank, tp.Read())

	tp.Write('x')
	assert.Equal(t, "x11", tp.Contents())

	lo, hi := tp.Bounds()
	assert.Equal(t, -1, lo)
	assert.Equal(t, 1, hi)
}

func TestTape_ContentsKeepsWrittenBlanks(t *testing.T) {
	tp := New()
	tp.LoadInput(domain.Symbols("1"))
	tp.Move(domain.Left, false)
	tp.Move(domain.Left, false)
	tp.Write(domain.DefaultBlank)
	assert.Equal(t, "001", tp.Contents(), "the gap and the written blank stay in the region")

	tp.LoadInput(domain.Symbols("10"))
	assert.Equal(t, "10", tp.Contents(), "a trailing blank from the input is not trimmed")
}

func TestTape_MoveNonRightGoesLeft(t *testing.T) {
	tp := New()
	tp.Move(domain.Reset, false)
	assert.Equal(t, -1, tp.Head(), "Reset passed to Move behaves as Left")
}

func TestTape_LoadInputClears(t *testing.T) {
	tp := New(WithBlank('_'))
	tp.Move(domain.Left, false)
	tp.Write('z')

	tp.LoadInput(domain.Symbols("abc"))
	assert.Equal(t, 0, tp.Head())
	assert.Equal(t, "abc", tp.Contents())
	assert.Equal(t, domain.Symbol('_'), tp.At(-1))
	assert.Equal(t, domain.Symbol('_'), tp.At(10))
}

func TestTape_Reset(t *testing.T) {
	tp := New()
	tp.LoadInput(domain.Symbols("111"))
	tp.Move(domain.Right, false)
	tp.Move(domain.Right, false)
	tp.Reset()
	assert.Equal(t, 0, tp.Head())
	assert.Equal(t, domain.Symbol('1'), tp.Read())
}

func TestTape_State(t *testing.T) {
	tp := New()
	tp.UpdateState("q1")
	assert.Equal(t, domain.State("q1"), tp.CurrentState())
}

func TestTape_Snapshot(t *testing.T) {
	tp := New()
	tp.LoadInput(domain.Symbols("ab"))
	tp.Move(domain.Left, false)
	tp.Write('z')
	tp.UpdateState("q3")

	s := tp.Snapshot()
	assert.Equal(t, "zab", s.String())
	assert.Equal(t, 1, s.Origin)
	assert.Equal(t, -1, s.Head)
	assert.Equal(t, 0, s.HeadIndex())
	assert.Equal(t, domain.State("q3"), s.State)
	assert.Equal(t, []domain.Symbol{'0', 'z', 'a'}, s.Window(3))

	// Snapshots are copies.
	tp.Write('y')
	assert.Equal(t, "zab", s.String())
}

func TestTape_DisplayAndFrameDelay(t *testing.T) {
	d := &recordingDisplay{}
	var slept []time.Duration
	tp := New(WithDisplay(d), WithFrameDelay(5*time.Millisecond))
	tp.sleep = func(d time.Duration) { slept = append(slept, d) }

	tp.Move(domain.Right, false)
	assert.Empty(t, d.frames, "non-animated moves do not render")

	tp.Move(domain.Right, true)
	tp.Move(domain.Left, true)
	require.Len(t, d.frames, 2)
	assert.Equal(t, 2, d.frames[0].Head)
	assert.Equal(t, []time.Duration{5 * time.Millisecond, 5 * time.Millisecond}, slept)

	tp.ReportHaltOutcome(domain.Accepted)
	assert.Equal(t, []domain.HaltOutcome{domain.Accepted}, d.halts)
	assert.Equal(t, domain.Accepted, tp.Outcome())
	assert.Equal(t, 1, tp.Reports())
}
