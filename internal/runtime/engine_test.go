package runtime_test

import (
	"context"
	"testing"

	"github.com/aretw0/utm/internal/runtime"
	"github.com/aretw0/utm/pkg/domain"
	"github.com/aretw0/utm/pkg/tape"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rule(from domain.State, read rune, to domain.State, write rune, move domain.Direction) domain.Rule {
	return domain.Rule{From: from, Read: domain.Symbol(read), To: to, Write: domain.Symbol(write), Move: move}
}

func newEngine(t *testing.T, variant domain.Variant, rules []domain.Rule, opts ...runtime.EngineOption) (*runtime.Engine, *tape.Tape) {
	t.Helper()
	cfg := domain.NewMachineConfig(len(rules), "q0")
	engine, err := runtime.NewEngine(cfg, domain.NewRuleTable(len(rules), rules...), variant, opts...)
	require.NoError(t, err)
	tp := tape.New()
	engine.Bind(tp)
	return engine, tp
}

func TestEngine_ScenarioAccept(t *testing.T) {
	engine, tp := newEngine(t, domain.Classical, []domain.Rule{
		rule("q0", '1', "q1", '0', domain.Right),
		rule("q1", '0', "qa", '1', domain.Right),
	})
	require.NoError(t, engine.Prepare(domain.Symbols("1")))

	var steps int
	run, err := engine.Begin(context.Background())
	require.NoError(t, err)
	for !run.Halted {
		run, err = engine.Step(context.Background(), run)
		require.NoError(t, err)
		steps++
	}

	outcome, err := engine.Finish(context.Background(), run)
	require.NoError(t, err)
	assert.Equal(t, domain.Accepted, outcome)
	assert.Equal(t, 2, steps)
	assert.Equal(t, 2, run.Steps)
	assert.Equal(t, 1, run.LastRule)
	assert.Equal(t, "01", tp.Contents())
	assert.Equal(t, domain.State("qa"), tp.CurrentState())
	assert.Equal(t, 1, tp.Reports(), "outcome is reported exactly once")
	assert.Equal(t, domain.Accepted, tp.Outcome())
}

func TestEngine_ScenarioUndefinedTransition(t *testing.T) {
	engine, tp := newEngine(t, domain.Classical, []domain.Rule{
		rule("q0", '1', "qa", '1', domain.Right),
	})
	require.NoError(t, engine.Prepare(nil))

	_, err := engine.Run(context.Background())
	require.ErrorIs(t, err, domain.ErrUndefinedTransition)

	var undefined *domain.UndefinedTransitionError
	require.ErrorAs(t, err, &undefined)
	assert.Equal(t, domain.State("q0"), undefined.State)
	assert.Equal(t, domain.DefaultBlank, undefined.Symbol)
	assert.Equal(t, 0, undefined.Step)
	assert.Zero(t, tp.Reports(), "aborted runs report no outcome")
}

func TestEngine_ScenarioLeftResetLoop(t *testing.T) {
	engine, tp := newEngine(t, domain.LeftReset, []domain.Rule{
		rule("q0", '1', "q0", '1', domain.Reset),
	})
	require.NoError(t, engine.Prepare(domain.Symbols("1")))
	for range 5 {
		tp.Move(domain.Right, false)
	}
	tp.Write('1')
	require.Equal(t, 5, tp.Head())

	ctx := context.Background()
	run, err := engine.Begin(ctx)
	require.NoError(t, err)

	run, err = engine.Step(ctx, run)
	require.NoError(t, err)
	assert.Equal(t, 0, tp.Head())
	assert.Equal(t, domain.State("q0"), run.State)
	assert.False(t, run.Halted)

	// Never halts; only a bounded prefix is checked.
	for range 50 {
		run, err = engine.Step(ctx, run)
		require.NoError(t, err)
		require.False(t, run.Halted)
		require.Equal(t, 0, tp.Head())
	}
	assert.Equal(t, 51, run.Steps)
}

func TestEngine_LeftResetRewindLaw(t *testing.T) {
	for _, dir := range []domain.Direction{domain.Left, domain.Reset} {
		for start := 0; start < 8; start++ {
			engine, tp := newEngine(t, domain.LeftReset, []domain.Rule{
				rule("q0", '1', "q1", 'x', dir),
			})
			require.NoError(t, engine.Prepare(domain.Symbols("11111111")))
			for range start {
				tp.Move(domain.Right, false)
			}

			run, err := engine.Begin(context.Background())
			require.NoError(t, err)
			_, err = engine.Step(context.Background(), run)
			require.NoError(t, err)
			assert.Equal(t, 0, tp.Head(), "direction %s from position %d", dir, start)
			assert.Equal(t, domain.Symbol('x'), tp.At(start))
		}
	}

	t.Run("Right Still Moves", func(t *testing.T) {
		engine, tp := newEngine(t, domain.LeftReset, []domain.Rule{
			rule("q0", '1', "q1", '1', domain.Right),
		})
		require.NoError(t, engine.Prepare(domain.Symbols("1")))
		run, _ := engine.Begin(context.Background())
		_, err := engine.Step(context.Background(), run)
		require.NoError(t, err)
		assert.Equal(t, 1, tp.Head())
	})
}

func TestEngine_ClassicalNonRightMovesLeft(t *testing.T) {
	for _, dir := range []domain.Direction{domain.Left, domain.Reset} {
		engine, tp := newEngine(t, domain.Classical, []domain.Rule{
			rule("q0", '1', "q1", '1', dir),
		})
		require.NoError(t, engine.Prepare(domain.Symbols("11")))
		tp.Move(domain.Right, false)

		run, _ := engine.Begin(context.Background())
		_, err := engine.Step(context.Background(), run)
		require.NoError(t, err)
		assert.Equal(t, 0, tp.Head(), "direction %s", dir)
	}
}

func TestEngine_BusyBeaverSeedingLaw(t *testing.T) {
	for n := 0; n <= runtime.BusyBeaverWidth; n++ {
		input := make([]domain.Symbol, n)
		for i := range input {
			input[i] = '1'
		}
		engine, tp := newEngine(t, domain.BusyBeaver, []domain.Rule{
			rule("q0", '0', "qa", '1', domain.Right),
		})
		require.NoError(t, engine.Prepare(input))

		assert.Equal(t, runtime.BusyBeaverWidth, tp.Len(), "input length %d", n)
		assert.Equal(t, runtime.BusyBeaverOffset, tp.Head(), "input length %d", n)
		lo, _ := tp.Bounds()
		assert.Equal(t, 0, lo)
		for pos := n; pos < runtime.BusyBeaverWidth; pos++ {
			assert.Equal(t, domain.DefaultBlank, tp.At(pos))
		}
		assert.Equal(t, domain.State("q0"), tp.CurrentState())
	}

	t.Run("Long Input Is Not Truncated", func(t *testing.T) {
		engine, tp := newEngine(t, domain.BusyBeaver, []domain.Rule{
			rule("q0", '1', "qa", '1', domain.Right),
		})
		require.NoError(t, engine.Prepare(domain.Symbols("1111111111111111111111111")))
		assert.Equal(t, 25, tp.Len())
		assert.Equal(t, runtime.BusyBeaverOffset, tp.Head())
	})

	t.Run("Seeding Is Not Animated", func(t *testing.T) {
		display := &countingDisplay{}
		cfg := domain.NewMachineConfig(1, "q0")
		engine, err := runtime.NewEngine(cfg, domain.NewRuleTable(1, rule("q0", '0', "qa", '1', domain.Right)),
			domain.BusyBeaver, runtime.WithAnimation(true))
		require.NoError(t, err)
		tp := tape.New(tape.WithDisplay(display))
		engine.Bind(tp)

		require.NoError(t, engine.Prepare(nil))
		assert.Zero(t, display.frames)

		outcome, err := engine.Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, domain.Accepted, outcome)
		assert.Equal(t, 1, display.frames, "rule-driven moves are animated")
		assert.Equal(t, 1, display.halts)
	})
}

type countingDisplay struct {
	frames int
	halts  int
}

func (d *countingDisplay) Frame(tape.Snapshot)                    { d.frames++ }
func (d *countingDisplay) Halt(domain.HaltOutcome, tape.Snapshot) { d.halts++ }

type traceEntry struct {
	Step  int
	Index int
	Read  domain.Symbol
}

func TestEngine_Determinism(t *testing.T) {
	rules := []domain.Rule{
		rule("q0", '1', "q0", '1', domain.Right),
		rule("q0", '0', "q1", '1', domain.Left),
		rule("q1", '1', "q1", '1', domain.Left),
		rule("q1", '0', "qa", '0', domain.Right),
	}

	trace := func() ([]traceEntry, domain.HaltOutcome, string) {
		var entries []traceEntry
		hooks := domain.LifecycleHooks{
			OnStep: func(_ context.Context, e *domain.StepEvent) {
				entries = append(entries, traceEntry{Step: e.Step, Index: e.RuleIndex, Read: e.Read})
			},
		}
		engine, tp := newEngine(t, domain.Classical, rules, runtime.WithLifecycleHooks(hooks))
		require.NoError(t, engine.Prepare(domain.Symbols("111")))
		outcome, err := engine.Run(context.Background())
		require.NoError(t, err)
		return entries, outcome, tp.Contents()
	}

	first, outcome1, tape1 := trace()
	second, outcome2, tape2 := trace()
	assert.Equal(t, first, second)
	assert.Equal(t, outcome1, outcome2)
	assert.Equal(t, tape1, tape2)
	assert.Equal(t, domain.Accepted, outcome1)
	assert.Equal(t, "01111", tape1)
	assert.Len(t, first, 8)
}

func TestEngine_Rejected(t *testing.T) {
	engine, tp := newEngine(t, domain.Classical, []domain.Rule{
		rule("q0", '0', "qr", '0', domain.Right),
	})
	require.NoError(t, engine.Prepare(nil))

	outcome, err := engine.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.Rejected, outcome)
	assert.Equal(t, domain.Rejected, tp.Outcome())
}

func TestEngine_FirstStepAlwaysRuns(t *testing.T) {
	cfg := domain.NewMachineConfig(1, "qa")
	engine, err := runtime.NewEngine(cfg, domain.NewRuleTable(1, rule("qa", '1', "qr", '1', domain.Right)), domain.Classical)
	require.NoError(t, err)
	tp := tape.New()
	engine.Bind(tp)
	require.NoError(t, engine.Prepare(domain.Symbols("1")))

	outcome, err := engine.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.Rejected, outcome, "terminal check happens after the step")
}

func TestEngine_LookupRespectsRuleCount(t *testing.T) {
	rules := domain.NewRuleTable(2,
		rule("q0", '1', "q0", '1', domain.Right),
		rule("q0", '0', "qa", '0', domain.Right),
	)
	cfg := domain.NewMachineConfig(1, "q0")
	engine, err := runtime.NewEngine(cfg, rules, domain.Classical)
	require.NoError(t, err)
	assert.Equal(t, 1, engine.Rules().Count())

	engine.Bind(tape.New())
	require.NoError(t, engine.Prepare(domain.Symbols("1")))
	_, err = engine.Run(context.Background())
	assert.ErrorIs(t, err, domain.ErrUndefinedTransition, "rule beyond the rule count is not searched")
}

func TestEngine_MissingTape(t *testing.T) {
	var faults []*domain.FaultEvent
	hooks := domain.LifecycleHooks{
		OnFault: func(_ context.Context, e *domain.FaultEvent) { faults = append(faults, e) },
	}
	cfg := domain.NewMachineConfig(1, "q0")
	engine, err := runtime.NewEngine(cfg, domain.NewRuleTable(1, rule("q0", '0', "qa", '0', domain.Right)),
		domain.Classical, runtime.WithLifecycleHooks(hooks))
	require.NoError(t, err)

	_, err = engine.Run(context.Background())
	assert.ErrorIs(t, err, domain.ErrMissingTape)
	require.Len(t, faults, 1)
	assert.Equal(t, 0, faults[0].Steps)
	assert.Equal(t, domain.EventFault, faults[0].Type)

	assert.ErrorIs(t, engine.Prepare(nil), domain.ErrMissingTape)
	require.Len(t, faults, 2, "a missing tape at prepare time is reported too")
	assert.ErrorIs(t, faults[1].Err, domain.ErrMissingTape)
}

func TestNewEngine_Errors(t *testing.T) {
	cfg := domain.NewMachineConfig(1, "q0")
	rules := domain.NewRuleTable(1, rule("q0", '0', "qa", '0', domain.Right))

	t.Run("Unknown Variant", func(t *testing.T) {
		_, err := runtime.NewEngine(cfg, rules, domain.Variant(42))
		assert.ErrorIs(t, err, domain.ErrUnknownVariant)
	})

	t.Run("Invalid Config", func(t *testing.T) {
		bad := cfg
		bad.AcceptState = bad.RejectState
		_, err := runtime.NewEngine(bad, rules, domain.Classical)
		assert.Error(t, err)
	})

	t.Run("Duplicate Pair", func(t *testing.T) {
		dup := domain.NewRuleTable(2,
			rule("q0", '0', "qa", '0', domain.Right),
			rule("q0", '0', "qr", '0', domain.Right),
		)
		_, err := runtime.NewEngine(domain.NewMachineConfig(2, "q0"), dup, domain.Classical)
		require.ErrorIs(t, err, domain.ErrMalformedRuleTable)

		var malformed *domain.MalformedRuleTableError
		require.ErrorAs(t, err, &malformed)
		assert.Equal(t, 1, malformed.Rule)
	})

	t.Run("Duplicate Beyond Rule Count", func(t *testing.T) {
		dup := domain.NewRuleTable(2,
			rule("q0", '0', "qa", '0', domain.Right),
			rule("q0", '0', "qr", '0', domain.Right),
		)
		_, err := runtime.NewEngine(domain.NewMachineConfig(1, "q0"), dup, domain.Classical)
		assert.NoError(t, err)
	})
}

func TestEngine_HaltHooks(t *testing.T) {
	var halts []*domain.HaltEvent
	var steps int
	hooks := domain.LifecycleHooks{
		OnStep: func(context.Context, *domain.StepEvent) { steps++ },
		OnHalt: func(_ context.Context, e *domain.HaltEvent) { halts = append(halts, e) },
	}
	engine, _ := newEngine(t, domain.Classical, []domain.Rule{
		rule("q0", '1', "q1", '0', domain.Right),
		rule("q1", '0', "qa", '1', domain.Right),
	}, runtime.WithLifecycleHooks(hooks))
	require.NoError(t, engine.Prepare(domain.Symbols("1")))

	_, err := engine.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, steps)
	require.Len(t, halts, 1)
	assert.Equal(t, domain.Accepted, halts[0].Outcome)
	assert.Equal(t, 2, halts[0].Steps)
	assert.Equal(t, domain.Classical, halts[0].Variant)
}

func TestEngine_FinishRequiresHalt(t *testing.T) {
	engine, _ := newEngine(t, domain.Classical, []domain.Rule{
		rule("q0", '1', "q0", '1', domain.Right),
	})
	require.NoError(t, engine.Prepare(domain.Symbols("1")))
	run, err := engine.Begin(context.Background())
	require.NoError(t, err)

	_, err = engine.Finish(context.Background(), run)
	assert.Error(t, err)

	// A halted run is not stepped again.
	halted := domain.RunState{State: "qa", Halted: true, Outcome: domain.Accepted, Steps: 3}
	again, err := engine.Step(context.Background(), halted)
	require.NoError(t, err)
	assert.Equal(t, halted, again)
}
