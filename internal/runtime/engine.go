package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/utm/internal/logging"
	"github.com/aretw0/utm/pkg/domain"
	"github.com/aretw0/utm/pkg/ports"
)

// Engine is the fetch-execute loop of a single Turing machine.
// The rule table and config are fixed at construction; the tape is bound later.
// An Engine drives one run at a time.
type Engine struct {
	cfg      domain.MachineConfig
	rules    *domain.RuleTable
	policy   Policy
	tape     ports.Tape
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
	animated bool
	now      func() time.Time
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithAnimation makes rule-driven head moves animated.
func WithAnimation(animated bool) EngineOption {
	return func(e *Engine) {
		e.animated = animated
	}
}

// NewEngine binds a config, a rule table and a variant policy.
// Lookups never go past cfg.RuleCount rules, and that prefix must be deterministic.
func NewEngine(cfg domain.MachineConfig, rules *domain.RuleTable, variant domain.Variant, opts ...EngineOption) (*Engine, error) {
	policy, err := PolicyFor(variant)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid machine config: %w", err)
	}
	rules = rules.Limit(cfg.RuleCount)
	if dups := rules.Duplicates(); len(dups) > 0 {
		d := dups[0]
		return nil, &domain.MalformedRuleTableError{
			Rule:   d.Indexes[1],
			Reason: fmt.Sprintf("duplicate transition for (%s, %q)", d.State, rune(d.Symbol)),
		}
	}

	e := &Engine{
		cfg:    cfg,
		rules:  rules,
		policy: policy,
		logger: logging.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With("variant", variant.String())
	return e, nil
}

// Bind attaches the tape/head collaborator.
func (e *Engine) Bind(tape ports.Tape) {
	e.tape = tape
}

// Config returns the machine config.
func (e *Engine) Config() domain.MachineConfig {
	return e.cfg
}

// Rules returns the searchable rule table.
func (e *Engine) Rules() *domain.RuleTable {
	return e.rules
}

// Variant returns the bound variant.
func (e *Engine) Variant() domain.Variant {
	return e.policy.Variant
}

// Prepare seeds the bound tape with input and puts the head in the initial state.
func (e *Engine) Prepare(input []domain.Symbol) error {
	if e.tape == nil {
		err := domain.ErrMissingTape
		e.fault(context.Background(), 0, err)
		return err
	}
	e.policy.PrepareTape(e.tape, input, e.cfg.Blank)
	e.tape.UpdateState(e.cfg.InitialState)
	return nil
}

// Begin opens a run from the head's current state.
func (e *Engine) Begin(ctx context.Context) (domain.RunState, error) {
	if e.tape == nil {
		err := domain.ErrMissingTape
		e.fault(ctx, 0, err)
		return domain.RunState{}, err
	}
	return domain.NewRunState(e.tape.CurrentState()), nil
}

// Step executes one transition: read, lookup, write, directive, state update and
// terminal check. A run that is already halted is returned unchanged.
func (e *Engine) Step(ctx context.Context, run domain.RunState) (domain.RunState, error) {
	if run.Halted {
		return run, nil
	}
	if e.tape == nil {
		e.fault(ctx, run.Steps, domain.ErrMissingTape)
		return run, domain.ErrMissingTape
	}

	state := e.tape.CurrentState()
	read := e.tape.Read()
	idx, ok := e.rules.Lookup(state, read)
	if !ok {
		err := &domain.UndefinedTransitionError{State: state, Symbol: read, Step: run.Steps}
		e.fault(ctx, run.Steps, err)
		return run, err
	}
	rule := e.rules.Rule(idx)

	e.tape.Write(rule.Write)
	e.policy.OnDirective(e.tape, rule.Move, e.animated)
	e.tape.UpdateState(rule.To)

	next := domain.RunState{
		State:    rule.To,
		LastRule: idx,
		Steps:    run.Steps + 1,
	}
	if outcome, terminal := e.cfg.Classify(rule.To); terminal {
		next.Halted = true
		next.Outcome = outcome
	}

	e.logger.DebugContext(ctx, "step", "step", next.Steps, "rule", idx, "from", state, "read", read.String(), "to", rule.To)
	if e.hooks.OnStep != nil {
		e.hooks.OnStep(ctx, &domain.StepEvent{
			EventBase: e.base(domain.EventStep),
			Step:      next.Steps,
			RuleIndex: idx,
			Rule:      rule,
			Read:      read,
		})
	}
	return next, nil
}

// Finish reports the outcome of a halted run to the tape.
// It must be called once per run.
func (e *Engine) Finish(ctx context.Context, run domain.RunState) (domain.HaltOutcome, error) {
	if !run.Halted {
		return 0, fmt.Errorf("run has not halted (state %q after %d steps)", run.State, run.Steps)
	}
	if e.tape == nil {
		return 0, domain.ErrMissingTape
	}
	e.tape.ReportHaltOutcome(run.Outcome)

	e.logger.InfoContext(ctx, "machine halted", "outcome", run.Outcome.String(), "state", run.State, "steps", run.Steps)
	if e.hooks.OnHalt != nil {
		e.hooks.OnHalt(ctx, &domain.HaltEvent{
			EventBase: e.base(domain.EventHalt),
			Outcome:   run.Outcome,
			State:     run.State,
			Steps:     run.Steps,
		})
	}
	return run.Outcome, nil
}

// Run executes steps until the machine halts, then reports the outcome.
// There is no step limit: a machine that never halts never returns.
func (e *Engine) Run(ctx context.Context) (domain.HaltOutcome, error) {
	run, err := e.Begin(ctx)
	if err != nil {
		return 0, err
	}
	for {
		run, err = e.Step(ctx, run)
		if err != nil {
			return 0, err
		}
		if run.Halted {
			return e.Finish(ctx, run)
		}
	}
}

func (e *Engine) fault(ctx context.Context, steps int, err error) {
	e.logger.ErrorContext(ctx, "run aborted", "steps", steps, "error", err)
	if e.hooks.OnFault != nil {
		e.hooks.OnFault(ctx, &domain.FaultEvent{
			EventBase: e.base(domain.EventFault),
			Steps:     steps,
			Err:       err,
		})
	}
}

func (e *Engine) base(t domain.EventType) domain.EventBase {
	return domain.EventBase{
		Timestamp: e.now(),
		Type:      t,
		Variant:   e.policy.Variant,
	}
}
