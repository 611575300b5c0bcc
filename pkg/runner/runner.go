package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/utm/internal/logging"
	"github.com/aretw0/utm/internal/runtime"
	"github.com/aretw0/utm/pkg/domain"
	"github.com/aretw0/utm/pkg/ports"
	"github.com/aretw0/utm/pkg/tape"
	"github.com/google/uuid"
)

// Runner executes machines with a step budget and optional persistence.
// A Runner holds no per-run state and is safe for concurrent use.
type Runner struct {
	// MaxSteps aborts runs that have not halted after this many steps.
	// Zero or less means unbounded.
	MaxSteps int

	// Animated makes rule-driven head moves render display frames.
	Animated bool

	// Display receives tape frames and the halt report. Optional.
	Display    tape.Display
	FrameDelay time.Duration

	// Store receives the record of every run, including aborted ones.
	// If nil, runs are not persisted.
	Store ports.RunStore

	// Logger is used for run logging.
	// If nil, a no-op logger is used.
	Logger *slog.Logger

	// Hooks are passed to every engine.
	Hooks domain.LifecycleHooks

	newID func() string
	now   func() time.Time
}

// NewRunner creates a Runner. The default budget is DefaultMaxSteps, overridden by
// UTM_MAX_STEPS and then by options.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		MaxSteps: DefaultMaxSteps,
		Logger:   logging.NewNop(),
		newID:    uuid.NewString,
		now:      time.Now,
	}
	if n, ok := maxStepsFromEnv(); ok {
		r.MaxSteps = n
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes desc on input until it halts, the budget runs out, the context is
// cancelled or the engine faults. The returned record is non-nil whenever the
// run started, even on error.
func (r *Runner) Run(ctx context.Context, desc *domain.MachineDescription, input string) (*domain.RunRecord, error) {
	if err := desc.Validate(); err != nil {
		return nil, err
	}

	id := r.runID()
	logger := r.logger().With("run", id, "machine", desc.Name)

	tapeOpts := []tape.Option{tape.WithBlank(desc.Config.Blank)}
	if r.Display != nil {
		tapeOpts = append(tapeOpts, tape.WithDisplay(r.Display), tape.WithFrameDelay(r.FrameDelay))
	}
	tp := tape.New(tapeOpts...)

	engine, err := runtime.NewEngine(desc.Config, desc.Rules, desc.Variant,
		runtime.WithLogger(logger),
		runtime.WithLifecycleHooks(r.Hooks),
		runtime.WithAnimation(r.Animated),
	)
	if err != nil {
		return nil, err
	}
	engine.Bind(tp)

	rec := &domain.RunRecord{
		ID:        id,
		Machine:   desc.Name,
		Variant:   desc.Variant,
		Input:     input,
		StartedAt: r.clock(),
	}

	steps, runErr := r.execute(ctx, engine, input)
	if runErr == nil {
		rec.Outcome = tp.Outcome()
	} else {
		rec.Error = runErr.Error()
		if isAbort(runErr) {
			r.abort(ctx, desc.Variant, steps, runErr)
		}
	}
	rec.Steps = steps
	rec.Tape = tp.Contents()
	rec.Head = tp.Head()
	rec.State = tp.CurrentState()
	rec.FinishedAt = r.clock()

	if r.Store != nil {
		// Persist with a fresh context so cancelled runs are still recorded.
		if err := r.Store.Save(context.WithoutCancel(ctx), rec); err != nil {
			logger.ErrorContext(ctx, "failed to save run", "error", err)
			return rec, errors.Join(runErr, fmt.Errorf("failed to save run %s: %w", id, err))
		}
	}
	return rec, runErr
}

func (r *Runner) execute(ctx context.Context, engine *runtime.Engine, input string) (int, error) {
	if err := engine.Prepare(domain.Symbols(input)); err != nil {
		return 0, err
	}
	run, err := engine.Begin(ctx)
	if err != nil {
		return 0, err
	}
	for !run.Halted {
		if err := ctx.Err(); err != nil {
			return run.Steps, fmt.Errorf("run interrupted after %d steps: %w", run.Steps, err)
		}
		if r.MaxSteps > 0 && run.Steps >= r.MaxSteps {
			return run.Steps, fmt.Errorf("%w: %d steps without halting", domain.ErrStepBudgetExceeded, run.Steps)
		}
		run, err = engine.Step(ctx, run)
		if err != nil {
			return run.Steps, err
		}
	}
	if _, err := engine.Finish(ctx, run); err != nil {
		return run.Steps, err
	}
	return run.Steps, nil
}

// abort reports runs stopped by the runner itself; engine faults are reported by the engine.
func (r *Runner) abort(ctx context.Context, variant domain.Variant, steps int, err error) {
	r.logger().WarnContext(ctx, "run stopped", "steps", steps, "error", err)
	if r.Hooks.OnFault != nil {
		r.Hooks.OnFault(ctx, &domain.FaultEvent{
			EventBase: domain.EventBase{Timestamp: r.clock(), Type: domain.EventFault, Variant: variant},
			Steps:     steps,
			Err:       err,
		})
	}
}

func isAbort(err error) bool {
	return errors.Is(err, domain.ErrStepBudgetExceeded) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger == nil {
		return logging.NewNop()
	}
	return r.Logger
}

func (r *Runner) runID() string {
	if r.newID == nil {
		return uuid.NewString()
	}
	return r.newID()
}

func (r *Runner) clock() time.Time {
	if r.now == nil {
		return time.Now()
	}
	return r.now()
}
