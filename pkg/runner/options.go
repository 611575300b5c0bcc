package runner

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/aretw0/utm/pkg/domain"
	"github.com/aretw0/utm/pkg/ports"
	"github.com/aretw0/utm/pkg/tape"
)

// DefaultMaxSteps bounds runs when neither an option nor UTM_MAX_STEPS sets a budget.
const DefaultMaxSteps = 1_000_000

// MaxStepsEnv names the environment variable read by NewRunner.
const MaxStepsEnv = "UTM_MAX_STEPS"

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithMaxSteps sets the step budget. Zero or less disables the budget.
func WithMaxSteps(n int) Option {
	return func(r *Runner) {
		r.MaxSteps = n
	}
}

// WithStore configures the RunStore that receives finished runs.
func WithStore(store ports.RunStore) Option {
	return func(r *Runner) {
		r.Store = store
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.Logger = logger
		}
	}
}

// WithHooks registers lifecycle hooks passed to every engine.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(r *Runner) {
		r.Hooks = hooks
	}
}

// WithAnimation toggles animated head moves.
func WithAnimation(animated bool) Option {
	return func(r *Runner) {
		r.Animated = animated
	}
}

// WithDisplay attaches a tape display. Frames are only rendered for animated runs.
func WithDisplay(d tape.Display, frameDelay time.Duration) Option {
	return func(r *Runner) {
		r.Display = d
		r.FrameDelay = frameDelay
	}
}

// maxStepsFromEnv returns the budget configured in the environment, if any.
func maxStepsFromEnv() (int, bool) {
	v, ok := os.LookupEnv(MaxStepsEnv)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}
