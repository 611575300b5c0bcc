package utm

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/aretw0/utm/internal/compiler"
	"github.com/aretw0/utm/internal/logging"
	"github.com/aretw0/utm/internal/presentation/graph"
	"github.com/aretw0/utm/internal/validator"
	"github.com/aretw0/utm/pkg/adapters/file"
	"github.com/aretw0/utm/pkg/domain"
	"github.com/aretw0/utm/pkg/ports"
	"github.com/aretw0/utm/pkg/runner"
)

// Engine is the high-level entry point for the utm library.
// It pairs a machine source with a bounded runner.
type Engine struct {
	loader     ports.MachineLoader
	runner     *runner.Runner
	runnerOpts []runner.Option
	strict     bool
	logger     *slog.Logger
	Name       string
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLoader injects a custom MachineLoader, bypassing the directory loader.
func WithLoader(l ports.MachineLoader) Option {
	return func(e *Engine) {
		e.loader = l
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithStrict makes the directory loader reject unknown direction tokens.
func WithStrict(strict bool) Option {
	return func(e *Engine) {
		e.strict = strict
	}
}

// WithMaxSteps sets the step budget of every run. Zero or less disables it.
func WithMaxSteps(n int) Option {
	return func(e *Engine) {
		e.runnerOpts = append(e.runnerOpts, runner.WithMaxSteps(n))
	}
}

// WithStore persists every run record to store.
func WithStore(store ports.RunStore) Option {
	return func(e *Engine) {
		e.runnerOpts = append(e.runnerOpts, runner.WithStore(store))
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.runnerOpts = append(e.runnerOpts, runner.WithHooks(hooks))
	}
}

// WithRunnerOptions passes options straight to the underlying runner.
func WithRunnerOptions(opts ...runner.Option) Option {
	return func(e *Engine) {
		e.runnerOpts = append(e.runnerOpts, opts...)
	}
}

// New initializes an Engine over the machine descriptions in dir.
// If WithLoader is provided, dir may be empty and is only used as a label.
func New(dir string, opts ...Option) (*Engine, error) {
	eng := &Engine{}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.loader == nil {
		if dir == "" {
			return nil, fmt.Errorf("dir is required when no custom loader is provided")
		}
		absPath, err := filepath.Abs(dir)
		if err != nil {
			return nil, fmt.Errorf("invalid path: %w", err)
		}
		eng.Name = filepath.Base(absPath)
		eng.loader = file.NewLoader(absPath, compiler.WithStrict(eng.strict))
	} else if dir != "" {
		eng.Name = filepath.Base(dir)
	}

	if eng.logger == nil {
		eng.logger = logging.NewNop()
	}
	if eng.Name != "" {
		eng.logger = eng.logger.With("library", eng.Name)
	}

	runnerOpts := append([]runner.Option{runner.WithLogger(eng.logger)}, eng.runnerOpts...)
	eng.runner = runner.NewRunner(runnerOpts...)
	return eng, nil
}

// Load resolves a machine by name.
func (e *Engine) Load(name string) (*domain.MachineDescription, error) {
	return e.loader.Load(name)
}

// List returns the names of the available machines.
func (e *Engine) List() ([]string, error) {
	return e.loader.List()
}

// Run loads the machine called name and runs it on input.
func (e *Engine) Run(ctx context.Context, name, input string) (*domain.RunRecord, error) {
	desc, err := e.loader.Load(name)
	if err != nil {
		return nil, err
	}
	return e.runner.Run(ctx, desc, input)
}

// RunMachine runs an already resolved description.
func (e *Engine) RunMachine(ctx context.Context, desc *domain.MachineDescription, input string) (*domain.RunRecord, error) {
	return e.runner.Run(ctx, desc, input)
}

// Validate statically checks the machine called name. Errors make the machine
// unusable; the returned warnings describe rules or states that can never matter.
func (e *Engine) Validate(name string) ([]string, error) {
	desc, err := e.loader.Load(name)
	if err != nil {
		return nil, err
	}
	report, err := validator.ValidateMachine(desc)
	warnings := make([]string, 0, len(report.Warnings()))
	for _, issue := range report.Warnings() {
		warnings = append(warnings, issue.String())
	}
	return warnings, err
}

// Graph renders the machine called name as a Mermaid state diagram.
func (e *Engine) Graph(name string) (string, error) {
	desc, err := e.loader.Load(name)
	if err != nil {
		return "", err
	}
	return graph.GenerateMermaid(desc, nil), nil
}

// Loader returns the machine source.
func (e *Engine) Loader() ports.MachineLoader {
	return e.loader
}

// Runner returns the runner shared by every run of this engine.
func (e *Engine) Runner() *runner.Runner {
	return e.runner
}
