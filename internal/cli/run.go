package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/utm/internal/compiler"
	"github.com/aretw0/utm/internal/logging"
	"github.com/aretw0/utm/internal/presentation/tui"
	"github.com/aretw0/utm/internal/validator"
	"github.com/aretw0/utm/pkg/domain"
	"github.com/aretw0/utm/pkg/observability"
	"github.com/aretw0/utm/pkg/runner"
)

// Execute handles the run command: it installs the signal handling and runs the machine.
// An interrupted run is reported but is not an error.
func Execute(opts RunOptions) error {
	signals := runner.NewSignalManager(context.Background())
	defer signals.Stop()

	_, err := Run(signals.Context(), opts)
	if err != nil && signals.Interrupted() {
		printSystemMessage(opts.stderr(), "Interrupted.")
		return nil
	}
	return err
}

// Run loads, checks and executes one machine, then prints the result.
// The record is returned whenever the run started.
func Run(ctx context.Context, opts RunOptions) (*domain.RunRecord, error) {
	logger, err := logging.FromName(opts.LogLevel)
	if err != nil {
		return nil, err
	}

	desc, report, err := LoadMachine(opts.Dir, opts.Machine, compiler.WithStrict(opts.Strict))
	if err != nil {
		return nil, err
	}
	for _, w := range report.Warnings {
		logger.Warn("rule table", "machine", desc.Name, "rule", w.Rule, "warning", w.Message)
	}
	lint, err := validator.ValidateMachine(desc)
	if err != nil {
		return nil, err
	}
	for _, issue := range lint.Warnings() {
		logger.Warn("machine check", "machine", desc.Name, "warning", issue.Message)
	}

	store, closeStore, err := OpenStore(ctx, opts.Store, opts.Dir)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Error("failed to close store", "error", err)
		}
	}()

	r := runner.NewRunner(createRunnerOptions(opts, logger)...)
	r.Store = store

	rec, runErr := r.Run(ctx, desc, opts.Input)
	if rec == nil {
		return nil, runErr
	}
	if err := printRecord(opts, rec); err != nil {
		return rec, err
	}
	return rec, runErr
}

// createRunnerOptions prepares the functional options for the Runner.
func createRunnerOptions(opts RunOptions, logger *slog.Logger) []runner.Option {
	out := opts.stdout()
	interactive := isTerminal(out)

	runnerOpts := []runner.Option{
		runner.WithLogger(logger),
		runner.WithHooks(observability.LoggingHooks(logger)),
	}
	if opts.MaxSteps != 0 {
		runnerOpts = append(runnerOpts, runner.WithMaxSteps(opts.MaxSteps))
	}

	// JSON output stays machine readable: no tape frames at all.
	if opts.JSON {
		return runnerOpts
	}

	delay := opts.FrameDelay
	if delay == 0 && interactive {
		delay = DefaultFrameDelay
	}
	display := tui.NewTapeDisplay(out, tui.WithInPlace(interactive))
	return append(runnerOpts,
		runner.WithAnimation(!opts.NoAnimation),
		runner.WithDisplay(display, delay),
	)
}

func printRecord(opts RunOptions, rec *domain.RunRecord) error {
	out := opts.stdout()
	if opts.JSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(rec)
	}

	render, err := tui.NewRenderer()
	if err != nil {
		return fmt.Errorf("failed to create renderer: %w", err)
	}
	fmt.Fprint(out, tui.RenderReport(render, rec))
	return nil
}

// printSystemMessage prints a standardized system message.
func printSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && tui.IsTerminal(f)
}
