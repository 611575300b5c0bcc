/*
Package runner executes machine descriptions under an external step budget.

The engine itself never stops a machine that does not halt. The Runner wraps it:
it builds a fresh tape and engine per run, checks the context and the budget
between steps, reports the halt outcome and persists a RunRecord.

# Usage

	r := runner.NewRunner(
		runner.WithMaxSteps(10_000),
		runner.WithStore(file.New(".utm/runs")),
		runner.WithLogger(logger),
	)

	rec, err := r.Run(ctx, desc, "0110")
	if errors.Is(err, domain.ErrStepBudgetExceeded) {
		// rec still carries the tape at the point the budget ran out
	}

Runs are independent: a single Runner may execute many runs concurrently, all
sharing the read-only rule table of the description.
*/
package runner
