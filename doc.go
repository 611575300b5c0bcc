/*
Package utm is a Turing machine execution engine.

A machine is a rule table plus a configuration (initial, accept and reject
states, blank symbol). The engine applies one rule per step to a tape that is
unbounded in both directions and reports when the machine halts. Three variants
share the same step loop and differ only in how they treat the head and the
halt report: CLASSICAL, BUSY_BEAVER and LEFT_RESET.

# Architecture

The package layout is hexagonal:

  - pkg/domain holds the pure types (State, Symbol, Rule, RuleTable, MachineConfig).
  - internal/runtime holds the step engine and the variant policies.
  - pkg/tape is the default tape and head collaborator.
  - pkg/runner bounds runs with a step budget and persists a RunRecord.
  - pkg/adapters provide machine loaders, run stores and the HTTP and MCP surfaces.

The engine never stops a machine that does not halt. Step budgets and
cancellation are the runner's job.

# Usage

Machines are read from a directory of .properties, .yaml or .json descriptions:

	eng, err := utm.New("./machines", utm.WithMaxSteps(10_000))
	if err != nil {
		log.Fatal(err)
	}

	rec, err := eng.Run(ctx, "busy-beaver-3", "")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(rec.Outcome, rec.Steps, rec.Tape)

Machines can also be built in code with pkg/dsl and served from memory with
WithLoader.
*/
package utm
