/*
Package domain contains the core domain models of the utm execution engine.

It defines the vocabulary of a single-tape Turing machine: states, symbols, head
directions, transition rules, the rule table and the immutable machine configuration.
This package is kept pure and free of external dependencies like I/O or persistence,
following Hexagonal Architecture principles.

# Key Entities

  - Rule: a (state, symbol) -> (state, symbol, direction) transition.
  - RuleTable: the ordered, read-only table searched by the engine.
  - MachineConfig: rule count plus initial, accept and reject labels.
  - Variant: the closed set of machine families (Classical, LeftReset, BusyBeaver).
  - RunState: the per-run cursor threaded through each engine step.
  - RunRecord: the persisted final outcome of a run.
*/
package domain
