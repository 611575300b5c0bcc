/*
Package ports defines the driven ports (interfaces) for the utm engine.

These interfaces decouple the execution engine from the host that owns the tape,
from where machine descriptions come from, and from where run outcomes are kept.

# Key Interfaces

  - Tape: the tape/head collaborator the engine reads, writes and moves.
  - MachineLoader: resolves machine descriptions by name (e.g. from a directory or memory).
  - RunStore: persists the final record of each run.
  - DistributedLocker: provides distributed locking for concurrent access to a run ID.
*/
package ports
