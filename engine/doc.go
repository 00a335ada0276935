// Package engine runs the candidate search over many targets.
//
// Targets are partitioned into blocks (see package targets). Each block is
// computed by one worker with its own selector.Selector against the shared,
// read-only matrix, then handed to a Sink. Blocks never share mutable state,
// so the only coordination is the worker limit and the result-memory budget
// of the resource controller.
//
// # Errors
//
//   - A target outside the matrix is skipped: it yields no records, is listed
//     in Block.Skipped, and is reported to the observer.
//   - A layout or top-n problem is a configuration error and is reported by
//     New before any work starts.
//   - Sink and context errors abort the run.
//
// # Ordering
//
// Within a block, records are ordered by target, then by rank. Collector
// concatenates blocks by Seq, which reproduces the order of a sequential run
// regardless of how many workers were used.
package engine
