// Package engine drives one tidy or lint action: it selects the
// configured filters, resolves the candidate file set once, expands it
// into per-filter invocation entries according to each filter's run mode,
// executes one filter's entries concurrently on a bounded worker pool,
// and aggregates per-path errors into the final Exit.
//
// Filters run strictly one after another; only the entries within a
// single filter execute in parallel. Per-entry results land in a
// pre-sized slice owned by the parallel phase, so no shared collection is
// mutated concurrently; the merge into the run-wide error list happens
// after the pool drains.
package engine
