// Package orchestrator schedules per-job task graphs. Each job is drained by
// a polling loop that launches one goroutine per ready task and waits on a
// per-pass barrier; failed tasks are never retried and block only
// dependents that hard-require their output. Bulk work runs jobs sequentially; a deprecated
// staged strategy that synchronizes same-type tasks across jobs is kept for
// accelerator batching despite its known deadlock risk.
package orchestrator
