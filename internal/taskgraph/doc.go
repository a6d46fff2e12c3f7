// Package taskgraph models one job's dependency graph of media-processing
// tasks: typed tasks with one-way state transitions, derived readiness,
// per-type result payloads, and validation of dangling dependencies and
// cycles. Hard dependencies must complete before a task runs; soft
// dependencies only have to settle, so their failure leaves the task
// runnable without that input.
package taskgraph
