// Package stages implements the pipeline's task executors. Each stage
// consumes the typed results of its dependencies and produces exactly one
// typed result; the orchestrator owns all scheduling and state.
package stages
