// Package fusion merges the per-modality analysis results of one job into a
// single time-ordered event timeline. All inputs are optional so the stage
// degrades gracefully when upstream analyses failed or were disabled.
package fusion
