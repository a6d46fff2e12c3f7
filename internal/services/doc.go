// Package services holds shared plumbing for stage collaborators: sentinel
// error markers, error wrapping with stage context, and context annotations
// used by structured logging.
package services
