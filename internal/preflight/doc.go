// Package preflight provides readiness checks for external services
// and filesystem paths that mediaflow depends on.
//
// These checks run in two contexts:
//   - The "mediaflow preflight" command runs them before a batch so a
//     misconfigured environment fails fast instead of mid-pipeline.
//   - The CLI "mediaflow status" command uses individual check functions
//     (CheckHTTPService, CheckDirectoryAccess) to display service health.
//
// Each check is gated by its config toggle -- disabled features are skipped.
package preflight
