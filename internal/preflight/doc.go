// Package preflight provides readiness checks for the credentials, assets,
// directories and executables hookclip depends on.
//
// `hookclip check` prints every result. The pipeline performs its own
// offline validation before a job; these checks go further by touching the
// filesystem and, for remote assets, issuing a HEAD request.
package preflight
