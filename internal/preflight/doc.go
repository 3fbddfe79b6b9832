// Package preflight provides readiness checks for the upstream API, the
// filesystem paths, and the external tools vistopia depends on.
//
// The CLI "vistopia doctor" command runs RunAll and renders the results; the
// individual checks are also usable on their own.
package preflight
