// Package services defines shared utilities consumed by the download workflow
// and its external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run identifiers, show ids, and article sort
//     numbers for logging and tracing.
//   - Structured error markers plus the Wrap helper that let callers decide
//     whether a failure skips one article, one show, or the whole command.
//
// Integrations (the Vistopia API client lives in services/vistopia) should
// return errors tagged with these markers so the workflow can classify them
// without string matching.
package services
