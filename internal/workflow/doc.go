// Package workflow saves shows, episode by episode, to local disk.
//
// The Manager resolves a show's catalog once per run, flattens its parts into
// traversal order, filters by the requested episode sort numbers, and hands
// every selected article to the fetcher (and, for new audio, the tagger).
// Ordinary saves are strictly sequential; the single-file archiver mode fans
// articles out to a fixed-size worker pool and waits for all of them.
//
// Failures are scoped: a problem with one article is logged and counted in
// the Report while the rest continue; a missing catalog skips the show; only
// unrecoverable conditions such as an uncreatable output directory abort the
// run. Each save holds a per-show lock so concurrent processes cannot write
// the same directory.
package workflow
