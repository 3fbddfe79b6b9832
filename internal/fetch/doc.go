// Package fetch retrieves article artifacts onto local disk.
//
// Four kinds of artifact are supported: audio streamed over HTTP, video
// remuxed by an external converter, transcript pages saved as HTML (or as
// extracted plain text), and transcript pages captured by an external
// single-file archiver. For all of them the presence of the destination path
// means the work is already done and nothing is fetched. Downloads go through
// a temp sibling that is renamed into place, and external tools that write the
// destination themselves have partial output removed on failure, so a path
// only ever exists once its content is complete.
//
// External tools run through the Executor interface and archiver retries wait
// through a Sleeper, so tests never spawn processes or sleep.
package fetch
