// Package main hosts the vistopia CLI entrypoint and command graph.
//
// The Cobra-based command tree covers catalog browsing (search, subscriptions,
// show-content), saving episodes and transcripts to disk (save-show,
// save-transcript, batch-save), and operator tooling (config, doctor). It
// centralizes configuration resolution, flag overrides, and logger setup so
// subcommands only translate flags into workflow options and render results.
package main
