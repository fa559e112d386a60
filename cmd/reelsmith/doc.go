// Package main hosts the reelsmith CLI entrypoint and command graph.
//
// The Cobra-based command tree turns terminal invocations into export batches
// (narrate, dub, cover), single-file media tools (preview, insert, join), job
// history queries, preflight checks, and configuration scaffolding. It
// centralizes configuration resolution, collaborator wiring, and structured
// logging setup so subcommands can focus on flags and output instead of
// wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
