// Package app wires application dependencies for the CLI and for embedding.
//
// It builds the concrete stores and high-level services from Config,
// exposing them via the Wire struct. The transport stack, session layer and
// transfer abort hook are collaborators supplied by the embedder; the CLI
// runs without them and exercises the engine's local surface only.
package app
