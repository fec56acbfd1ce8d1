// Package transfer tracks in-flight binary sends and the chat messages
// representing them. Progress events arrive from transport I/O goroutines
// while cancellation comes from the user-facing context, so the registry is
// the one structure in the engine mutated from more than one execution
// context: a single lock covers the forward and reverse maps atomically.
package transfer
