// Package channel manages per-channel key material and membership.
//
// Keys are derived from the channel password with the tag as salt so every
// member converges on the same key without an out-of-band exchange. Derived
// keys exist only in memory, are wiped on leave, and never reach the
// membership store. Opening a sealed payload fails closed: wrong-key or
// corrupted payloads are reported as not-ok and dropped, never surfaced as
// garbled plaintext.
//
// Key derivation is CPU-bound by design; callers on a latency-sensitive path
// should run Join on a background worker.
package channel
