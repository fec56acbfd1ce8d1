// Package trust tracks which partners are favorites and which are blocked.
//
// Records are keyed by stable public-key fingerprint only. Toggling trust by
// a transport identifier first resolves it through the directory; if no
// fingerprint can be resolved the mutation is rejected with no state change
// rather than attaching trust to an ephemeral address.
package trust
