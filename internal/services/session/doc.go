// Package session decides, without a negotiation round-trip, which side of a
// pairwise relationship initiates the cryptographic handshake: ids are
// compared as opaque strings and the side sorting first initiates. As long as
// both sides apply the same order and encoding, exactly one initiates even
// under full symmetry of information. The handshake itself belongs to the
// transport stack.
package session
