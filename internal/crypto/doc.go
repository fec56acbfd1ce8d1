// Package crypto exposes the minimal primitives used by meshtalk.
//
// Contents
//
//   - X25519 key pair generation with RFC 7748 clamping (GenerateKeyPair)
//   - Short public-key fingerprints for trust keys and display (Fingerprint)
//   - Channel key derivation from a shared password (DeriveChannelKey)
//   - Authenticated channel payload sealing/opening (SealChannel, OpenChannel)
//   - Best-effort memory wiping for key material (Wipe)
//
// Channel decryption deliberately fails closed and silent: OpenChannel
// reports ok=false for any failure so garbled or wrong-key payloads are
// dropped from view instead of surfacing partial plaintext.
package crypto
