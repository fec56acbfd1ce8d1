// Package store provides file-based persistence for meshtalk's durable state.
//
// It contains concrete implementations of the domain storage interfaces,
// serialising data as JSON on disk. All methods are concurrency-safe via
// internal locking. Stored files live under the user's configured home
// directory.
//
// The package includes stores for:
//   - The local identity keys, passphrase-encrypted (IdentityFileStore)
//   - Favorite/blocked fingerprints (TrustFileStore)
//   - Channel membership, never key material (ChannelFileStore)
//   - The session-id/fingerprint/relay-key directory (PeerFileStore)
package store
