package store

import (
	"path/filepath"
	"sync"

	"meshtalk/internal/domain"
)

const peersFilename = "peers.json"

// peerDirectory is the on-disk shape of everything learned about peers'
// identifiers: which fingerprint a mesh session announced, and how relay
// aliases map to full public keys and onward to fingerprints.
type peerDirectory struct {
	Sessions map[string]domain.Fingerprint `json:"sessions,omitempty"` // session id -> fingerprint
	Aliases  map[string]string             `json:"aliases,omitempty"`  // relay alias -> pubkey hex
	RelayKey map[string]domain.Fingerprint `json:"relay_keys,omitempty"`
}

// PeerFileStore is the persisted public-key directory. Lookup misses and
// unreadable files both degrade to "no mapping known" per the engine's
// resolution-failure policy.
type PeerFileStore struct {
	dir string
	mu  sync.Mutex
}

// NewPeerFileStore returns a PeerFileStore rooted at dir.
func NewPeerFileStore(dir string) *PeerFileStore {
	return &PeerFileStore{dir: dir}
}

func (s *PeerFileStore) path() string { return filepath.Join(s.dir, peersFilename) }

func (s *PeerFileStore) loadLocked() peerDirectory {
	d := peerDirectory{}
	_ = readJSON(s.path(), &d)
	if d.Sessions == nil {
		d.Sessions = map[string]domain.Fingerprint{}
	}
	if d.Aliases == nil {
		d.Aliases = map[string]string{}
	}
	if d.RelayKey == nil {
		d.RelayKey = map[string]domain.Fingerprint{}
	}
	return d
}

// RecordSession remembers which fingerprint a live session announced.
func (s *PeerFileStore) RecordSession(sessionID string, f domain.Fingerprint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := s.loadLocked()
	d.Sessions[sessionID] = f
	return writeJSON(s.path(), d, 0o600)
}

// RecordRelayAlias remembers the resolution of a relay alias to a full
// public key, and optionally that key's fingerprint.
func (s *PeerFileStore) RecordRelayAlias(alias, pubkeyHex string, f domain.Fingerprint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := s.loadLocked()
	d.Aliases[alias] = pubkeyHex
	if f != "" {
		d.RelayKey[pubkeyHex] = f
	}
	return writeJSON(s.path(), d, 0o600)
}

// FingerprintForSession resolves a mesh session id to its announced
// fingerprint.
func (s *PeerFileStore) FingerprintForSession(sessionID string) (domain.Fingerprint, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.loadLocked().Sessions[sessionID]
	return f, ok
}

// RelayPubkeyForAlias resolves a relay alias to the full public key hex.
func (s *PeerFileStore) RelayPubkeyForAlias(alias string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pk, ok := s.loadLocked().Aliases[alias]
	return pk, ok
}

// FingerprintForRelayPubkey resolves a relay public key to a fingerprint.
func (s *PeerFileStore) FingerprintForRelayPubkey(pubkeyHex string) (domain.Fingerprint, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.loadLocked().RelayKey[pubkeyHex]
	return f, ok
}

// RelayPubkeyForFingerprint is the reverse relay-key lookup.
func (s *PeerFileStore) RelayPubkeyForFingerprint(f domain.Fingerprint) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for pk, got := range s.loadLocked().RelayKey {
		if got == f {
			return pk, true
		}
	}
	return "", false
}

// Sessions lists all known session-id mappings, for inspection.
func (s *PeerFileStore) Sessions() map[string]domain.Fingerprint {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := map[string]domain.Fingerprint{}
	for k, v := range s.loadLocked().Sessions {
		out[k] = v
	}
	return out
}

// Compile-time assertion that PeerFileStore implements domain.Directory.
var _ domain.Directory = (*PeerFileStore)(nil)
