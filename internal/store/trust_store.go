package store

import (
	"path/filepath"
	"sync"

	"meshtalk/internal/domain"
)

const trustFilename = "trust.json"

// TrustFileStore persists the favorite/blocked sets to disk.
type TrustFileStore struct {
	dir string
	mu  sync.Mutex
}

// NewTrustFileStore returns a TrustFileStore rooted at dir.
func NewTrustFileStore(dir string) *TrustFileStore {
	return &TrustFileStore{dir: dir}
}

// LoadTrustSet reads the persisted trust set; a missing file yields an
// empty set.
func (s *TrustFileStore) LoadTrustSet() (domain.TrustSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	set := domain.NewTrustSet()
	if err := readJSON(filepath.Join(s.dir, trustFilename), &set); err != nil {
		return nil, err
	}
	return set, nil
}

// SaveTrustSet writes the full trust set.
func (s *TrustFileStore) SaveTrustSet(set domain.TrustSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return writeJSON(filepath.Join(s.dir, trustFilename), set, 0o600)
}

// Compile-time assertion that TrustFileStore implements domain.TrustStore.
var _ domain.TrustStore = (*TrustFileStore)(nil)
