package store

import (
	"path/filepath"
	"sync"

	"meshtalk/internal/domain"
)

const membershipFilename = "channels.json"

// ChannelFileStore persists channel membership to disk. Derived channel keys
// are memory-only and never reach this store.
type ChannelFileStore struct {
	dir string
	mu  sync.Mutex
}

// NewChannelFileStore returns a ChannelFileStore rooted at dir.
func NewChannelFileStore(dir string) *ChannelFileStore {
	return &ChannelFileStore{dir: dir}
}

// LoadMembership reads the persisted membership; a missing file yields an
// empty map.
func (s *ChannelFileStore) LoadMembership() (domain.ChannelMembership, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := domain.ChannelMembership{}
	if err := readJSON(filepath.Join(s.dir, membershipFilename), &m); err != nil {
		return nil, err
	}
	return m, nil
}

// SaveMembership writes the full membership map.
func (s *ChannelFileStore) SaveMembership(m domain.ChannelMembership) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return writeJSON(filepath.Join(s.dir, membershipFilename), m, 0o600)
}

// Compile-time assertion that ChannelFileStore implements domain.ChannelStore.
var _ domain.ChannelStore = (*ChannelFileStore)(nil)
