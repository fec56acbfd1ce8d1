package channel

import (
	"errors"
	"sort"
	"sync"

	"meshtalk/internal/crypto"
	"meshtalk/internal/debuglog"
	"meshtalk/internal/domain"
)

var (
	// ErrNotJoined is returned when sealing for a channel that has not been
	// joined.
	ErrNotJoined = errors.New("channel not joined")
	// ErrNoKey is returned when sealing for a protected channel whose key is
	// not in memory (for example after a restart, before rejoining with the
	// password).
	ErrNoKey = errors.New("no key material for channel")
)

// Service owns channel membership and the in-memory key table.
type Service struct {
	store domain.ChannelStore

	mu         sync.Mutex
	keys       map[string][]byte
	membership domain.ChannelMembership
	loaded     bool
}

// New returns a channel service backed by the given membership store.
func New(store domain.ChannelStore) *Service {
	return &Service{store: store, keys: map[string][]byte{}}
}

func (s *Service) loadLocked() {
	if s.loaded {
		return
	}
	m, err := s.store.LoadMembership()
	if err != nil {
		debuglog.Logf("channel: load failed, starting empty: %v", err)
		m = domain.ChannelMembership{}
	}
	if m == nil {
		m = domain.ChannelMembership{}
	}
	s.membership = m
	s.loaded = true
}

// Join derives the channel key from password (empty for an open channel),
// marks the channel joined and persists membership. Joining an
// already-joined channel re-derives the key, which is how key material is
// restored after a restart.
func (s *Service) Join(tag, password string, creator domain.Fingerprint) error {
	var key []byte
	if password != "" {
		// Derived outside the lock; this is the expensive part.
		key = crypto.DeriveChannelKey(password, tag)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadLocked()

	ch, ok := s.membership[tag]
	if !ok {
		ch = domain.Channel{Tag: tag, Creator: creator}
	}
	ch.Joined = true
	ch.Protected = password != ""
	s.membership[tag] = ch

	if key != nil {
		s.keys[tag] = key
	}
	return s.store.SaveMembership(s.membership)
}

// Leave wipes the channel key, marks the channel left, and persists.
func (s *Service) Leave(tag string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadLocked()

	if key, ok := s.keys[tag]; ok {
		crypto.Wipe(key)
		delete(s.keys, tag)
	}
	ch, ok := s.membership[tag]
	if !ok {
		return nil
	}
	ch.Joined = false
	s.membership[tag] = ch
	return s.store.SaveMembership(s.membership)
}

// Joined reports whether the channel is currently joined.
func (s *Service) Joined(tag string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadLocked()
	return s.membership[tag].Joined
}

// HasKey reports whether key material for the channel is in memory.
func (s *Service) HasKey(tag string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.keys[tag]
	return ok
}

// Seal encrypts a payload for the channel. Open channels pass plaintext
// through unchanged.
func (s *Service) Seal(tag string, plaintext []byte) ([]byte, error) {
	s.mu.Lock()
	s.loadLocked()
	ch := s.membership[tag]
	key, hasKey := s.keys[tag]
	s.mu.Unlock()

	if !ch.Joined {
		return nil, ErrNotJoined
	}
	if !ch.Protected {
		return plaintext, nil
	}
	if !hasKey {
		return nil, ErrNoKey
	}
	return crypto.SealChannel(key, plaintext)
}

// Open decrypts a sealed channel payload. Any failure, including a missing
// key or a channel that was never joined, reports ok=false so the message is
// silently dropped from view.
func (s *Service) Open(tag string, blob []byte) ([]byte, bool) {
	s.mu.Lock()
	s.loadLocked()
	ch := s.membership[tag]
	key, hasKey := s.keys[tag]
	s.mu.Unlock()

	if !ch.Joined {
		debuglog.Debugf("channel %s: payload for a channel not joined", tag)
		return nil, false
	}
	if !ch.Protected {
		return blob, true
	}
	if !hasKey {
		debuglog.Debugf("channel %s: sealed payload with no key in memory", tag)
		return nil, false
	}
	return crypto.OpenChannel(key, blob)
}

// AddMember records a member fingerprint on the channel.
func (s *Service) AddMember(tag string, f domain.Fingerprint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadLocked()

	ch, ok := s.membership[tag]
	if !ok {
		ch = domain.Channel{Tag: tag}
	}
	for _, m := range ch.Members {
		if m == f {
			return nil
		}
	}
	ch.Members = append(ch.Members, f)
	s.membership[tag] = ch
	return s.store.SaveMembership(s.membership)
}

// Channels lists known channels ordered by tag.
func (s *Service) Channels() []domain.Channel {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadLocked()

	out := make([]domain.Channel, 0, len(s.membership))
	for _, ch := range s.membership {
		out = append(out, ch)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Tag < out[j].Tag })
	return out
}
