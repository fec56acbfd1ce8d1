package trust

import (
	"errors"
	"sort"
	"sync"

	"meshtalk/internal/debuglog"
	"meshtalk/internal/domain"
)

var (
	// ErrNoFingerprint is returned when a trust mutation names an empty
	// fingerprint.
	ErrNoFingerprint = errors.New("trust record requires a fingerprint")
	// ErrUnresolvedIdentity is returned when a session id cannot be resolved
	// to a fingerprint, so no trust decision can be attached to it.
	ErrUnresolvedIdentity = errors.New("no fingerprint resolvable for identity")
)

// Service mediates all trust reads and writes over the persisted set.
type Service struct {
	store     domain.TrustStore
	directory domain.Directory

	mu     sync.Mutex
	set    domain.TrustSet
	loaded bool
}

// New returns a trust service backed by the given store and directory.
func New(store domain.TrustStore, directory domain.Directory) *Service {
	return &Service{store: store, directory: directory}
}

func (s *Service) loadLocked() {
	if s.loaded {
		return
	}
	set, err := s.store.LoadTrustSet()
	if err != nil {
		debuglog.Logf("trust: load failed, starting empty: %v", err)
		set = domain.NewTrustSet()
	}
	if set == nil {
		set = domain.NewTrustSet()
	}
	s.set = set
	s.loaded = true
}

// SetFavorite marks or unmarks a fingerprint as favorite and persists the set.
func (s *Service) SetFavorite(f domain.Fingerprint, favorite bool) error {
	return s.mutate(f, func(r *domain.TrustRecord) { r.IsFavorite = favorite })
}

// SetBlocked marks or unmarks a fingerprint as blocked and persists the set.
func (s *Service) SetBlocked(f domain.Fingerprint, blocked bool) error {
	return s.mutate(f, func(r *domain.TrustRecord) { r.IsBlocked = blocked })
}

func (s *Service) mutate(f domain.Fingerprint, apply func(*domain.TrustRecord)) error {
	if f == "" {
		return ErrNoFingerprint
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadLocked()

	rec := s.set[f]
	apply(&rec)
	if rec == (domain.TrustRecord{}) {
		delete(s.set, f)
	} else {
		s.set[f] = rec
	}
	return s.store.SaveTrustSet(s.set)
}

// FavoriteBySession toggles favorite for the partner behind a live session
// id. The session must resolve to a fingerprint; otherwise the mutation is
// rejected with no state change.
func (s *Service) FavoriteBySession(sessionID string, favorite bool) error {
	f, ok := s.directory.FingerprintForSession(sessionID)
	if !ok {
		debuglog.Debugf("trust: favorite rejected, session %s has no fingerprint", sessionID)
		return ErrUnresolvedIdentity
	}
	return s.SetFavorite(f, favorite)
}

// BlockBySession toggles blocked for the partner behind a live session id.
func (s *Service) BlockBySession(sessionID string, blocked bool) error {
	f, ok := s.directory.FingerprintForSession(sessionID)
	if !ok {
		debuglog.Debugf("trust: block rejected, session %s has no fingerprint", sessionID)
		return ErrUnresolvedIdentity
	}
	return s.SetBlocked(f, blocked)
}

// Record returns the current record for a fingerprint.
func (s *Service) Record(f domain.Fingerprint) domain.TrustRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadLocked()
	return s.set[f]
}

// IsBlocked reports whether a fingerprint is blocked.
func (s *Service) IsBlocked(f domain.Fingerprint) bool {
	return s.Record(f).IsBlocked
}

// IsFavorite reports whether a fingerprint is a favorite.
func (s *Service) IsFavorite(f domain.Fingerprint) bool {
	return s.Record(f).IsFavorite
}

// BlockedBySession reports whether the partner behind a session id is
// blocked. An unresolvable session cannot carry a block and reports false.
func (s *Service) BlockedBySession(sessionID string) bool {
	f, ok := s.directory.FingerprintForSession(sessionID)
	if !ok {
		return false
	}
	return s.IsBlocked(f)
}

// Favorites lists favorite fingerprints in stable order.
func (s *Service) Favorites() []domain.Fingerprint {
	return s.list(func(r domain.TrustRecord) bool { return r.IsFavorite })
}

// Blocked lists blocked fingerprints in stable order.
func (s *Service) Blocked() []domain.Fingerprint {
	return s.list(func(r domain.TrustRecord) bool { return r.IsBlocked })
}

func (s *Service) list(keep func(domain.TrustRecord) bool) []domain.Fingerprint {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadLocked()

	out := make([]domain.Fingerprint, 0, len(s.set))
	for f, rec := range s.set {
		if keep(rec) {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
