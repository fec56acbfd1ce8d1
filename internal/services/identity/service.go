package identity

import (
	"sync"

	"meshtalk/internal/debuglog"
	"meshtalk/internal/dedupe"
	"meshtalk/internal/domain"
	"meshtalk/internal/metrics"
)

// Timelines is the slice of the message store the engine needs: moving a
// conversation from one identity key to another.
type Timelines interface {
	MergePrivate(target domain.Identity, sources ...domain.Identity) int
	HasPrivate(id domain.Identity) bool
}

// Service is the identity reconciliation engine.
type Service struct {
	directory domain.Directory
	timelines Timelines
	cache     *dedupe.Cache
	metrics   *metrics.Metrics

	mu   sync.Mutex
	live map[string]struct{} // session ids currently reachable on the mesh
}

// New returns an engine resolving through directory and merging via
// timelines. cache may be nil when control-event dedupe is handled upstream.
func New(directory domain.Directory, timelines Timelines, cache *dedupe.Cache, m *metrics.Metrics) *Service {
	return &Service{
		directory: directory,
		timelines: timelines,
		cache:     cache,
		metrics:   m,
		live:      map[string]struct{}{},
	}
}

// Canonical resolves the identity that should key a conversation with the
// partner behind selected.
//
// Order: a still-live session keeps itself; otherwise, if a stable
// fingerprint is derivable and a live session shares it, the live session
// wins; otherwise the most specific known identifier: fingerprint over relay
// alias over the ephemeral id itself.
func (s *Service) Canonical(selected domain.Identity) domain.Identity {
	if selected.Kind == domain.KindEphemeral && s.isLive(selected.Value) {
		return selected
	}

	f, ok := s.fingerprintFor(selected)
	if !ok {
		// No mapping known; fall back to the identifier we were given.
		return selected
	}
	if sid, live := s.liveSessionFor(f); live {
		return domain.EphemeralID(sid)
	}
	return domain.FingerprintID(f)
}

// Unify moves every source conversation onto target. Idempotent: sources
// without history are skipped, and any lookup failure means that source is
// simply not merged.
func (s *Service) Unify(target domain.Identity, sources []domain.Identity) int {
	moved := 0
	for _, src := range sources {
		if src == target || !s.timelines.HasPrivate(src) {
			continue
		}
		n := s.timelines.MergePrivate(target, src)
		if n > 0 {
			s.metrics.IncIdentityMerges()
			debuglog.Debugf("identity: merged %d messages from %s onto %s", n, src, target)
		}
		moved += n
	}
	return moved
}

// OnPeerListChanged replaces the live-session view and folds any histories
// held under stable identifiers onto sessions that just came reachable.
// Transient duplicate notifications from redundant transport paths are
// suppressed per session within the control window.
func (s *Service) OnPeerListChanged(liveIDs []string) {
	fresh := make([]string, 0, len(liveIDs))

	s.mu.Lock()
	prev := s.live
	s.live = make(map[string]struct{}, len(liveIDs))
	for _, id := range liveIDs {
		s.live[id] = struct{}{}
		if _, known := prev[id]; !known {
			fresh = append(fresh, id)
		}
	}
	s.mu.Unlock()

	for _, sid := range fresh {
		if s.cache != nil && s.cache.ControlDuplicate("peer-connected", sid) {
			s.metrics.IncControlSuppressed()
			continue
		}
		s.adoptSession(sid)
	}
}

// adoptSession folds the fingerprint-keyed (and, when resolvable, relay-
// keyed) history of a newly live session onto its session id.
func (s *Service) adoptSession(sessionID string) {
	f, ok := s.directory.FingerprintForSession(sessionID)
	if !ok {
		return
	}
	sources := []domain.Identity{domain.FingerprintID(f)}
	if pk, ok := s.directory.RelayPubkeyForFingerprint(f); ok {
		sources = append(sources, domain.RelayAliasID(pk))
	}
	s.Unify(domain.EphemeralID(sessionID), sources)
}

// fingerprintFor derives a stable fingerprint from any identifier kind, when
// the directory knows the mapping.
func (s *Service) fingerprintFor(id domain.Identity) (domain.Fingerprint, bool) {
	switch id.Kind {
	case domain.KindFingerprint:
		return domain.Fingerprint(id.Value), true
	case domain.KindEphemeral:
		return s.directory.FingerprintForSession(id.Value)
	case domain.KindRelayAlias:
		pk, ok := s.directory.RelayPubkeyForAlias(id.Value)
		if !ok {
			// The alias may already be the full key.
			pk = id.Value
		}
		return s.directory.FingerprintForRelayPubkey(pk)
	default:
		return "", false
	}
}

func (s *Service) isLive(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.live[sessionID]
	return ok
}

func (s *Service) liveSessionFor(f domain.Fingerprint) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for sid := range s.live {
		if got, ok := s.directory.FingerprintForSession(sid); ok && got == f {
			return sid, true
		}
	}
	return "", false
}
