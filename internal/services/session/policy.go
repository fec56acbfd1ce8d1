package session

import (
	"errors"
	"sync"

	"meshtalk/internal/domain"
)

// Decision is the outcome of consulting the initiation policy.
type Decision uint8

const (
	// DecisionNone: a session already exists, nothing to do.
	DecisionNone Decision = iota
	// DecisionInitiate: this side starts the handshake.
	DecisionInitiate
	// DecisionAwaitPeer: the peer's side initiates; this side should send an
	// identity announcement to prompt it.
	DecisionAwaitPeer
)

// ErrSelfHandshake is returned when both ids compare equal. Ids are expected
// unique; an equal pair is a defect upstream, never a coin to flip.
var ErrSelfHandshake = errors.New("handshake ids are equal")

// ShouldInitiate applies the pure comparison rule to two ids.
func ShouldInitiate(myID, peerID string) (Decision, error) {
	if myID == peerID {
		return DecisionNone, ErrSelfHandshake
	}
	if myID < peerID {
		return DecisionInitiate, nil
	}
	return DecisionAwaitPeer, nil
}

// Policy consults the session layer and applies the initiation rule. It is
// consulted lazily, the first time a private conversation with a given
// canonical identity is opened.
type Policy struct {
	sessions domain.SessionLayer

	mu      sync.Mutex
	pending map[string]struct{} // handshakes started, not yet established
}

// NewPolicy returns a policy over the given session layer.
func NewPolicy(sessions domain.SessionLayer) *Policy {
	return &Policy{sessions: sessions, pending: map[string]struct{}{}}
}

// Ensure makes sure a secure session with the peer exists or is on its way.
// When this side wins the comparison it starts the handshake, at most once
// per peer while one is in flight; on DecisionAwaitPeer the caller sends its
// identity announcement so the peer's side initiates.
func (p *Policy) Ensure(peerID string) (Decision, error) {
	if p.sessions.HasSession(peerID) {
		p.mu.Lock()
		delete(p.pending, peerID)
		p.mu.Unlock()
		return DecisionNone, nil
	}
	d, err := ShouldInitiate(p.sessions.MyID(), peerID)
	if err != nil {
		return DecisionNone, err
	}
	if d == DecisionInitiate {
		p.mu.Lock()
		_, inFlight := p.pending[peerID]
		p.pending[peerID] = struct{}{}
		p.mu.Unlock()
		if !inFlight {
			p.sessions.InitiateHandshake(peerID)
		}
	}
	return d, nil
}
