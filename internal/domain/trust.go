package domain

// TrustRecord is what has been decided about one partner. Records are keyed
// by fingerprint, never by a transport identifier: transport identifiers are
// ephemeral, so looking trust up by session id without resolving to a
// fingerprint first is always a bug.
type TrustRecord struct {
	IsFavorite bool `json:"favorite,omitempty"`
	IsBlocked  bool `json:"blocked,omitempty"`
}

// TrustSet is the full persisted trust state.
type TrustSet map[Fingerprint]TrustRecord

// NewTrustSet returns an empty, non-nil set.
func NewTrustSet() TrustSet { return TrustSet{} }
