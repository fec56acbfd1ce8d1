package domain

// Fingerprint is the stable hex digest of a partner's long-lived public key.
// It survives session restarts and is the only identifier trust decisions
// may be keyed by.
type Fingerprint string

// String returns the string form of the fingerprint.
func (f Fingerprint) String() string { return string(f) }

// IdentityKind discriminates the addressing schemes a partner may be known
// under at the same time.
type IdentityKind uint8

const (
	// KindEphemeral is a short-lived mesh session id; it changes whenever
	// the partner's mesh session restarts.
	KindEphemeral IdentityKind = iota + 1
	// KindFingerprint keys a conversation by the partner's stable public-key
	// fingerprint, used while no live session exists.
	KindFingerprint
	// KindRelayAlias stands in for the partner's relay-network public key,
	// often only a truncated prefix until fully resolved.
	KindRelayAlias
	// KindOverlay is a content-addressed peer id on the overlay network.
	KindOverlay
)

// Identity names a conversation partner under exactly one addressing scheme.
// It is an explicit tagged value rather than a prefixed string so that hex
// content can never be mistaken for a scheme marker. The zero value means
// "unknown".
type Identity struct {
	Kind  IdentityKind `json:"kind"`
	Value string       `json:"value"`
}

// EphemeralID wraps a mesh session id.
func EphemeralID(sessionID string) Identity {
	return Identity{Kind: KindEphemeral, Value: sessionID}
}

// FingerprintID wraps a stable public-key fingerprint.
func FingerprintID(f Fingerprint) Identity {
	return Identity{Kind: KindFingerprint, Value: string(f)}
}

// RelayAliasID wraps a relay-network alias or public key hex.
func RelayAliasID(alias string) Identity {
	return Identity{Kind: KindRelayAlias, Value: alias}
}

// OverlayID wraps an overlay-network peer id.
func OverlayID(peerID string) Identity {
	return Identity{Kind: KindOverlay, Value: peerID}
}

// IsZero reports whether the identity is unset.
func (id Identity) IsZero() bool { return id.Kind == 0 && id.Value == "" }

// String renders the identity for logs and diagnostics.
func (id Identity) String() string {
	switch id.Kind {
	case KindEphemeral:
		return "session/" + id.Value
	case KindFingerprint:
		return "fp/" + id.Value
	case KindRelayAlias:
		return "relay/" + id.Value
	case KindOverlay:
		return "overlay/" + id.Value
	default:
		return "unknown/" + id.Value
	}
}

// LocalIdentity holds the local long-term key pair and the nickname shown to
// conversation partners.
type LocalIdentity struct {
	Pub      [32]byte `json:"pub"`
	Priv     [32]byte `json:"priv"`
	Nickname string   `json:"nickname"`
}

// Announcement is what the waiting side of the handshake policy sends so the
// peer learns it should initiate.
type Announcement struct {
	Nickname    string      `json:"nickname"`
	Fingerprint Fingerprint `json:"fingerprint"`
}
