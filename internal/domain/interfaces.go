package domain

// TransportSender dispatches encoded payloads onto one of the transports.
// Sends are fire-and-forget: outcomes arrive later as delivery events, never
// as a synchronous result.
type TransportSender interface {
	SendPrivate(to Identity, payload []byte)
	SendBroadcast(payload []byte)
	SendToChannel(tag string, payload []byte)
}

// SessionLayer exposes the secure-session state owned by the transport stack.
type SessionLayer interface {
	MyID() string
	HasSession(id string) bool
	InitiateHandshake(id string)
}

// Directory resolves between transport identifiers and stable fingerprints.
// A false result means "no mapping known", which callers treat as a typed
// outcome, not an error.
type Directory interface {
	FingerprintForSession(sessionID string) (Fingerprint, bool)
	RelayPubkeyForAlias(alias string) (string, bool)
	FingerprintForRelayPubkey(pubkeyHex string) (Fingerprint, bool)
	RelayPubkeyForFingerprint(f Fingerprint) (string, bool)
}

// TrustStore persists favorite/blocked sets.
type TrustStore interface {
	LoadTrustSet() (TrustSet, error)
	SaveTrustSet(TrustSet) error
}

// ChannelStore persists channel membership. Key material never passes
// through it.
type ChannelStore interface {
	LoadMembership() (ChannelMembership, error)
	SaveMembership(ChannelMembership) error
}

// IdentityStore persists the local long-term keys.
type IdentityStore interface {
	SaveIdentity(passphrase string, id LocalIdentity) error
	LoadIdentity(passphrase string) (LocalIdentity, error)
}

// TransferAborter tells the transport that owns an in-flight transfer to
// stop sending it.
type TransferAborter interface {
	AbortTransfer(transferID string)
}
