package app

import (
	"os"

	"meshtalk/internal/crypto"
	"meshtalk/internal/dedupe"
	"meshtalk/internal/domain"
	"meshtalk/internal/metrics"
	channelsvc "meshtalk/internal/services/channel"
	identitysvc "meshtalk/internal/services/identity"
	messagesvc "meshtalk/internal/services/message"
	sessionsvc "meshtalk/internal/services/session"
	transfersvc "meshtalk/internal/services/transfer"
	trustsvc "meshtalk/internal/services/trust"
	"meshtalk/internal/store"
)

// Collaborators are the external layers the engine drives. Nil fields get
// inert defaults so the engine's local surface works stand-alone.
type Collaborators struct {
	Transport domain.TransportSender
	Aborter   domain.TransferAborter
	Sessions  domain.SessionLayer
}

// Wire bundles all stores and services.
type Wire struct {
	Identity   *store.IdentityFileStore
	Peers      *store.PeerFileStore
	Trust      *trustsvc.Service
	Channels   *channelsvc.Service
	Messages   *messagesvc.Service
	Engine     *identitysvc.Service
	Transfers  *transfersvc.Registry
	Handshakes *sessionsvc.Policy // nil without a session layer
	Metrics    *metrics.Metrics

	nickname string
	local    domain.LocalIdentity
}

// NewWire constructs the dependency graph from cfg.
func NewWire(cfg Config, collab Collaborators) (*Wire, error) {
	if err := os.MkdirAll(cfg.Home, 0o700); err != nil {
		return nil, err
	}

	transport := collab.Transport
	if transport == nil {
		transport = DiscardTransport{}
	}

	m := metrics.New()
	cache := dedupe.New(cfg.DedupeMax, cfg.ControlWindow)

	identityStore := store.NewIdentityFileStore(cfg.Home)
	peers := store.NewPeerFileStore(cfg.Home)

	trust := trustsvc.New(store.NewTrustFileStore(cfg.Home), peers)
	channels := channelsvc.New(store.NewChannelFileStore(cfg.Home))
	messages := messagesvc.New(transport, trust, channels, cache, m)
	engine := identitysvc.New(peers, messages, cache, m)
	messages.SetResolver(engine)
	transfers := transfersvc.New(messages, collab.Aborter, m)

	var handshakes *sessionsvc.Policy
	if collab.Sessions != nil {
		handshakes = sessionsvc.NewPolicy(collab.Sessions)
	}

	return &Wire{
		Identity:   identityStore,
		Peers:      peers,
		Trust:      trust,
		Channels:   channels,
		Messages:   messages,
		Engine:     engine,
		Transfers:  transfers,
		Handshakes: handshakes,
		Metrics:    m,
		nickname:   cfg.Nickname,
	}, nil
}

// SetLocalIdentity records the loaded keys so handshake announcements carry
// the real fingerprint.
func (w *Wire) SetLocalIdentity(id domain.LocalIdentity) { w.local = id }

// OpenPrivate focuses the conversation behind selected through the
// reconciliation engine and, when the partner is addressed by session id and
// no secure session exists, consults the initiation policy. The returned ids
// are the received messages a read receipt should cover. The announcement is
// non-nil when the peer's side must initiate; the caller dispatches it.
func (w *Wire) OpenPrivate(selected domain.Identity) ([]string, *domain.Announcement, error) {
	canonical := w.Engine.Canonical(selected)
	receipts := w.Messages.OpenPrivate(canonical)

	if w.Handshakes == nil || canonical.Kind != domain.KindEphemeral {
		return receipts, nil, nil
	}
	d, err := w.Handshakes.Ensure(canonical.Value)
	if err != nil {
		return receipts, nil, err
	}
	if d != sessionsvc.DecisionAwaitPeer {
		return receipts, nil, nil
	}

	ann := &domain.Announcement{Nickname: w.nickname}
	if w.local.Pub != ([32]byte{}) {
		ann.Fingerprint = domain.Fingerprint(crypto.Fingerprint(w.local.Pub[:]))
	}
	return receipts, ann, nil
}

// DiscardTransport drops every payload. It stands in until a real transport
// stack is attached; sends still record Sending and later fail or complete
// only through explicit delivery events.
type DiscardTransport struct{}

func (DiscardTransport) SendPrivate(domain.Identity, []byte) {}
func (DiscardTransport) SendBroadcast([]byte)                {}
func (DiscardTransport) SendToChannel(string, []byte)        {}

// Compile-time assertion that DiscardTransport implements domain.TransportSender.
var _ domain.TransportSender = DiscardTransport{}
