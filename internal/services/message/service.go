package message

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"meshtalk/internal/debuglog"
	"meshtalk/internal/dedupe"
	"meshtalk/internal/domain"
	"meshtalk/internal/metrics"
	"meshtalk/internal/services/channel"
	"meshtalk/internal/services/trust"
)

// ErrBlockedPeer is returned when sending to a blocked partner.
var ErrBlockedPeer = errors.New("peer is blocked")

// Resolver maps an identifier onto the canonical identity that should key
// its conversation. Implemented by the identity reconciliation engine.
type Resolver interface {
	Canonical(selected domain.Identity) domain.Identity
}

// Service is the message store and delivery-state engine.
type Service struct {
	mu        sync.Mutex
	broadcast []domain.Message
	channels  map[string][]domain.Message
	private   map[domain.Identity][]domain.Message

	unreadChannels map[string]int
	unreadPrivate  map[domain.Identity]struct{}

	// Conversation currently focused in the UI; messages arriving for it are
	// not flagged unread.
	openPrivate domain.Identity
	openChannel string

	transport domain.TransportSender
	trust     *trust.Service
	access    *channel.Service
	cache     *dedupe.Cache
	metrics   *metrics.Metrics
	resolver  Resolver

	now func() time.Time
}

// New returns a message service dispatching through transport and guarded by
// the given trust service, channel access control and dedupe cache.
func New(
	transport domain.TransportSender,
	trustSvc *trust.Service,
	access *channel.Service,
	cache *dedupe.Cache,
	m *metrics.Metrics,
) *Service {
	return &Service{
		channels:       map[string][]domain.Message{},
		private:        map[domain.Identity][]domain.Message{},
		unreadChannels: map[string]int{},
		unreadPrivate:  map[domain.Identity]struct{}{},
		transport:      transport,
		trust:          trustSvc,
		access:         access,
		cache:          cache,
		metrics:        m,
		now:            time.Now,
	}
}

// SetResolver attaches the identity reconciliation engine. Set after
// construction because the engine in turn merges this service's timelines.
func (s *Service) SetResolver(r Resolver) { s.resolver = r }

// ---------- outbound ----------

// SendPrivate records an outbound private message as Sending and dispatches
// it. Dispatch is fire-and-forget; the outcome arrives later as a delivery
// event.
func (s *Service) SendPrivate(to domain.Identity, nickname, content string) (domain.Message, error) {
	if s.blocked(to) {
		return domain.Message{}, ErrBlockedPeer
	}
	msg := s.newOutbound(nickname, content)
	msg.Private = true

	s.mu.Lock()
	s.private[to] = append(s.private[to], msg)
	s.mu.Unlock()
	s.metrics.IncMessagesStored()

	s.transport.SendPrivate(to, []byte(content))
	return msg, nil
}

// SendBroadcast records an outbound broadcast message and dispatches it.
func (s *Service) SendBroadcast(nickname, content string) domain.Message {
	msg := s.newOutbound(nickname, content)

	s.mu.Lock()
	s.broadcast = append(s.broadcast, msg)
	s.mu.Unlock()
	s.metrics.IncMessagesStored()

	s.transport.SendBroadcast([]byte(content))
	return msg
}

// SendToChannel seals content for the channel and dispatches it. The send is
// rejected before dispatch when the channel is not joined or has no key.
func (s *Service) SendToChannel(tag, nickname, content string) (domain.Message, error) {
	sealed, err := s.access.Seal(tag, []byte(content))
	if err != nil {
		return domain.Message{}, err
	}
	msg := s.newOutbound(nickname, content)
	msg.Channel = tag

	s.mu.Lock()
	s.channels[tag] = append(s.channels[tag], msg)
	s.mu.Unlock()
	s.metrics.IncMessagesStored()

	s.transport.SendToChannel(tag, sealed)
	return msg, nil
}

func (s *Service) newOutbound(nickname, content string) domain.Message {
	return domain.Message{
		ID:        uuid.NewString(),
		Nickname:  nickname,
		Content:   content,
		Timestamp: s.now(),
		Mine:      true,
		Status:    domain.Sending(),
	}
}

func (s *Service) blocked(to domain.Identity) bool {
	switch to.Kind {
	case domain.KindFingerprint:
		return s.trust.IsBlocked(domain.Fingerprint(to.Value))
	case domain.KindEphemeral:
		return s.trust.BlockedBySession(to.Value)
	default:
		return false
	}
}

// ---------- inbound ----------

// Inbound applies one received message. It reports false when the message
// was dropped: a redundant copy from an overlapping transport path, or a
// sender the user has blocked.
func (s *Service) Inbound(msg domain.Message) bool {
	key := dedupe.Key(msg.SenderSession+"|"+msg.Nickname, msg.Timestamp, msg.Content)
	if s.cache.IsDuplicate(key) {
		s.metrics.IncDuplicatesDropped()
		debuglog.Debugf("message %s: duplicate dropped", msg.ID)
		return false
	}
	s.cache.MarkSeen(key)

	if msg.SenderSession != "" && s.trust.BlockedBySession(msg.SenderSession) {
		s.metrics.IncBlockedDropped()
		return false
	}

	switch {
	case msg.Channel != "":
		s.addChannel(msg, false)
	case msg.Private:
		conversation := domain.EphemeralID(msg.SenderSession)
		if s.resolver != nil {
			conversation = s.resolver.Canonical(conversation)
		}
		s.AddPrivate(conversation, msg, false)
	default:
		s.addBroadcast(msg)
	}
	return true
}

// InboundSealed decrypts a sealed channel payload and applies the message.
// Decryption failure drops the message silently; no partial content is ever
// stored.
func (s *Service) InboundSealed(msg domain.Message, sealed []byte) bool {
	pt, ok := s.access.Open(msg.Channel, sealed)
	if !ok {
		s.metrics.IncDecryptFailures()
		debuglog.Debugf("channel %s: dropping undecryptable payload from %s", msg.Channel, msg.Nickname)
		return false
	}
	msg.Content = string(pt)
	return s.Inbound(msg)
}

func (s *Service) addBroadcast(msg domain.Message) {
	s.mu.Lock()
	s.broadcast = append(s.broadcast, msg)
	s.mu.Unlock()
	s.metrics.IncMessagesStored()
}

func (s *Service) addChannel(msg domain.Message, knownRead bool) {
	s.mu.Lock()
	tag := msg.Channel
	s.channels[tag] = append(s.channels[tag], msg)
	if !knownRead && !msg.Mine && s.openChannel != tag {
		s.unreadChannels[tag]++
	}
	s.mu.Unlock()
	s.metrics.IncMessagesStored()
}

// AddPrivate appends a message to the identity's timeline, creating it on
// first reference. knownRead suppresses the unread flag for messages
// restored from a persisted read store.
func (s *Service) AddPrivate(id domain.Identity, msg domain.Message, knownRead bool) {
	s.mu.Lock()
	s.private[id] = append(s.private[id], msg)
	if !knownRead && !msg.Mine && s.openPrivate != id {
		s.unreadPrivate[id] = struct{}{}
	}
	s.mu.Unlock()
	s.metrics.IncMessagesStored()
}

// ---------- delivery state ----------

// ApplyStatus merges a reported status into every occurrence of the message
// across the three stores; transport fan-out legitimately duplicates an id
// across stores. It returns the highest-ranked status actually stored, which
// may differ from the report, and false when the id is unknown.
func (s *Service) ApplyStatus(messageID string, next domain.DeliveryStatus) (domain.DeliveryStatus, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var final domain.DeliveryStatus
	found := false

	apply := func(list []domain.Message) {
		for i := range list {
			if list[i].ID != messageID {
				continue
			}
			merged := mergeStatus(list[i].Status, next)
			if merged == list[i].Status && merged != next {
				s.metrics.IncStatusIgnored()
			}
			list[i].Status = merged
			if !found || merged.Rank() > final.Rank() {
				final = merged
			}
			found = true
		}
	}

	apply(s.broadcast)
	for _, list := range s.channels {
		apply(list)
	}
	for _, list := range s.private {
		apply(list)
	}
	return final, found
}

// OnDeliveryAck applies a Delivered acknowledgement from a peer.
func (s *Service) OnDeliveryAck(messageID, from string) {
	s.ApplyStatus(messageID, domain.Delivered(from, s.now()))
}

// OnReadReceipt applies a Read receipt from a peer.
func (s *Service) OnReadReceipt(messageID, from string) {
	s.ApplyStatus(messageID, domain.Read(from, s.now()))
}

// OnSendFailed records a transport dispatch failure on the originating
// message. Subject to the merge rule: a message another transport already
// carried is not regressed.
func (s *Service) OnSendFailed(messageID, reason string) {
	s.ApplyStatus(messageID, domain.Failed(reason))
}

// SetTransfer stamps the transfer id onto every occurrence of the message,
// marking it as the representation of an in-flight binary send. It reports
// false when the id is unknown.
func (s *Service) SetTransfer(messageID, transferID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	set := false
	stamp := func(list []domain.Message) {
		for i := range list {
			if list[i].ID == messageID {
				list[i].TransferID = transferID
				set = true
			}
		}
	}
	stamp(s.broadcast)
	for _, list := range s.channels {
		stamp(list)
	}
	for _, list := range s.private {
		stamp(list)
	}
	return set
}

// Remove deletes the message from whichever store contains it. Used only for
// explicit user-initiated cancellation of an in-flight transfer.
func (s *Service) Remove(messageID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := false
	drop := func(list []domain.Message) []domain.Message {
		for i := range list {
			if list[i].ID == messageID {
				removed = true
				return append(list[:i], list[i+1:]...)
			}
		}
		return list
	}

	s.broadcast = drop(s.broadcast)
	for tag, list := range s.channels {
		s.channels[tag] = drop(list)
	}
	for id, list := range s.private {
		s.private[id] = drop(list)
	}
	return removed
}

// ---------- identity merge ----------

// MergePrivate moves every source timeline onto target, preserving relative
// order, and transfers unread markers and the open-conversation pointer.
// Merging an empty or already-merged source is a no-op. Runs under the same
// lock as timeline appends, so a message cannot land on an identity mid-merge.
func (s *Service) MergePrivate(target domain.Identity, sources ...domain.Identity) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	moved := 0
	for _, src := range sources {
		if src == target {
			continue
		}
		msgs, ok := s.private[src]
		if !ok || len(msgs) == 0 {
			delete(s.private, src)
			continue
		}
		s.private[target] = append(s.private[target], msgs...)
		delete(s.private, src)
		moved += len(msgs)

		if _, unread := s.unreadPrivate[src]; unread {
			delete(s.unreadPrivate, src)
			s.unreadPrivate[target] = struct{}{}
		}
		if s.openPrivate == src {
			s.openPrivate = target
		}
	}
	return moved
}

// HasPrivate reports whether the identity keys a non-empty timeline.
func (s *Service) HasPrivate(id domain.Identity) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.private[id]) > 0
}

// ---------- query surface ----------

// OpenPrivate focuses a private conversation, clears its unread marker, and
// returns the ids of received messages a read receipt should be sent for.
func (s *Service) OpenPrivate(id domain.Identity) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.openPrivate = id
	delete(s.unreadPrivate, id)

	var receipts []string
	for _, m := range s.private[id] {
		if !m.Mine {
			receipts = append(receipts, m.ID)
		}
	}
	return receipts
}

// OpenChannel focuses a channel and clears its unread count.
func (s *Service) OpenChannel(tag string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.openChannel = tag
	delete(s.unreadChannels, tag)
}

// Broadcast returns a copy of the broadcast timeline.
func (s *Service) Broadcast() []domain.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Message(nil), s.broadcast...)
}

// ChannelTimeline returns a copy of the channel's timeline, creating an
// empty one on first reference.
func (s *Service) ChannelTimeline(tag string) []domain.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.channels[tag]; !ok {
		s.channels[tag] = nil
	}
	return append([]domain.Message(nil), s.channels[tag]...)
}

// PrivateTimeline returns a copy of the identity's timeline, creating an
// empty one on first reference.
func (s *Service) PrivateTimeline(id domain.Identity) []domain.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.private[id]; !ok {
		s.private[id] = nil
	}
	return append([]domain.Message(nil), s.private[id]...)
}

// Conversations lists identities with a private timeline, in stable order.
func (s *Service) Conversations() []domain.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Identity, 0, len(s.private))
	for id := range s.private {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		return out[i].Value < out[j].Value
	})
	return out
}

// UnreadPrivate lists identities with unread private messages.
func (s *Service) UnreadPrivate() []domain.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Identity, 0, len(s.unreadPrivate))
	for id := range s.unreadPrivate {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Value < out[j].Value })
	return out
}

// UnreadCount returns the unread count for a channel.
func (s *Service) UnreadCount(tag string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unreadChannels[tag]
}

// TotalCount returns the number of messages across all three stores.
func (s *Service) TotalCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.broadcast)
	for _, list := range s.channels {
		n += len(list)
	}
	for _, list := range s.private {
		n += len(list)
	}
	return n
}
