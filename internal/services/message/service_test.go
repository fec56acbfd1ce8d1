package message_test

import (
	"errors"
	"testing"
	"time"

	"meshtalk/internal/dedupe"
	"meshtalk/internal/domain"
	"meshtalk/internal/services/channel"
	"meshtalk/internal/services/message"
	"meshtalk/internal/services/trust"
	"meshtalk/internal/store"
)

// recordingTransport captures dispatched payloads.
type recordingTransport struct {
	private   int
	broadcast int
	channel   int
}

func (r *recordingTransport) SendPrivate(domain.Identity, []byte) { r.private++ }
func (r *recordingTransport) SendBroadcast([]byte)                { r.broadcast++ }
func (r *recordingTransport) SendToChannel(string, []byte)        { r.channel++ }

type sessionDirectory map[string]domain.Fingerprint

func (d sessionDirectory) FingerprintForSession(id string) (domain.Fingerprint, bool) {
	f, ok := d[id]
	return f, ok
}
func (d sessionDirectory) RelayPubkeyForAlias(string) (string, bool) { return "", false }
func (d sessionDirectory) FingerprintForRelayPubkey(string) (domain.Fingerprint, bool) {
	return "", false
}
func (d sessionDirectory) RelayPubkeyForFingerprint(domain.Fingerprint) (string, bool) {
	return "", false
}

type fixture struct {
	svc       *message.Service
	transport *recordingTransport
	trust     *trust.Service
	access    *channel.Service
}

func newFixture(t *testing.T, dir sessionDirectory) *fixture {
	t.Helper()
	home := t.TempDir()
	tr := &recordingTransport{}
	ts := trust.New(store.NewTrustFileStore(home), dir)
	access := channel.New(store.NewChannelFileStore(home))
	svc := message.New(tr, ts, access, dedupe.New(100, time.Second), nil)
	return &fixture{svc: svc, transport: tr, trust: ts, access: access}
}

func inboundPrivate(id, session, content string) domain.Message {
	return domain.Message{
		ID:            id,
		Nickname:      "bob",
		SenderSession: session,
		Content:       content,
		Timestamp:     time.Now(),
		Private:       true,
		Status:        domain.Sent(),
	}
}

func TestInbound_DuplicateDropped(t *testing.T) {
	f := newFixture(t, nil)
	msg := inboundPrivate("m1", "E1", "hello")

	if !f.svc.Inbound(msg) {
		t.Fatal("first copy dropped")
	}
	// Same sender, timestamp and content via another transport path.
	dup := msg
	dup.ID = "m1-copy"
	if f.svc.Inbound(dup) {
		t.Fatal("redundant copy applied")
	}
	if n := f.svc.TotalCount(); n != 1 {
		t.Fatalf("stored %d messages, want 1", n)
	}
}

func TestInbound_BlockedSenderDropped(t *testing.T) {
	dir := sessionDirectory{"E1": "fp-bob"}
	f := newFixture(t, dir)
	if err := f.trust.SetBlocked("fp-bob", true); err != nil {
		t.Fatalf("block: %v", err)
	}

	if f.svc.Inbound(inboundPrivate("m1", "E1", "hi")) {
		t.Fatal("message from blocked sender applied")
	}
	if n := f.svc.TotalCount(); n != 0 {
		t.Fatalf("stored %d messages, want 0", n)
	}
}

func TestInbound_UnreadTracking(t *testing.T) {
	f := newFixture(t, nil)
	conv := domain.EphemeralID("E1")

	f.svc.Inbound(inboundPrivate("m1", "E1", "one"))
	if got := f.svc.UnreadPrivate(); len(got) != 1 || got[0] != conv {
		t.Fatalf("unread = %v, want [%v]", got, conv)
	}

	receipts := f.svc.OpenPrivate(conv)
	if len(receipts) != 1 || receipts[0] != "m1" {
		t.Fatalf("receipts = %v, want [m1]", receipts)
	}
	if got := f.svc.UnreadPrivate(); len(got) != 0 {
		t.Fatalf("unread after open = %v", got)
	}

	// The open conversation accrues no unread marker.
	f.svc.Inbound(inboundPrivate("m2", "E1", "two"))
	if got := f.svc.UnreadPrivate(); len(got) != 0 {
		t.Fatalf("open conversation flagged unread: %v", got)
	}
}

func TestInbound_KnownReadRestoreSkipsUnread(t *testing.T) {
	f := newFixture(t, nil)
	conv := domain.EphemeralID("E1")
	f.svc.AddPrivate(conv, inboundPrivate("m1", "E1", "restored"), true)

	if got := f.svc.UnreadPrivate(); len(got) != 0 {
		t.Fatalf("restored message flagged unread: %v", got)
	}
}

func TestSendToChannel_SealsBeforeDispatch(t *testing.T) {
	f := newFixture(t, nil)

	if _, err := f.svc.SendToChannel("general", "alice", "hi"); !errors.Is(err, channel.ErrNotJoined) {
		t.Fatalf("err = %v, want ErrNotJoined", err)
	}
	if f.transport.channel != 0 {
		t.Fatal("dispatched despite rejected seal")
	}

	if err := f.access.Join("general", "pw", ""); err != nil {
		t.Fatalf("join: %v", err)
	}
	msg, err := f.svc.SendToChannel("general", "alice", "hi")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if f.transport.channel != 1 {
		t.Fatal("no dispatch after successful seal")
	}
	if msg.Status.State != domain.StateSending {
		t.Fatalf("fresh send status = %v", msg.Status.State)
	}
}

func TestInboundSealed_WrongKeyDropped(t *testing.T) {
	sender := newFixture(t, nil)
	if err := sender.access.Join("general", "correct-horse", ""); err != nil {
		t.Fatalf("join: %v", err)
	}
	sealed, err := sender.access.Seal("general", []byte("secret"))
	if err != nil {
		t.Fatalf("seal: %v", err)
	}

	receiver := newFixture(t, nil)
	if err := receiver.access.Join("general", "wrong-password", ""); err != nil {
		t.Fatalf("join: %v", err)
	}
	msg := domain.Message{ID: "m1", Nickname: "bob", Channel: "general", Timestamp: time.Now()}
	if receiver.svc.InboundSealed(msg, sealed) {
		t.Fatal("undecryptable payload applied")
	}
	if n := receiver.svc.TotalCount(); n != 0 {
		t.Fatalf("stored %d messages, want 0", n)
	}
}

func TestApplyStatus_AcrossStoreFanOut(t *testing.T) {
	f := newFixture(t, nil)
	// The same id lands in the broadcast store and a private timeline during
	// transport fan-out.
	shared := inboundPrivate("m1", "E1", "fan-out")
	f.svc.Inbound(shared)
	bcast := shared
	bcast.Private = false
	bcast.Content = "fan-out*" // distinct content so dedupe lets it through
	f.svc.Inbound(bcast)

	final, ok := f.svc.ApplyStatus("m1", domain.Delivered("bob", time.Now()))
	if !ok || final.State != domain.StateDelivered {
		t.Fatalf("ApplyStatus = %v, %v", final, ok)
	}
	for _, m := range f.svc.Broadcast() {
		if m.ID == "m1" && m.Status.State != domain.StateDelivered {
			t.Fatalf("broadcast occurrence not updated: %v", m.Status.State)
		}
	}
	for _, m := range f.svc.PrivateTimeline(domain.EphemeralID("E1")) {
		if m.ID == "m1" && m.Status.State != domain.StateDelivered {
			t.Fatalf("private occurrence not updated: %v", m.Status.State)
		}
	}
}

func TestApplyStatus_OutOfOrderAckKeepsDelivered(t *testing.T) {
	f := newFixture(t, nil)
	f.svc.Inbound(inboundPrivate("m1", "E1", "x"))

	f.svc.OnDeliveryAck("m1", "bob")
	// A Sent report arrives late over a slower transport.
	final, ok := f.svc.ApplyStatus("m1", domain.Sent())
	if !ok {
		t.Fatal("message not found")
	}
	if final.State != domain.StateDelivered {
		t.Fatalf("late Sent regressed status to %v", final.State)
	}
}

func TestApplyStatus_UnknownMessage(t *testing.T) {
	f := newFixture(t, nil)
	if _, ok := f.svc.ApplyStatus("ghost", domain.Sent()); ok {
		t.Fatal("unknown id reported found")
	}
}

func TestRemove_DeletesSingleOccurrence(t *testing.T) {
	f := newFixture(t, nil)
	f.svc.Inbound(inboundPrivate("m1", "E1", "a"))
	f.svc.Inbound(inboundPrivate("m2", "E1", "b"))

	if !f.svc.Remove("m1") {
		t.Fatal("remove reported not found")
	}
	if f.svc.Remove("m1") {
		t.Fatal("second remove reported found")
	}
	tl := f.svc.PrivateTimeline(domain.EphemeralID("E1"))
	if len(tl) != 1 || tl[0].ID != "m2" {
		t.Fatalf("timeline after remove = %v", tl)
	}
}

func TestSetTransfer_StampsStoredMessage(t *testing.T) {
	f := newFixture(t, nil)
	conv := domain.FingerprintID("fp-bob")
	msg, err := f.svc.SendPrivate(conv, "alice", "here is the file")
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	if !f.svc.SetTransfer(msg.ID, "t1") {
		t.Fatal("stamp reported not found")
	}
	if f.svc.SetTransfer("m-ghost", "t2") {
		t.Fatal("stamped an unknown message")
	}

	tl := f.svc.PrivateTimeline(conv)
	if len(tl) != 1 || tl[0].TransferID != "t1" {
		t.Fatalf("timeline after stamp = %v", tl)
	}
}

func TestMergePrivate_ConservesAndMovesState(t *testing.T) {
	f := newFixture(t, nil)
	fp := domain.FingerprintID("fp-bob")
	live := domain.EphemeralID("E1")

	for _, id := range []string{"m1", "m2", "m3"} {
		f.svc.AddPrivate(fp, inboundPrivate(id, "", id), false)
	}
	before := f.svc.TotalCount()

	moved := f.svc.MergePrivate(live, fp)
	if moved != 3 {
		t.Fatalf("moved %d messages, want 3", moved)
	}
	if f.svc.TotalCount() != before {
		t.Fatalf("merge changed total count: %d != %d", f.svc.TotalCount(), before)
	}
	if f.svc.HasPrivate(fp) {
		t.Fatal("source timeline still present")
	}
	tl := f.svc.PrivateTimeline(live)
	if len(tl) != 3 || tl[0].ID != "m1" || tl[2].ID != "m3" {
		t.Fatalf("merged timeline out of order: %v", tl)
	}
	// Unread marker followed the merge.
	if got := f.svc.UnreadPrivate(); len(got) != 1 || got[0] != live {
		t.Fatalf("unread after merge = %v", got)
	}

	// Merging again is a no-op.
	if again := f.svc.MergePrivate(live, fp); again != 0 {
		t.Fatalf("second merge moved %d messages", again)
	}
	if f.svc.TotalCount() != before {
		t.Fatal("idempotent merge changed count")
	}
}

func TestSendPrivate_BlockedPeerRejected(t *testing.T) {
	dir := sessionDirectory{"E1": "fp-bob"}
	f := newFixture(t, dir)
	if err := f.trust.SetBlocked("fp-bob", true); err != nil {
		t.Fatalf("block: %v", err)
	}

	if _, err := f.svc.SendPrivate(domain.FingerprintID("fp-bob"), "alice", "hi"); !errors.Is(err, message.ErrBlockedPeer) {
		t.Fatalf("err = %v, want ErrBlockedPeer", err)
	}
	if _, err := f.svc.SendPrivate(domain.EphemeralID("E1"), "alice", "hi"); !errors.Is(err, message.ErrBlockedPeer) {
		t.Fatalf("err by session = %v, want ErrBlockedPeer", err)
	}
	if f.transport.private != 0 {
		t.Fatal("dispatched to a blocked peer")
	}
}
