package app_test

import (
	"testing"
	"time"

	"meshtalk/internal/app"
	"meshtalk/internal/crypto"
	"meshtalk/internal/domain"
)

func testConfig(t *testing.T) app.Config {
	t.Helper()
	return app.Config{
		Home:          t.TempDir(),
		Nickname:      "alice",
		DedupeMax:     10,
		ControlWindow: time.Second,
	}
}

// fakeSessionLayer is a scripted transport-side session table.
type fakeSessionLayer struct {
	me        string
	existing  map[string]bool
	initiated []string
}

func (f *fakeSessionLayer) MyID() string              { return f.me }
func (f *fakeSessionLayer) HasSession(id string) bool { return f.existing[id] }
func (f *fakeSessionLayer) InitiateHandshake(id string) {
	f.initiated = append(f.initiated, id)
}

func TestOpenPrivate_WinningSideInitiates(t *testing.T) {
	sessions := &fakeSessionLayer{me: "aaa", existing: map[string]bool{}}
	w, err := app.NewWire(testConfig(t), app.Collaborators{Sessions: sessions})
	if err != nil {
		t.Fatalf("wire: %v", err)
	}

	_, ann, err := w.OpenPrivate(domain.EphemeralID("zzz"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if ann != nil {
		t.Fatalf("initiating side returned announcement %+v", ann)
	}
	if len(sessions.initiated) != 1 || sessions.initiated[0] != "zzz" {
		t.Fatalf("initiated = %v", sessions.initiated)
	}
}

func TestOpenPrivate_WaitingSideAnnounces(t *testing.T) {
	sessions := &fakeSessionLayer{me: "zzz", existing: map[string]bool{}}
	w, err := app.NewWire(testConfig(t), app.Collaborators{Sessions: sessions})
	if err != nil {
		t.Fatalf("wire: %v", err)
	}
	local := domain.LocalIdentity{Pub: [32]byte{7}, Nickname: "alice"}
	w.SetLocalIdentity(local)

	_, ann, err := w.OpenPrivate(domain.EphemeralID("aaa"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if ann == nil {
		t.Fatal("waiting side returned no announcement")
	}
	if ann.Nickname != "alice" {
		t.Fatalf("announcement nickname = %q", ann.Nickname)
	}
	if want := domain.Fingerprint(crypto.Fingerprint(local.Pub[:])); ann.Fingerprint != want {
		t.Fatalf("announcement fingerprint = %q, want %q", ann.Fingerprint, want)
	}
	if len(sessions.initiated) != 0 {
		t.Fatalf("waiting side initiated: %v", sessions.initiated)
	}
}

func TestOpenPrivate_ExistingSessionNoConsultation(t *testing.T) {
	sessions := &fakeSessionLayer{me: "aaa", existing: map[string]bool{"zzz": true}}
	w, err := app.NewWire(testConfig(t), app.Collaborators{Sessions: sessions})
	if err != nil {
		t.Fatalf("wire: %v", err)
	}

	_, ann, err := w.OpenPrivate(domain.EphemeralID("zzz"))
	if err != nil || ann != nil {
		t.Fatalf("open = %+v, %v; want no announcement, no error", ann, err)
	}
	if len(sessions.initiated) != 0 {
		t.Fatalf("initiated despite existing session: %v", sessions.initiated)
	}
}

func TestOpenPrivate_NoSessionLayer(t *testing.T) {
	w, err := app.NewWire(testConfig(t), app.Collaborators{})
	if err != nil {
		t.Fatalf("wire: %v", err)
	}
	if w.Handshakes != nil {
		t.Fatal("policy constructed without a session layer")
	}

	// Opening still focuses the conversation and clears unread state.
	conv := domain.EphemeralID("E1")
	w.Messages.AddPrivate(conv, domain.Message{ID: "m1", Content: "hi"}, false)
	receipts, ann, err := w.OpenPrivate(conv)
	if err != nil || ann != nil {
		t.Fatalf("open = %+v, %v", ann, err)
	}
	if len(receipts) != 1 || receipts[0] != "m1" {
		t.Fatalf("receipts = %v", receipts)
	}
	if got := w.Messages.UnreadPrivate(); len(got) != 0 {
		t.Fatalf("unread after open = %v", got)
	}
}

func TestOpenPrivate_StableIdentityNotConsulted(t *testing.T) {
	sessions := &fakeSessionLayer{me: "aaa", existing: map[string]bool{}}
	w, err := app.NewWire(testConfig(t), app.Collaborators{Sessions: sessions})
	if err != nil {
		t.Fatalf("wire: %v", err)
	}

	// A fingerprint-keyed conversation has no live session to hand to the
	// policy; opening it must not start a handshake.
	_, ann, err := w.OpenPrivate(domain.FingerprintID("fp-bob"))
	if err != nil || ann != nil {
		t.Fatalf("open = %+v, %v", ann, err)
	}
	if len(sessions.initiated) != 0 {
		t.Fatalf("initiated for a stable identity: %v", sessions.initiated)
	}
}
