package channel_test

import (
	"bytes"
	"errors"
	"testing"

	"meshtalk/internal/services/channel"
	"meshtalk/internal/store"
)

func newService(t *testing.T) (*channel.Service, string) {
	t.Helper()
	home := t.TempDir()
	return channel.New(store.NewChannelFileStore(home)), home
}

func TestChannel_SealOpen_RoundTrip(t *testing.T) {
	svc, _ := newService(t)

	if err := svc.Join("general", "correct-horse", "fp-creator"); err != nil {
		t.Fatalf("join: %v", err)
	}
	blob, err := svc.Seal("general", []byte("hello channel"))
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if bytes.Contains(blob, []byte("hello channel")) {
		t.Fatal("sealed blob contains plaintext")
	}
	pt, ok := svc.Open("general", blob)
	if !ok || string(pt) != "hello channel" {
		t.Fatalf("open = %q, %v", pt, ok)
	}
}

func TestChannel_WrongPasswordDropsSilently(t *testing.T) {
	sender, _ := newService(t)
	receiver, _ := newService(t)

	if err := sender.Join("general", "correct-horse", ""); err != nil {
		t.Fatalf("sender join: %v", err)
	}
	if err := receiver.Join("general", "wrong-password", ""); err != nil {
		t.Fatalf("receiver join: %v", err)
	}

	blob, err := sender.Seal("general", []byte("secret"))
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if pt, ok := receiver.Open("general", blob); ok {
		t.Fatalf("wrong password opened payload: %q", pt)
	}
}

func TestChannel_SealRequiresJoin(t *testing.T) {
	svc, _ := newService(t)
	if _, err := svc.Seal("general", []byte("x")); !errors.Is(err, channel.ErrNotJoined) {
		t.Fatalf("err = %v, want ErrNotJoined", err)
	}
}

func TestChannel_OpenChannelPassthrough(t *testing.T) {
	svc, _ := newService(t)
	if err := svc.Join("lobby", "", ""); err != nil {
		t.Fatalf("join: %v", err)
	}
	blob, err := svc.Seal("lobby", []byte("plain"))
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if string(blob) != "plain" {
		t.Fatalf("open channel altered payload: %q", blob)
	}
	pt, ok := svc.Open("lobby", blob)
	if !ok || string(pt) != "plain" {
		t.Fatalf("open = %q, %v", pt, ok)
	}
}

func TestChannel_OpenRequiresJoin(t *testing.T) {
	sender, _ := newService(t)
	if err := sender.Join("secret-club", "pw", ""); err != nil {
		t.Fatalf("join: %v", err)
	}
	blob, err := sender.Seal("secret-club", []byte("members only"))
	if err != nil {
		t.Fatalf("seal: %v", err)
	}

	// A receiver that never joined must drop the payload, not surface the
	// sealed bytes as content.
	receiver, _ := newService(t)
	if pt, ok := receiver.Open("secret-club", blob); ok {
		t.Fatalf("never-joined channel opened payload: %q", pt)
	}

	// Same after an explicit leave.
	if err := sender.Leave("secret-club"); err != nil {
		t.Fatalf("leave: %v", err)
	}
	if pt, ok := sender.Open("secret-club", blob); ok {
		t.Fatalf("left channel opened payload: %q", pt)
	}
}

func TestChannel_LeaveWipesKey(t *testing.T) {
	svc, _ := newService(t)
	if err := svc.Join("general", "pw", ""); err != nil {
		t.Fatalf("join: %v", err)
	}
	if !svc.HasKey("general") {
		t.Fatal("no key after join")
	}
	if err := svc.Leave("general"); err != nil {
		t.Fatalf("leave: %v", err)
	}
	if svc.HasKey("general") {
		t.Fatal("key survived leave")
	}
	if svc.Joined("general") {
		t.Fatal("still joined after leave")
	}
}

func TestChannel_KeyNeverPersisted(t *testing.T) {
	home := t.TempDir()
	svc := channel.New(store.NewChannelFileStore(home))
	if err := svc.Join("general", "pw", ""); err != nil {
		t.Fatalf("join: %v", err)
	}

	// A fresh service over the same store knows the membership but holds no
	// key material until Join is called again with the password.
	again := channel.New(store.NewChannelFileStore(home))
	if !again.Joined("general") {
		t.Fatal("membership did not persist")
	}
	if again.HasKey("general") {
		t.Fatal("key material leaked into the store")
	}
	if _, err := again.Seal("general", []byte("x")); !errors.Is(err, channel.ErrNoKey) {
		t.Fatalf("err = %v, want ErrNoKey", err)
	}
}
