// Package metrics counts engine events worth inspecting after the fact:
// duplicate drops, silent decrypt failures, ignored status regressions and
// identity merges. Counters are atomic; all methods are safe on a nil
// receiver so call sites never have to guard.
package metrics

import (
	"encoding/json"
	"os"
	"sync/atomic"
	"time"
)

// Snapshot is the JSON form written for inspection.
type Snapshot struct {
	GeneratedAt        time.Time `json:"generated_at"`
	DuplicatesDropped  uint64    `json:"duplicates_dropped"`
	ControlSuppressed  uint64    `json:"control_suppressed"`
	DecryptFailures    uint64    `json:"decrypt_failures"`
	StatusIgnored      uint64    `json:"status_ignored"`
	IdentityMerges     uint64    `json:"identity_merges"`
	MessagesStored     uint64    `json:"messages_stored"`
	BlockedDropped     uint64    `json:"blocked_dropped"`
	TransfersCancelled uint64    `json:"transfers_cancelled"`
}

type Metrics struct {
	duplicatesDropped  atomic.Uint64
	controlSuppressed  atomic.Uint64
	decryptFailures    atomic.Uint64
	statusIgnored      atomic.Uint64
	identityMerges     atomic.Uint64
	messagesStored     atomic.Uint64
	blockedDropped     atomic.Uint64
	transfersCancelled atomic.Uint64
}

func New() *Metrics { return &Metrics{} }

func (m *Metrics) IncDuplicatesDropped() {
	if m == nil {
		return
	}
	m.duplicatesDropped.Add(1)
}

func (m *Metrics) IncControlSuppressed() {
	if m == nil {
		return
	}
	m.controlSuppressed.Add(1)
}

func (m *Metrics) IncDecryptFailures() {
	if m == nil {
		return
	}
	m.decryptFailures.Add(1)
}

func (m *Metrics) IncStatusIgnored() {
	if m == nil {
		return
	}
	m.statusIgnored.Add(1)
}

func (m *Metrics) IncIdentityMerges() {
	if m == nil {
		return
	}
	m.identityMerges.Add(1)
}

func (m *Metrics) IncMessagesStored() {
	if m == nil {
		return
	}
	m.messagesStored.Add(1)
}

func (m *Metrics) IncBlockedDropped() {
	if m == nil {
		return
	}
	m.blockedDropped.Add(1)
}

func (m *Metrics) IncTransfersCancelled() {
	if m == nil {
		return
	}
	m.transfersCancelled.Add(1)
}

func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{GeneratedAt: time.Now().UTC()}
	}
	return Snapshot{
		GeneratedAt:        time.Now().UTC(),
		DuplicatesDropped:  m.duplicatesDropped.Load(),
		ControlSuppressed:  m.controlSuppressed.Load(),
		DecryptFailures:    m.decryptFailures.Load(),
		StatusIgnored:      m.statusIgnored.Load(),
		IdentityMerges:     m.identityMerges.Load(),
		MessagesStored:     m.messagesStored.Load(),
		BlockedDropped:     m.blockedDropped.Load(),
		TransfersCancelled: m.transfersCancelled.Load(),
	}
}

// WriteSnapshot writes the current snapshot as indented JSON. An empty path
// is a no-op.
func (m *Metrics) WriteSnapshot(path string) error {
	if path == "" {
		return nil
	}
	data, err := json.MarshalIndent(m.Snapshot(), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
