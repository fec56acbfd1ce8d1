package transfer

import (
	"sync"
	"time"

	"meshtalk/internal/debuglog"
	"meshtalk/internal/domain"
	"meshtalk/internal/metrics"
)

// StatusStore is the slice of the message store the registry drives.
type StatusStore interface {
	ApplyStatus(messageID string, next domain.DeliveryStatus) (domain.DeliveryStatus, bool)
	Remove(messageID string) bool
	SetTransfer(messageID, transferID string) bool
}

// Registry is the bidirectional transferId <-> messageId table.
type Registry struct {
	mu         sync.Mutex
	byTransfer map[string]string
	byMessage  map[string]string

	messages StatusStore
	aborter  domain.TransferAborter // optional
	metrics  *metrics.Metrics
	now      func() time.Time
}

// New returns a registry routing progress into messages. aborter may be nil
// when no transport-side cancellation hook is attached.
func New(messages StatusStore, aborter domain.TransferAborter, m *metrics.Metrics) *Registry {
	return &Registry{
		byTransfer: map[string]string{},
		byMessage:  map[string]string{},
		messages:   messages,
		aborter:    aborter,
		metrics:    m,
		now:        time.Now,
	}
}

// Link records the association when a binary send begins and stamps the
// transfer id onto the representing message.
func (r *Registry) Link(transferID, messageID string) {
	r.mu.Lock()
	r.byTransfer[transferID] = messageID
	r.byMessage[messageID] = transferID
	r.mu.Unlock()

	if !r.messages.SetTransfer(messageID, transferID) {
		debuglog.Debugf("transfer %s: linked to unknown message %s", transferID, messageID)
	}
}

// MessageFor returns the message representing a transfer.
func (r *Registry) MessageFor(transferID string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byTransfer[transferID]
	return id, ok
}

// TransferFor returns the transfer behind a message.
func (r *Registry) TransferFor(messageID string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byMessage[messageID]
	return id, ok
}

// Links lists current associations, for inspection.
func (r *Registry) Links() []domain.TransferLink {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.TransferLink, 0, len(r.byTransfer))
	for tid, mid := range r.byTransfer {
		out = append(out, domain.TransferLink{TransferID: tid, MessageID: mid})
	}
	return out
}

// Progress routes a progress report onto the representing message. Unknown
// transfers are ignored: the link may already have been released.
func (r *Registry) Progress(transferID string, sent, total int) {
	mid, ok := r.MessageFor(transferID)
	if !ok {
		return
	}
	r.messages.ApplyStatus(mid, domain.PartiallyDelivered(sent, total))
}

// Complete marks the transfer's message delivered and releases the link.
func (r *Registry) Complete(transferID string) {
	mid, ok := r.unlink(transferID)
	if !ok {
		return
	}
	r.messages.ApplyStatus(mid, domain.Delivered("", r.now()))
}

// Cancel is the user-initiated abort: release the link, tell the transport
// to stop, then remove the representing message. Cancelling an unknown or
// already-completed transfer is a no-op.
func (r *Registry) Cancel(transferID string) {
	mid, ok := r.unlink(transferID)
	if !ok {
		return
	}
	if r.aborter != nil {
		r.aborter.AbortTransfer(transferID)
	}
	if !r.messages.Remove(mid) {
		debuglog.Debugf("transfer %s: cancelled but message %s already gone", transferID, mid)
	}
	r.metrics.IncTransfersCancelled()
}

// CancelByMessage cancels via the representing message's id.
func (r *Registry) CancelByMessage(messageID string) {
	if tid, ok := r.TransferFor(messageID); ok {
		r.Cancel(tid)
	}
}

// OnTransferProgress is the transport-facing event entry point.
func (r *Registry) OnTransferProgress(transferID string, sent, total int, completed bool) {
	if completed {
		r.Complete(transferID)
		return
	}
	r.Progress(transferID, sent, total)
}

func (r *Registry) unlink(transferID string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	mid, ok := r.byTransfer[transferID]
	if !ok {
		return "", false
	}
	delete(r.byTransfer, transferID)
	delete(r.byMessage, mid)
	return mid, true
}
