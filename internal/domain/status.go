package domain

import "time"

// DeliveryState is one step of a message's delivery lifecycle. The constant
// order is the progress rank: Failed < Sending < Sent < PartiallyDelivered <
// Delivered < Read.
type DeliveryState uint8

const (
	StateFailed DeliveryState = iota
	StateSending
	StateSent
	StatePartiallyDelivered
	StateDelivered
	StateRead
)

// String returns a short lowercase name for the state.
func (s DeliveryState) String() string {
	switch s {
	case StateFailed:
		return "failed"
	case StateSending:
		return "sending"
	case StateSent:
		return "sent"
	case StatePartiallyDelivered:
		return "partial"
	case StateDelivered:
		return "delivered"
	case StateRead:
		return "read"
	default:
		return "invalid"
	}
}

// DeliveryStatus is the lifecycle state of one message plus the metadata that
// came with it. Only the fields relevant to State are set.
type DeliveryStatus struct {
	State   DeliveryState `json:"state"`
	Reached int           `json:"reached,omitempty"` // PartiallyDelivered
	Total   int           `json:"total,omitempty"`   // PartiallyDelivered
	Peer    string        `json:"peer,omitempty"`    // Delivered to / Read by
	At      time.Time     `json:"at,omitzero"`       // Delivered / Read
	Reason  string        `json:"reason,omitempty"`  // Failed
}

// Rank orders statuses by delivery progress.
func (s DeliveryStatus) Rank() int { return int(s.State) }

// Sending marks a freshly created outbound message.
func Sending() DeliveryStatus { return DeliveryStatus{State: StateSending} }

// Sent marks a message handed to at least one transport.
func Sent() DeliveryStatus { return DeliveryStatus{State: StateSent} }

// PartiallyDelivered records fan-out or transfer progress.
func PartiallyDelivered(reached, total int) DeliveryStatus {
	return DeliveryStatus{State: StatePartiallyDelivered, Reached: reached, Total: total}
}

// Delivered records an acknowledgement from a peer.
func Delivered(to string, at time.Time) DeliveryStatus {
	return DeliveryStatus{State: StateDelivered, Peer: to, At: at}
}

// Read records a read receipt from a peer.
func Read(by string, at time.Time) DeliveryStatus {
	return DeliveryStatus{State: StateRead, Peer: by, At: at}
}

// Failed records the abandonment of a send attempt.
func Failed(reason string) DeliveryStatus {
	return DeliveryStatus{State: StateFailed, Reason: reason}
}
