// Package message owns the three conversation timelines (broadcast,
// per-channel, and per-private-identity) together with their unread
// side-index and the delivery-status state machine.
//
// Timelines are append-only except for status updates and the explicit
// removal of a cancelled transfer's message; positions reflect arrival
// order and are never reshuffled. Status updates go through a monotonic
// merge, so out-of-order acknowledgements from independent transports
// cannot regress a message's lifecycle.
//
// All state is guarded by a single lock, which also serialises identity
// merges against timeline appends for the same identity key.
package message
