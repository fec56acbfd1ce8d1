package domain

import "time"

// Message is one entry in a conversation timeline. It is created on local
// send or remote receipt and mutated only to advance its delivery status or
// to be removed when an in-flight transfer is cancelled.
type Message struct {
	ID            string         `json:"id"`
	Nickname      string         `json:"nickname"`            // sender display name
	SenderSession string         `json:"sender,omitempty"`    // mesh session id when known
	Content       string         `json:"content"`
	TransferID    string         `json:"transfer,omitempty"`  // set when Content references a binary payload
	Timestamp     time.Time      `json:"timestamp"`
	Private       bool           `json:"private,omitempty"`
	Channel       string         `json:"channel,omitempty"`
	Mine          bool           `json:"mine,omitempty"`      // authored locally
	Status        DeliveryStatus `json:"status"`
}
