package domain

// Channel is one named group conversation. A channel record is created on
// first join. Key material derived from its password lives only in memory
// and is never part of this persisted record.
type Channel struct {
	Tag       string        `json:"tag"`
	Creator   Fingerprint   `json:"creator,omitempty"`
	Members   []Fingerprint `json:"members,omitempty"`
	Protected bool          `json:"protected,omitempty"` // requires a password-derived key
	Joined    bool          `json:"joined,omitempty"`
}

// ChannelMembership is the persisted channel state, keyed by tag.
type ChannelMembership map[string]Channel

// TransferLink ties an in-flight binary transfer to the chat message
// representing it.
type TransferLink struct {
	TransferID string `json:"transfer"`
	MessageID  string `json:"message"`
}
