// Package identity reconciles the up-to-four identifiers a conversation
// partner may be known under (ephemeral mesh session id, stable public-key
// fingerprint, relay alias, overlay peer id) into the single canonical
// identity that keys their unified conversation.
//
// Resolution prefers a live session, then the stable fingerprint behind it,
// then the most specific identifier still known. When the canonical identity
// changes (a partner reappears on another transport), the engine moves the
// old conversation history onto the new key; messages are moved, never
// copied, so the total count is invariant under any merge. Every lookup
// failure degrades to "no merge performed".
package identity
