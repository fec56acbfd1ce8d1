package crypto

import (
	"crypto/rand"
	"crypto/sha256"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/pbkdf2"
)

const (
	// ChannelKDFIterations is deliberately high and fixed; every member must
	// use the same count to converge on the same key.
	ChannelKDFIterations = 100_000

	ChannelKeyBytes   = chacha20poly1305.KeySize
	channelNonceBytes = chacha20poly1305.NonceSize // 96-bit
)

// DeriveChannelKey derives the channel's symmetric key from its shared
// password. The channel tag is the salt: all members deriving from the same
// password+tag converge on the same key without exchanging a salt
// out-of-band. The derivation is therefore not salt-randomized, an accepted
// weakness of the scheme.
func DeriveChannelKey(password, tag string) []byte {
	return pbkdf2.Key([]byte(password), []byte(tag), ChannelKDFIterations, ChannelKeyBytes, sha256.New)
}

// SealChannel encrypts plaintext and returns nonce‖ciphertext.
func SealChannel(key, plaintext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	out := make([]byte, channelNonceBytes, channelNonceBytes+len(plaintext)+aead.Overhead())
	if _, err := rand.Read(out); err != nil {
		return nil, err
	}
	return aead.Seal(out, out[:channelNonceBytes], plaintext, nil), nil
}

// OpenChannel decrypts nonce‖ciphertext. Any failure (wrong key, truncated
// input, tag mismatch) reports ok=false, never an error value to inspect.
func OpenChannel(key, blob []byte) (plaintext []byte, ok bool) {
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, false
	}
	if len(blob) < channelNonceBytes+aead.Overhead() {
		return nil, false
	}
	pt, err := aead.Open(nil, blob[:channelNonceBytes], blob[channelNonceBytes:], nil)
	if err != nil {
		return nil, false
	}
	return pt, true
}
