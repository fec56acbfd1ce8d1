package store

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/scrypt"
)

// envelopeVersion is the current on-disk format of the encrypted envelope.
const envelopeVersion = 1

// errWrongPassphrase covers both a bad passphrase and a tampered ciphertext;
// the AEAD cannot tell the two apart.
var errWrongPassphrase = errors.New("wrong passphrase or corrupted identity")

// kdfParams are the scrypt cost parameters, persisted beside the ciphertext
// so envelopes written under older defaults stay readable.
type kdfParams struct {
	N int `json:"n"`
	R int `json:"r"`
	P int `json:"p"`
}

// defaultKDFParams is the cost applied when writing a new envelope.
var defaultKDFParams = kdfParams{N: 1 << 15, R: 8, P: 1}

func (p kdfParams) key(passphrase string, salt []byte) ([]byte, error) {
	return scrypt.Key([]byte(passphrase), salt, p.N, p.R, p.P, chacha20poly1305.KeySize)
}

// envelope is the JSON wrapper around a sealed payload.
type envelope struct {
	V      int       `json:"v"`
	Salt   []byte    `json:"salt"`
	KDF    kdfParams `json:"kdf"`
	Cipher []byte    `json:"cipher"`
}

// sealEnvelope encrypts raw under a key derived from passphrase. The nonce is
// all zeroes: the key is single-use, bound to this envelope's fresh salt, and
// the salt doubles as the additional authenticated data.
func sealEnvelope(passphrase string, raw []byte) ([]byte, error) {
	params := defaultKDFParams

	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	key, err := params.key(passphrase, salt)
	if err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, aead.NonceSize())
	ct := aead.Seal(nil, nonce, raw, salt)

	return json.Marshal(envelope{
		V:      envelopeVersion,
		Salt:   salt,
		KDF:    params,
		Cipher: ct,
	})
}

// openEnvelope reverses sealEnvelope, deriving the key from the parameters
// recorded in the envelope itself.
func openEnvelope(passphrase string, data []byte) ([]byte, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	if env.V > envelopeVersion {
		return nil, fmt.Errorf("unsupported envelope version %d", env.V)
	}

	key, err := env.KDF.key(passphrase, env.Salt)
	if err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, aead.NonceSize())
	pt, err := aead.Open(nil, nonce, env.Cipher, env.Salt)
	if err != nil {
		return nil, errWrongPassphrase
	}
	return pt, nil
}
