package domain

import (
	"encoding/base64"
	"fmt"
	"time"
)

// Identity is an opaque user reference supplied by the external transport.
type Identity string

// String returns the string form of the identity.
func (id Identity) String() string { return string(id) }

// SessionKeySize is the byte length of a per-pair secret.
const SessionKeySize = 32

// SessionKey is the symmetric secret shared by both ends of a pair.
type SessionKey [SessionKeySize]byte

// Slice returns the key as a byte slice backed by k.
func (k *SessionKey) Slice() []byte { return k[:] }

// String encodes the key as standard base64.
func (k SessionKey) String() string { return base64.StdEncoding.EncodeToString(k[:]) }

// ParseSessionKey decodes a base64 key produced by String.
func ParseSessionKey(s string) (SessionKey, error) {
	var k SessionKey
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return k, fmt.Errorf("session key: %w", err)
	}
	if len(b) != SessionKeySize {
		return k, fmt.Errorf("session key: want %d bytes, got %d", SessionKeySize, len(b))
	}
	copy(k[:], b)
	return k, nil
}

// PairEntry is one side of an active session. Both sides of a pair carry the
// same Key and point at each other through Partner.
type PairEntry struct {
	Partner  Identity
	Key      SessionKey
	PairedAt time.Time
}

// Stats is a point-in-time view of the session store.
type Stats struct {
	Queued int `json:"queued"`
	Pairs  int `json:"pairs"`
}

// CipherMode selects how the relay treats message bodies.
type CipherMode string

const (
	// ModeParity encrypts and immediately decrypts on the server with a
	// key-derived IV, forwarding the recovered plaintext.
	ModeParity CipherMode = "parity"
	// ModeSealed forwards an authenticated envelope with a random IV and
	// leaves decryption to the recipient.
	ModeSealed CipherMode = "sealed"
)

// ParseCipherMode validates s as a CipherMode.
func ParseCipherMode(s string) (CipherMode, error) {
	switch m := CipherMode(s); m {
	case ModeParity, ModeSealed:
		return m, nil
	}
	return "", fmt.Errorf("unknown cipher mode %q (want %q or %q)", s, ModeParity, ModeSealed)
}
