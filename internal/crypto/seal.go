package crypto

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"unicode/utf8"

	"golang.org/x/crypto/hkdf"

	"pairchat/internal/domain"
)

const (
	tagSize  = sha256.Size
	sealInfo = "pairchat sealed message v1"
)

// Seal encrypts text for the partner holding key. Each call draws a fresh
// random IV. The result is base64(iv || ciphertext || hmac) where the MAC
// covers iv and ciphertext.
func Seal(key domain.SessionKey, text string) (string, error) {
	encKey, macKey, err := subkeys(key)
	if err != nil {
		return "", err
	}
	defer Wipe(encKey)
	defer Wipe(macKey)

	iv := make([]byte, BlockSize)
	if _, err := rand.Read(iv); err != nil {
		return "", fmt.Errorf("seal iv: %w", err)
	}
	ct, err := encryptCBC(encKey, iv, []byte(text))
	if err != nil {
		return "", err
	}

	out := make([]byte, 0, len(iv)+len(ct)+tagSize)
	out = append(out, iv...)
	out = append(out, ct...)
	out = append(out, mac(macKey, out)...)
	return B64(out), nil
}

// Open verifies and decrypts an envelope produced by Seal.
func Open(key domain.SessionKey, envelope string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(envelope)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrDecode, err)
	}
	if len(raw) < BlockSize+BlockSize+tagSize {
		return "", fmt.Errorf("%w: envelope too short", domain.ErrDecode)
	}

	encKey, macKey, err := subkeys(key)
	if err != nil {
		return "", err
	}
	defer Wipe(encKey)
	defer Wipe(macKey)

	body, tag := raw[:len(raw)-tagSize], raw[len(raw)-tagSize:]
	if !hmac.Equal(tag, mac(macKey, body)) {
		return "", fmt.Errorf("%w: authentication failed", domain.ErrDecode)
	}
	plain, err := decryptCBC(encKey, body[:BlockSize], body[BlockSize:])
	if err != nil {
		return "", err
	}
	if !utf8.Valid(plain) {
		return "", domain.ErrInvalidUTF8
	}
	return string(plain), nil
}

func subkeys(key domain.SessionKey) (encKey, macKey []byte, err error) {
	okm := make([]byte, 2*domain.SessionKeySize)
	r := hkdf.New(sha256.New, key[:], nil, []byte(sealInfo))
	if _, err := io.ReadFull(r, okm); err != nil {
		return nil, nil, fmt.Errorf("hkdf: %w", err)
	}
	return okm[:domain.SessionKeySize], okm[domain.SessionKeySize:], nil
}

func mac(key, data []byte) []byte {
	h := hmac.New(sha256.New, key)
	h.Write(data)
	return h.Sum(nil)
}
