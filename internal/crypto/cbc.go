package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"
	"unicode/utf8"

	"pairchat/internal/domain"
)

// BlockSize is the AES block size in bytes; it is also the IV length.
const BlockSize = aes.BlockSize

// DeriveIV returns the key's first 16 bytes, the fixed IV used by Encrypt and
// Decrypt. The same IV is reused for every message under a key.
func DeriveIV(key *domain.SessionKey) []byte {
	iv := make([]byte, BlockSize)
	copy(iv, key[:BlockSize])
	return iv
}

// Encrypt pads plaintext with PKCS#7 and encrypts it under AES-256-CBC with
// the key-derived IV.
func Encrypt(key domain.SessionKey, plaintext []byte) ([]byte, error) {
	return encryptCBC(key[:], DeriveIV(&key), plaintext)
}

// Decrypt reverses Encrypt. Malformed ciphertext or bad padding yields
// domain.ErrDecode.
func Decrypt(key domain.SessionKey, ciphertext []byte) ([]byte, error) {
	return decryptCBC(key[:], DeriveIV(&key), ciphertext)
}

// DecodeText decrypts ciphertext and checks the result is valid UTF-8.
func DecodeText(key domain.SessionKey, ciphertext []byte) (string, error) {
	plain, err := Decrypt(key, ciphertext)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(plain) {
		return "", domain.ErrInvalidUTF8
	}
	return string(plain), nil
}

// RoundTrip encrypts text and immediately decodes it again, returning the
// recovered text. On failure the returned text is the user-visible
// placeholder and err says what went wrong.
func RoundTrip(key domain.SessionKey, text string) (string, error) {
	ct, err := Encrypt(key, []byte(text))
	if err != nil {
		return domain.PlaceholderDecode, err
	}
	out, err := DecodeText(key, ct)
	if err != nil {
		return Placeholder(err), err
	}
	return out, nil
}

func encryptCBC(key, iv, plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("aes: %w", err)
	}
	buf := pad(plaintext, BlockSize)
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(buf, buf)
	return buf, nil
}

func decryptCBC(key, iv, ciphertext []byte) ([]byte, error) {
	if len(ciphertext) == 0 || len(ciphertext)%BlockSize != 0 {
		return nil, fmt.Errorf("%w: ciphertext length %d", domain.ErrDecode, len(ciphertext))
	}
	if len(iv) != BlockSize {
		return nil, fmt.Errorf("%w: iv length %d", domain.ErrDecode, len(iv))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("aes: %w", err)
	}
	buf := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(buf, ciphertext)
	return unpad(buf, BlockSize)
}

// pad returns a copy of b extended with PKCS#7 padding. A full block is added
// when b is already aligned.
func pad(b []byte, size int) []byte {
	n := size - len(b)%size
	out := make([]byte, len(b)+n)
	copy(out, b)
	for i := len(b); i < len(out); i++ {
		out[i] = byte(n)
	}
	return out
}

func unpad(b []byte, size int) ([]byte, error) {
	if len(b) == 0 || len(b)%size != 0 {
		return nil, fmt.Errorf("%w: padded length %d", domain.ErrDecode, len(b))
	}
	n := int(b[len(b)-1])
	if n == 0 || n > size {
		return nil, fmt.Errorf("%w: bad padding", domain.ErrDecode)
	}
	for _, c := range b[len(b)-n:] {
		if int(c) != n {
			return nil, fmt.Errorf("%w: bad padding", domain.ErrDecode)
		}
	}
	return b[:len(b)-n], nil
}
