package store

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/scrypt"

	"pairchat/internal/crypto"
)

// keyFileVersion is the newest on-disk format this package can open.
const keyFileVersion = 2

// ErrWrongPassphrase is returned when the key file cannot be opened with the
// supplied passphrase, or its contents were altered.
var ErrWrongPassphrase = errors.New("wrong passphrase or corrupted key file")

// kdfParams are the scrypt cost parameters recorded alongside each file.
type kdfParams struct {
	N int `json:"n"`
	R int `json:"r"`
	P int `json:"p"`
}

var defaultKDF = kdfParams{N: 1 << 15, R: 8, P: 1}

// sealedFile is the JSON layout of an encrypted key file.
type sealedFile struct {
	Version int       `json:"v"`
	KDF     kdfParams `json:"kdf"`
	Salt    []byte    `json:"salt"`
	Nonce   []byte    `json:"nonce"`
	Data    []byte    `json:"data"`
}

// sealFile encrypts raw under a key stretched from passphrase with XChaCha20-Poly1305.
// The header fields are bound as associated data.
func sealFile(passphrase string, raw []byte, kdf kdfParams) ([]byte, error) {
	f := sealedFile{
		Version: keyFileVersion,
		KDF:     kdf,
		Salt:    make([]byte, 16),
		Nonce:   make([]byte, chacha20poly1305.NonceSizeX),
	}
	if _, err := rand.Read(f.Salt); err != nil {
		return nil, err
	}
	if _, err := rand.Read(f.Nonce); err != nil {
		return nil, err
	}
	aead, err := fileAEAD(passphrase, f.Salt, kdf)
	if err != nil {
		return nil, err
	}
	f.Data = aead.Seal(nil, f.Nonce, raw, f.header())
	return json.Marshal(f)
}

// openFile reverses sealFile.
func openFile(passphrase string, b []byte) ([]byte, error) {
	var f sealedFile
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse key file: %w", err)
	}
	if f.Version != keyFileVersion {
		return nil, fmt.Errorf("unsupported key file version %d", f.Version)
	}
	if len(f.Nonce) != chacha20poly1305.NonceSizeX {
		return nil, ErrWrongPassphrase
	}
	aead, err := fileAEAD(passphrase, f.Salt, f.KDF)
	if err != nil {
		return nil, err
	}
	raw, err := aead.Open(nil, f.Nonce, f.Data, f.header())
	if err != nil {
		return nil, ErrWrongPassphrase
	}
	return raw, nil
}

func fileAEAD(passphrase string, salt []byte, kdf kdfParams) (cipher.AEAD, error) {
	key, err := scrypt.Key([]byte(passphrase), salt, kdf.N, kdf.R, kdf.P, chacha20poly1305.KeySize)
	if err != nil {
		return nil, fmt.Errorf("derive file key: %w", err)
	}
	defer crypto.Wipe(key)
	return chacha20poly1305.NewX(key)
}

func (f sealedFile) header() []byte {
	return fmt.Appendf(nil, "pairchat-keys/v%d/%d/%d/%d/%x", f.Version, f.KDF.N, f.KDF.R, f.KDF.P, f.Salt)
}
