package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"pairchat/internal/crypto"
	"pairchat/internal/domain"
)

const sessionKeysFilename = "session_keys.enc"

// KeyFileStore keeps the session keys a client learns from pairing notices,
// sealed under a passphrase, so sealed messages can be opened by a later
// invocation.
type KeyFileStore struct {
	dir        string
	passphrase string
	mu         sync.Mutex
}

// NewKeyFileStore returns a KeyFileStore rooted at dir.
func NewKeyFileStore(dir, passphrase string) *KeyFileStore {
	return &KeyFileStore{dir: dir, passphrase: passphrase}
}

// SaveKey records key as the current session key for id.
func (s *KeyFileStore) SaveKey(id domain.Identity, key domain.SessionKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys, err := s.load()
	if err != nil {
		return err
	}
	keys[id] = key.String()
	return s.save(keys)
}

// LoadKey returns the stored session key for id.
func (s *KeyFileStore) LoadKey(id domain.Identity) (domain.SessionKey, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys, err := s.load()
	if err != nil {
		return domain.SessionKey{}, false, err
	}
	enc, ok := keys[id]
	if !ok {
		return domain.SessionKey{}, false, nil
	}
	key, err := domain.ParseSessionKey(enc)
	if err != nil {
		return domain.SessionKey{}, false, err
	}
	return key, true, nil
}

// DeleteKey forgets id's session key. Deleting an absent key is a no-op.
func (s *KeyFileStore) DeleteKey(id domain.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := keys[id]; !ok {
		return nil
	}
	delete(keys, id)
	return s.save(keys)
}

func (s *KeyFileStore) path() string { return filepath.Join(s.dir, sessionKeysFilename) }

func (s *KeyFileStore) load() (map[domain.Identity]string, error) {
	keys := map[domain.Identity]string{}
	b, err := readFile(s.path())
	if err != nil || b == nil {
		return keys, err
	}
	raw, err := openFile(s.passphrase, b)
	if err != nil {
		return nil, err
	}
	return keys, json.Unmarshal(raw, &keys)
}

func (s *KeyFileStore) save(keys map[domain.Identity]string) error {
	raw, err := json.Marshal(keys)
	if err != nil {
		return err
	}
	blob, err := sealFile(s.passphrase, raw, defaultKDF)
	crypto.Wipe(raw)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return err
	}
	return writeFile(s.path(), blob, 0o600)
}

// Compile-time assertion that KeyFileStore implements domain.KeyStore.
var _ domain.KeyStore = (*KeyFileStore)(nil)
