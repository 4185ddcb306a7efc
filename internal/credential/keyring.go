// Package credential persists the session token in the system keyring.
package credential

import (
	"errors"
	"fmt"

	"github.com/99designs/keyring"
)

const (
	serviceName = "stocktray"
	// tokenKey is the keyring item holding the session bearer token.
	tokenKey = "session-token"
)

// ErrNoToken is returned when no session token has been stored. This is
// the "not logged in" case, not a failure.
var ErrNoToken = errors.New("no session token stored")

// Store reads and writes the session credential token.
type Store struct {
	open func() (keyring.Keyring, error)
}

// NewStore returns a Store backed by the system keyring.
func NewStore() *Store {
	return &Store{open: openKeyring}
}

// newStoreWith returns a Store with a custom keyring opener. Used by tests.
func newStoreWith(open func() (keyring.Keyring, error)) *Store {
	return &Store{open: open}
}

// openKeyring returns a configured keyring instance.
func openKeyring() (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  "~/.config/stocktray/credentials",
		FilePasswordFunc:         keyring.FixedStringPrompt("stocktray-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return ring, nil
}

// Token retrieves the stored session token. Returns ErrNoToken when the
// user has not logged in.
func (s *Store) Token() (string, error) {
	ring, err := s.open()
	if err != nil {
		return "", err
	}

	item, err := ring.Get(tokenKey)
	if err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return "", ErrNoToken
		}
		return "", fmt.Errorf("getting session token: %w", err)
	}

	return string(item.Data), nil
}

// SaveToken stores the session token in the system keyring.
func (s *Store) SaveToken(token string) error {
	if token == "" {
		return fmt.Errorf("session token cannot be empty")
	}
	ring, err := s.open()
	if err != nil {
		return err
	}

	err = ring.Set(keyring.Item{
		Key:  tokenKey,
		Data: []byte(token),
	})
	if err != nil {
		return fmt.Errorf("setting session token: %w", err)
	}

	return nil
}

// DeleteToken removes the session token from the system keyring.
// Deleting an absent token is not an error.
func (s *Store) DeleteToken() error {
	ring, err := s.open()
	if err != nil {
		return err
	}

	err = ring.Remove(tokenKey)
	if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("deleting session token: %w", err)
	}

	return nil
}
