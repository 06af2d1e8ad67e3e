// Package keyring keeps the bridge token in the system keychain.
package keyring

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const serviceName = "mixgraph"

// Secret names a value stored in the keychain.
type Secret string

// BridgeToken authenticates `mixgraph bridge` clients.
const BridgeToken Secret = "bridge-token"

// DisplayName returns a human-readable name for the secret.
func (s Secret) DisplayName() string {
	if s == BridgeToken {
		return "bridge token"
	}

	return string(s)
}

// Get retrieves a secret from the system keychain.
func Get(s Secret) (string, error) {
	value, err := keyring.Get(serviceName, string(s))
	if err != nil {
		return "", fmt.Errorf("failed to get %s from keychain: %w", s.DisplayName(), err)
	}

	return value, nil
}

// Set stores a secret in the system keychain.
func Set(s Secret, value string) error {
	if value == "" {
		return fmt.Errorf("refusing to store an empty %s", s.DisplayName())
	}

	if err := keyring.Set(serviceName, string(s), value); err != nil {
		return fmt.Errorf("failed to set %s in keychain: %w", s.DisplayName(), err)
	}

	return nil
}

// Delete removes a secret. Deleting a missing secret is not an error.
func Delete(s Secret) error {
	if err := keyring.Delete(serviceName, string(s)); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to delete %s from keychain: %w", s.DisplayName(), err)
	}

	return nil
}

// IsSet checks if a secret exists in the keychain.
func IsSet(s Secret) bool {
	_, err := keyring.Get(serviceName, string(s))

	return err == nil
}

// Resolve returns explicit when set, otherwise the keychain value. A missing
// keychain entry resolves to "".
func Resolve(s Secret, explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}

	value, err := keyring.Get(serviceName, string(s))
	if errors.Is(err, keyring.ErrNotFound) {
		return "", nil
	}

	if err != nil {
		return "", fmt.Errorf("failed to get %s from keychain: %w", s.DisplayName(), err)
	}

	return value, nil
}
