package receipt

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

const keySize = 32

// kdfSalt domain-separates receipt keys from any other use of the master
// secret.
var kdfSalt = []byte("ctt-receipt-kdf-v1")

// Keyring derives per-contract signing keys from a master secret using
// HKDF-SHA256. The same master secret and contract id always yield the same
// key, so any holder of the master secret can verify receipt tokens without
// key exchange.
type Keyring struct {
	master []byte
}

// NewKeyring wraps a master secret. The secret must carry at least 128 bits
// of entropy.
func NewKeyring(master []byte) (*Keyring, error) {
	if len(master) < 16 {
		return nil, errors.New("master secret must be at least 16 bytes")
	}
	k := &Keyring{master: make([]byte, len(master))}
	copy(k.master, master)
	return k, nil
}

// KeyFor derives the 32-byte signing key for contractID.
func (k *Keyring) KeyFor(contractID string) ([]byte, error) {
	if contractID == "" {
		return nil, errors.New("contract id must not be empty")
	}

	r := hkdf.New(sha256.New, k.master, kdfSalt, []byte(contractID))
	key := make([]byte, keySize)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("HKDF derivation failed: %w", err)
	}
	return key, nil
}
