// Package evidence archives verification evidence bundles in
// content-addressed storage and verifies them offline. A bundle is the
// canonical-JSON record of one run (outcome, phases, violation, receipt);
// its digest is the handle auditors exchange. The verifier trusts only
// SHA-256 and the bundle format, never the service that produced it.
package evidence

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// DigestPrefix tags every archive key with its hash algorithm.
const DigestPrefix = "sha256:"

// Archive is the content-addressed storage boundary for evidence bundles.
type Archive interface {
	// Put persists data and returns its digest ("sha256:<hex>").
	Put(ctx context.Context, data []byte) (string, error)
	// Get retrieves data by digest.
	Get(ctx context.Context, digest string) ([]byte, error)
	// Exists reports whether a bundle with this digest is archived.
	Exists(ctx context.Context, digest string) (bool, error)
	// Delete removes a bundle. Deleting an absent digest is not an error.
	Delete(ctx context.Context, digest string) error
}

// Digest computes the archive key for data.
func Digest(data []byte) string {
	sum := sha256.Sum256(data)
	return DigestPrefix + hex.EncodeToString(sum[:])
}

// parseDigest validates the "sha256:<hex>" form and returns the hex part.
func parseDigest(digest string) (string, error) {
	if !strings.HasPrefix(digest, DigestPrefix) {
		return "", fmt.Errorf("invalid digest format: %s", digest)
	}
	raw := digest[len(DigestPrefix):]
	if _, err := hex.DecodeString(raw); err != nil {
		return "", fmt.Errorf("invalid digest hex: %w", err)
	}
	if len(raw) != sha256.Size*2 {
		return "", fmt.Errorf("digest length %d, want %d", len(raw), sha256.Size*2)
	}
	return raw, nil
}

// FileArchive is a filesystem-backed Archive.
type FileArchive struct {
	baseDir string
	mu      sync.RWMutex
}

// NewFileArchive creates the archive directory if needed.
func NewFileArchive(baseDir string) (*FileArchive, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure evidence dir: %w", err)
	}
	return &FileArchive{baseDir: baseDir}, nil
}

// Put implements Archive. Writes are atomic (temp file + rename) and
// idempotent: re-archiving identical bytes is a no-op.
func (a *FileArchive) Put(_ context.Context, data []byte) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	digest := Digest(data)
	raw := digest[len(DigestPrefix):]
	path := filepath.Join(a.baseDir, raw+".json")

	if _, err := os.Stat(path); err == nil {
		return digest, nil
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("write bundle: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return "", fmt.Errorf("commit bundle: %w", err)
	}
	return digest, nil
}

// Get implements Archive.
func (a *FileArchive) Get(_ context.Context, digest string) ([]byte, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	raw, err := parseDigest(digest)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(filepath.Join(a.baseDir, raw+".json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("bundle not found: %s", digest)
		}
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return io.ReadAll(f)
}

// Exists implements Archive.
func (a *FileArchive) Exists(_ context.Context, digest string) (bool, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	raw, err := parseDigest(digest)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(filepath.Join(a.baseDir, raw+".json"))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// Delete implements Archive.
func (a *FileArchive) Delete(_ context.Context, digest string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	raw, err := parseDigest(digest)
	if err != nil {
		return err
	}
	err = os.Remove(filepath.Join(a.baseDir, raw+".json"))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete bundle: %w", err)
	}
	return nil
}
