//go:build gcp

package evidence

import (
	"context"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
)

// GCSArchive stores bundles in a Google Cloud Storage bucket, keyed by
// digest. Credentials come from Application Default Credentials.
type GCSArchive struct {
	client *storage.Client
	bucket string
	prefix string
}

// GCSConfig holds GCSArchive settings.
type GCSConfig struct {
	Bucket string
	Prefix string
}

// NewGCSArchive builds an archive over the configured bucket.
func NewGCSArchive(ctx context.Context, cfg GCSConfig) (*GCSArchive, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create GCS client: %w", err)
	}
	return &GCSArchive{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix}, nil
}

func (a *GCSArchive) object(rawHash string) *storage.ObjectHandle {
	return a.client.Bucket(a.bucket).Object(a.prefix + rawHash + ".json")
}

// Put implements Archive. Uploads are skipped when the object exists.
func (a *GCSArchive) Put(ctx context.Context, data []byte) (string, error) {
	digest := Digest(data)
	obj := a.object(digest[len(DigestPrefix):])

	if _, err := obj.Attrs(ctx); err == nil {
		return digest, nil
	}

	w := obj.NewWriter(ctx)
	w.ContentType = "application/json"
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("gcs write: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("gcs close: %w", err)
	}
	return digest, nil
}

// Get implements Archive.
func (a *GCSArchive) Get(ctx context.Context, digest string) ([]byte, error) {
	raw, err := parseDigest(digest)
	if err != nil {
		return nil, err
	}
	r, err := a.object(raw).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("gcs get %s: %w", digest, err)
	}
	defer func() { _ = r.Close() }()
	return io.ReadAll(r)
}

// Exists implements Archive.
func (a *GCSArchive) Exists(ctx context.Context, digest string) (bool, error) {
	raw, err := parseDigest(digest)
	if err != nil {
		return false, err
	}
	_, err = a.object(raw).Attrs(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("gcs attrs: %w", err)
	}
	return true, nil
}

// Delete implements Archive.
func (a *GCSArchive) Delete(ctx context.Context, digest string) error {
	raw, err := parseDigest(digest)
	if err != nil {
		return err
	}
	err = a.object(raw).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("gcs delete %s: %w", digest, err)
	}
	return nil
}

// Close releases the underlying client.
func (a *GCSArchive) Close() error {
	return a.client.Close()
}
