//go:build gcp

package evidence

import (
	"context"
	"fmt"
	"os"
)

func newGCSArchiveFromEnv(ctx context.Context) (Archive, error) {
	bucket := os.Getenv("CTT_GCS_BUCKET")
	if bucket == "" {
		return nil, fmt.Errorf("CTT_GCS_BUCKET is required for the gcs backend")
	}
	return NewGCSArchive(ctx, GCSConfig{
		Bucket: bucket,
		Prefix: os.Getenv("CTT_GCS_PREFIX"),
	})
}
