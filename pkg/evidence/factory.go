package evidence

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Backend selects the archive implementation.
type Backend string

const (
	BackendFile Backend = "file"
	BackendS3   Backend = "s3"
	BackendGCS  Backend = "gcs"
)

// NewArchiveFromEnv builds an archive from environment variables.
//
//   - CTT_EVIDENCE_BACKEND: "file" (default), "s3", or "gcs"
//   - CTT_DATA_DIR: base directory for the file backend (default "data")
//
// For S3:
//   - CTT_S3_BUCKET (required)
//   - CTT_S3_REGION or AWS_REGION (default "us-east-1")
//   - CTT_S3_ENDPOINT (optional, MinIO/LocalStack)
//   - CTT_S3_PREFIX (optional)
//
// For GCS (requires the gcp build tag):
//   - CTT_GCS_BUCKET (required)
//   - CTT_GCS_PREFIX (optional)
func NewArchiveFromEnv(ctx context.Context) (Archive, error) {
	backend := Backend(os.Getenv("CTT_EVIDENCE_BACKEND"))
	if backend == "" {
		backend = BackendFile
	}

	switch backend {
	case BackendFile:
		return newFileArchiveFromEnv()
	case BackendS3:
		return newS3ArchiveFromEnv(ctx)
	case BackendGCS:
		return newGCSArchiveFromEnv(ctx)
	default:
		return nil, fmt.Errorf("unsupported evidence backend: %s", backend)
	}
}

func newFileArchiveFromEnv() (Archive, error) {
	dataDir := os.Getenv("CTT_DATA_DIR")
	if dataDir == "" {
		dataDir = "data"
	}
	return NewFileArchive(filepath.Join(dataDir, "evidence"))
}

func newS3ArchiveFromEnv(ctx context.Context) (Archive, error) {
	bucket := os.Getenv("CTT_S3_BUCKET")
	if bucket == "" {
		return nil, fmt.Errorf("CTT_S3_BUCKET is required for the s3 backend")
	}

	region := os.Getenv("CTT_S3_REGION")
	if region == "" {
		region = os.Getenv("AWS_REGION")
	}
	if region == "" {
		region = "us-east-1"
	}

	return NewS3Archive(ctx, S3Config{
		Bucket:   bucket,
		Region:   region,
		Endpoint: os.Getenv("CTT_S3_ENDPOINT"),
		Prefix:   os.Getenv("CTT_S3_PREFIX"),
	})
}
