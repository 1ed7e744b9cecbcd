//go:build !gcp

package evidence

import (
	"context"
	"fmt"
)

func newGCSArchiveFromEnv(ctx context.Context) (Archive, error) {
	return nil, fmt.Errorf("gcs backend is not enabled in this build (use -tags gcp)")
}
