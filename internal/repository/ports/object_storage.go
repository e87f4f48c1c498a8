package ports

import (
	"context"
	"io"
)

// ObjectStorage uploads media to the backend's S3-compatible store and
// returns the public URL of the stored object.
type ObjectStorage interface {
	Upload(ctx context.Context, bucket, objectName, contentType string, reader io.Reader, size int64) (string, error)
}
