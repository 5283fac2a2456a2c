package interfaces

import "context"

// ObjectStore is the minimal blob storage contract consumed by the
// blob+index backend. Implementations wrap a managed object store (S3,
// minio) or an in-memory map for tests.
type ObjectStore interface {
	Upload(ctx context.Context, key string, data []byte) error
	Download(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}
