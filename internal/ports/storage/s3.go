package storage

import (
	"context"
	"time"
)

// IProofStorage S3-совместимое хранилище чеков об оплате (MinIO)
type IProofStorage interface {
	Upload(ctx context.Context, path string, contentType string, data []byte) error
	GetFile(ctx context.Context, path string) ([]byte, error)
	GetPresignedURL(ctx context.Context, path string, expires time.Duration) (string, error)
}
