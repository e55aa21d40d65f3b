package qna

import (
	"context"
	"io"

	"github.com/google/uuid"
)

// ProfileResolver resolves a user id to its display profile. A (zero, false,
// nil) result means the user is unknown; callers omit the profile rather
// than failing the operation.
type ProfileResolver interface {
	Resolve(ctx context.Context, userID int64) (Profile, bool, error)
}

// ObjectStorage abstracts blob storage for question attachments.
type ObjectStorage interface {
	Put(ctx context.Context, key string, data []byte, mimeType string) (StoredObject, error)
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// StoredObject captures persisted blob metadata.
type StoredObject struct {
	Key      string
	Size     int64
	MimeType string
	ETag     string
}

// Embedder produces embeddings for free form text.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// RelatedIndex is the similarity index behind the related-questions lookup.
type RelatedIndex interface {
	Index(ctx context.Context, questionID uuid.UUID, embedding []float32) error
	Nearest(ctx context.Context, embedding []float32, limit int) ([]uuid.UUID, error)
}
