package notes

import (
	"context"
	"io"

	"studynotes/internal/domain"
)

type NoteRepositoryInterface interface {
	Create(ctx context.Context, userID int64, n *domain.Note) error
	GetByID(ctx context.Context, userID, id int64) (*domain.Note, error)
	GetWithContext(ctx context.Context, userID, id int64) (*domain.NoteWithContext, error)
	ListByUser(ctx context.Context, userID int64) ([]*domain.NoteWithContext, error)
	Delete(ctx context.Context, userID, id int64) error
}

// BlobStore is the flat-namespace file store behind note uploads.
type BlobStore interface {
	Save(desiredName string, content io.Reader) (storedName, absPath string, err error)
	Retrieve(path string) ([]byte, error)
	Remove(path string) error
}
