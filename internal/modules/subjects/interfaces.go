package subjects

import (
	"context"

	"studynotes/internal/domain"
)

type SubjectRepositoryInterface interface {
	Create(ctx context.Context, s *domain.Subject) error
	ListByUser(ctx context.Context, userID int64) ([]*domain.Subject, error)
	GetByID(ctx context.Context, userID, id int64) (*domain.Subject, error)
	DeleteCascade(ctx context.Context, userID, id int64) ([]string, error)
}

type UnitRepositoryInterface interface {
	Create(ctx context.Context, userID int64, u *domain.Unit) error
	ListBySubject(ctx context.Context, subjectID int64) ([]*domain.Unit, error)
	DeleteCascade(ctx context.Context, userID, id int64) ([]string, error)
}

// BlobRemover clears stored files once a cascade has committed.
type BlobRemover interface {
	Remove(path string) error
}
