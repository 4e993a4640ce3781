package subjects

import (
	"context"
	"log"

	"studynotes/internal/domain"
)

// Service coordinates subject and unit lifecycle, including the blob cleanup
// that follows a cascade delete.
type Service struct {
	subjects SubjectRepositoryInterface
	units    UnitRepositoryInterface
	blobs    BlobRemover
}

func NewService(subjects SubjectRepositoryInterface, units UnitRepositoryInterface, blobs BlobRemover) *Service {
	return &Service{subjects: subjects, units: units, blobs: blobs}
}

func (s *Service) CreateSubject(ctx context.Context, userID int64, req CreateSubjectRequest) (*domain.Subject, error) {
	subject := &domain.Subject{
		UserID:      userID,
		Name:        req.Name,
		Description: req.Description,
	}
	if err := s.subjects.Create(ctx, subject); err != nil {
		return nil, err
	}
	return subject, nil
}

func (s *Service) ListSubjects(ctx context.Context, userID int64) ([]*domain.Subject, error) {
	return s.subjects.ListByUser(ctx, userID)
}

// GetSubjectDetail returns the subject with its units. Ownership is checked
// on the subject lookup; the unit listing then trusts the verified id.
func (s *Service) GetSubjectDetail(ctx context.Context, userID, subjectID int64) (*domain.Subject, []*domain.Unit, error) {
	subject, err := s.subjects.GetByID(ctx, userID, subjectID)
	if err != nil {
		return nil, nil, err
	}
	units, err := s.units.ListBySubject(ctx, subject.ID)
	if err != nil {
		return nil, nil, err
	}
	return subject, units, nil
}

// DeleteSubject cascades the subject, its units and notes in one transaction
// and then clears the removed notes' files. Blob cleanup after a committed
// cascade is best effort.
func (s *Service) DeleteSubject(ctx context.Context, userID, subjectID int64) error {
	paths, err := s.subjects.DeleteCascade(ctx, userID, subjectID)
	if err != nil {
		return err
	}
	s.removeBlobs(paths)
	return nil
}

func (s *Service) CreateUnit(ctx context.Context, userID, subjectID int64, req CreateUnitRequest) (*domain.Unit, error) {
	unit := &domain.Unit{
		SubjectID:   subjectID,
		Name:        req.Name,
		Description: req.Description,
	}
	if err := s.units.Create(ctx, userID, unit); err != nil {
		return nil, err
	}
	return unit, nil
}

// ListUnits returns the units of an owned subject as form options.
func (s *Service) ListUnits(ctx context.Context, userID, subjectID int64) ([]UnitOption, error) {
	subject, err := s.subjects.GetByID(ctx, userID, subjectID)
	if err != nil {
		return nil, err
	}
	units, err := s.units.ListBySubject(ctx, subject.ID)
	if err != nil {
		return nil, err
	}
	options := make([]UnitOption, 0, len(units))
	for _, u := range units {
		options = append(options, UnitOption{ID: u.ID, Name: u.Name})
	}
	return options, nil
}

func (s *Service) DeleteUnit(ctx context.Context, userID, unitID int64) error {
	paths, err := s.units.DeleteCascade(ctx, userID, unitID)
	if err != nil {
		return err
	}
	s.removeBlobs(paths)
	return nil
}

func (s *Service) removeBlobs(paths []string) {
	for _, p := range paths {
		if err := s.blobs.Remove(p); err != nil {
			log.Printf("blob_cleanup_failed path=%s error=%q", p, err)
		}
	}
}
