package dashboard

import (
	"context"

	"studynotes/internal/domain"
)

const recentNotesLimit = 5

type counter interface {
	CountByUser(ctx context.Context, userID int64) (int64, error)
}

type subjectReader interface {
	counter
	ListByUser(ctx context.Context, userID int64) ([]*domain.Subject, error)
}

type noteReader interface {
	counter
	Recent(ctx context.Context, userID int64, limit int) ([]*domain.Note, error)
}

// Summary is the dashboard payload: aggregate counts, the newest notes and
// the subject list for the create-note card.
type Summary struct {
	TotalSubjects int64             `json:"total_subjects"`
	TotalUnits    int64             `json:"total_units"`
	TotalNotes    int64             `json:"total_notes"`
	RecentNotes   []*domain.Note    `json:"recent_notes"`
	Subjects      []*domain.Subject `json:"subjects"`
}

type Service struct {
	subjects subjectReader
	units    counter
	notes    noteReader
}

func NewService(subjects subjectReader, units counter, notes noteReader) *Service {
	return &Service{subjects: subjects, units: units, notes: notes}
}

func (s *Service) Summary(ctx context.Context, userID int64) (*Summary, error) {
	totalSubjects, err := s.subjects.CountByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	totalUnits, err := s.units.CountByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	totalNotes, err := s.notes.CountByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	recent, err := s.notes.Recent(ctx, userID, recentNotesLimit)
	if err != nil {
		return nil, err
	}
	subjects, err := s.subjects.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &Summary{
		TotalSubjects: totalSubjects,
		TotalUnits:    totalUnits,
		TotalNotes:    totalNotes,
		RecentNotes:   recent,
		Subjects:      subjects,
	}, nil
}
