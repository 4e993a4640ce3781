package search

import (
	"context"
	"strings"

	"studynotes/internal/domain"
)

type noteSearcher interface {
	SearchByUser(ctx context.Context, userID int64, query string) ([]*domain.NoteWithContext, error)
}

type subjectSearcher interface {
	SearchByUser(ctx context.Context, userID int64, query string) ([]*domain.Subject, error)
}

type unitSearcher interface {
	SearchByUser(ctx context.Context, userID int64, query string) ([]*domain.Unit, error)
}

// Results groups the three per-entity match lists. The slices are always
// non-nil.
type Results struct {
	Notes    []*domain.NoteWithContext `json:"notes"`
	Subjects []*domain.Subject         `json:"subjects"`
	Units    []*domain.Unit            `json:"units"`
}

type Service struct {
	notes    noteSearcher
	subjects subjectSearcher
	units    unitSearcher
}

func NewService(notes noteSearcher, subjects subjectSearcher, units unitSearcher) *Service {
	return &Service{notes: notes, subjects: subjects, units: units}
}

// Search runs the case-insensitive substring match across the user's notes,
// subjects and units. An empty query returns three empty lists.
func (s *Service) Search(ctx context.Context, userID int64, query string) (*Results, error) {
	results := &Results{
		Notes:    []*domain.NoteWithContext{},
		Subjects: []*domain.Subject{},
		Units:    []*domain.Unit{},
	}

	if strings.TrimSpace(query) == "" {
		return results, nil
	}

	notes, err := s.notes.SearchByUser(ctx, userID, query)
	if err != nil {
		return nil, err
	}
	subjects, err := s.subjects.SearchByUser(ctx, userID, query)
	if err != nil {
		return nil, err
	}
	units, err := s.units.SearchByUser(ctx, userID, query)
	if err != nil {
		return nil, err
	}

	results.Notes = notes
	results.Subjects = subjects
	results.Units = units
	return results, nil
}
