package repository

import (
	"context"
	"strings"

	"studynotes/internal/domain"
)

// likePattern builds the case-insensitive substring pattern shared by the
// three search queries.
func likePattern(query string) string {
	return "%" + strings.ToLower(query) + "%"
}

// SearchByUser matches the query against subject names and descriptions.
func (r *SubjectRepository) SearchByUser(ctx context.Context, userID int64, query string) ([]*domain.Subject, error) {
	pattern := likePattern(query)
	var models []subjectModel
	tx := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern).
		Order("id").
		Find(&models)
	if tx.Error != nil {
		return nil, tx.Error
	}
	subjects := make([]*domain.Subject, 0, len(models))
	for _, m := range models {
		subjects = append(subjects, toDomainSubject(m))
	}
	return subjects, nil
}

// SearchByUser matches the query against unit names and descriptions across
// all of the user's subjects.
func (r *UnitRepository) SearchByUser(ctx context.Context, userID int64, query string) ([]*domain.Unit, error) {
	pattern := likePattern(query)
	var models []unitModel
	tx := r.db.WithContext(ctx).
		Joins("JOIN subjects ON subjects.id = units.subject_id").
		Where("subjects.user_id = ?", userID).
		Where("LOWER(units.name) LIKE ? OR LOWER(units.description) LIKE ?", pattern, pattern).
		Order("units.id").
		Find(&models)
	if tx.Error != nil {
		return nil, tx.Error
	}
	units := make([]*domain.Unit, 0, len(models))
	for _, m := range models {
		units = append(units, toDomainUnit(m))
	}
	return units, nil
}
