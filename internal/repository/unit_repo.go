package repository

import (
	"context"
	"errors"
	"time"

	"studynotes/internal/domain"

	"gorm.io/gorm"
)

type UnitRepository struct {
	db *gorm.DB
}

func NewUnitRepository(db *gorm.DB) *UnitRepository {
	return &UnitRepository{db: db}
}

type unitModel struct {
	ID          int64     `gorm:"column:id;primaryKey"`
	SubjectID   int64     `gorm:"column:subject_id;index"`
	Name        string    `gorm:"column:name"`
	Description *string   `gorm:"column:description"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

func (unitModel) TableName() string { return "units" }

func toDomainUnit(m unitModel) *domain.Unit {
	var desc string
	if m.Description != nil {
		desc = *m.Description
	}
	return &domain.Unit{
		ID:          m.ID,
		SubjectID:   m.SubjectID,
		Name:        m.Name,
		Description: desc,
		CreatedAt:   m.CreatedAt,
	}
}

func toUnitModel(u *domain.Unit) unitModel {
	var desc *string
	if u.Description != "" {
		v := u.Description
		desc = &v
	}
	return unitModel{
		ID:          u.ID,
		SubjectID:   u.SubjectID,
		Name:        u.Name,
		Description: desc,
		CreatedAt:   u.CreatedAt,
	}
}

// Create inserts a unit after verifying the parent subject belongs to userID.
func (r *UnitRepository) Create(ctx context.Context, userID int64, u *domain.Unit) error {
	var count int64
	tx := r.db.WithContext(ctx).Model(&subjectModel{}).
		Where("id = ? AND user_id = ?", u.SubjectID, userID).
		Count(&count)
	if tx.Error != nil {
		return tx.Error
	}
	if count == 0 {
		return ErrSubjectNotFound
	}

	m := toUnitModel(u)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return err
	}
	*u = *toDomainUnit(m)
	return nil
}

// ListBySubject returns the units of a subject. Ownership of the subject is
// the caller's responsibility (look the subject up first).
func (r *UnitRepository) ListBySubject(ctx context.Context, subjectID int64) ([]*domain.Unit, error) {
	var models []unitModel
	tx := r.db.WithContext(ctx).Where("subject_id = ?", subjectID).Order("id").Find(&models)
	if tx.Error != nil {
		return nil, tx.Error
	}
	units := make([]*domain.Unit, 0, len(models))
	for _, m := range models {
		units = append(units, toDomainUnit(m))
	}
	return units, nil
}

func (r *UnitRepository) GetByID(ctx context.Context, userID, id int64) (*domain.Unit, error) {
	var m unitModel
	tx := r.db.WithContext(ctx).
		Joins("JOIN subjects ON subjects.id = units.subject_id").
		Where("units.id = ? AND subjects.user_id = ?", id, userID).
		First(&m)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUnitNotFound
		}
		return nil, tx.Error
	}
	return toDomainUnit(m), nil
}

// CountByUser counts units across all of the user's subjects.
func (r *UnitRepository) CountByUser(ctx context.Context, userID int64) (int64, error) {
	var count int64
	tx := r.db.WithContext(ctx).Model(&unitModel{}).
		Joins("JOIN subjects ON subjects.id = units.subject_id").
		Where("subjects.user_id = ?", userID).
		Count(&count)
	return count, tx.Error
}

// DeleteCascade removes the unit and all of its notes in one transaction.
// Ownership is verified through the parent subject. Returns the removed
// notes' file paths for blob cleanup.
func (r *UnitRepository) DeleteCascade(ctx context.Context, userID, id int64) ([]string, error) {
	var paths []string

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var unit unitModel
		if err := tx.
			Joins("JOIN subjects ON subjects.id = units.subject_id").
			Where("units.id = ? AND subjects.user_id = ?", id, userID).
			First(&unit).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUnitNotFound
			}
			return err
		}

		var notes []noteModel
		if err := tx.Where("unit_id = ?", id).Find(&notes).Error; err != nil {
			return err
		}
		for _, n := range notes {
			paths = append(paths, n.FilePath)
		}

		if err := tx.Where("unit_id = ?", id).Delete(&noteModel{}).Error; err != nil {
			return err
		}
		return tx.Delete(&unitModel{}, id).Error
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}
