package repository

import (
	"context"
	"errors"
	"time"

	"studynotes/internal/domain"

	"gorm.io/gorm"
)

type SubjectRepository struct {
	db *gorm.DB
}

func NewSubjectRepository(db *gorm.DB) *SubjectRepository {
	return &SubjectRepository{db: db}
}

type subjectModel struct {
	ID          int64     `gorm:"column:id;primaryKey"`
	UserID      int64     `gorm:"column:user_id;index"`
	Name        string    `gorm:"column:name"`
	Description *string   `gorm:"column:description"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

func (subjectModel) TableName() string { return "subjects" }

func toDomainSubject(m subjectModel) *domain.Subject {
	var desc string
	if m.Description != nil {
		desc = *m.Description
	}
	return &domain.Subject{
		ID:          m.ID,
		UserID:      m.UserID,
		Name:        m.Name,
		Description: desc,
		CreatedAt:   m.CreatedAt,
	}
}

func toSubjectModel(s *domain.Subject) subjectModel {
	var desc *string
	if s.Description != "" {
		v := s.Description
		desc = &v
	}
	return subjectModel{
		ID:          s.ID,
		UserID:      s.UserID,
		Name:        s.Name,
		Description: desc,
		CreatedAt:   s.CreatedAt,
	}
}

func (r *SubjectRepository) Create(ctx context.Context, s *domain.Subject) error {
	m := toSubjectModel(s)
	tx := r.db.WithContext(ctx).Create(&m)
	if tx.Error != nil {
		return tx.Error
	}
	*s = *toDomainSubject(m)
	return nil
}

func (r *SubjectRepository) ListByUser(ctx context.Context, userID int64) ([]*domain.Subject, error) {
	var models []subjectModel
	tx := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id").Find(&models)
	if tx.Error != nil {
		return nil, tx.Error
	}
	subjects := make([]*domain.Subject, 0, len(models))
	for _, m := range models {
		subjects = append(subjects, toDomainSubject(m))
	}
	return subjects, nil
}

func (r *SubjectRepository) GetByID(ctx context.Context, userID, id int64) (*domain.Subject, error) {
	var m subjectModel
	tx := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&m)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return nil, ErrSubjectNotFound
		}
		return nil, tx.Error
	}
	return toDomainSubject(m), nil
}

func (r *SubjectRepository) CountByUser(ctx context.Context, userID int64) (int64, error) {
	var count int64
	tx := r.db.WithContext(ctx).Model(&subjectModel{}).Where("user_id = ?", userID).Count(&count)
	return count, tx.Error
}

// DeleteCascade removes the subject with all of its units and notes in one
// transaction and returns the file paths of the removed notes so the caller
// can clear the blob store after the commit.
func (r *SubjectRepository) DeleteCascade(ctx context.Context, userID, id int64) ([]string, error) {
	var paths []string

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var subject subjectModel
		if err := tx.Where("id = ? AND user_id = ?", id, userID).First(&subject).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSubjectNotFound
			}
			return err
		}

		var notes []noteModel
		if err := tx.Where("subject_id = ?", id).Find(&notes).Error; err != nil {
			return err
		}
		for _, n := range notes {
			paths = append(paths, n.FilePath)
		}

		if err := tx.Where("subject_id = ?", id).Delete(&noteModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("subject_id = ?", id).Delete(&unitModel{}).Error; err != nil {
			return err
		}
		return tx.Delete(&subjectModel{}, id).Error
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}
