package repository

import (
	"context"
	"errors"
	"time"

	"studynotes/internal/domain"

	"gorm.io/gorm"
)

type NoteRepository struct {
	db *gorm.DB
}

func NewNoteRepository(db *gorm.DB) *NoteRepository {
	return &NoteRepository{db: db}
}

type noteModel struct {
	ID          int64     `gorm:"column:id;primaryKey"`
	UserID      int64     `gorm:"column:user_id;index"`
	SubjectID   int64     `gorm:"column:subject_id;index"`
	UnitID      int64     `gorm:"column:unit_id;index"`
	Title       string    `gorm:"column:title"`
	Description *string   `gorm:"column:description"`
	Filename    string    `gorm:"column:filename"`
	FilePath    string    `gorm:"column:file_path"`
	FileType    string    `gorm:"column:file_type"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

func (noteModel) TableName() string { return "notes" }

func toDomainNote(m noteModel) *domain.Note {
	var desc string
	if m.Description != nil {
		desc = *m.Description
	}
	return &domain.Note{
		ID:          m.ID,
		UserID:      m.UserID,
		SubjectID:   m.SubjectID,
		UnitID:      m.UnitID,
		Title:       m.Title,
		Description: desc,
		Filename:    m.Filename,
		FilePath:    m.FilePath,
		FileType:    m.FileType,
		CreatedAt:   m.CreatedAt,
	}
}

func toNoteModel(n *domain.Note) noteModel {
	var desc *string
	if n.Description != "" {
		v := n.Description
		desc = &v
	}
	return noteModel{
		ID:          n.ID,
		UserID:      n.UserID,
		SubjectID:   n.SubjectID,
		UnitID:      n.UnitID,
		Title:       n.Title,
		Description: desc,
		Filename:    n.Filename,
		FilePath:    n.FilePath,
		FileType:    n.FileType,
		CreatedAt:   n.CreatedAt,
	}
}

// NoteModel aliases noteModel with an exported name so that, when it is
// embedded below, reflection-based scanning can set the promoted fields.
type NoteModel = noteModel

type noteContextRow struct {
	NoteModel   `gorm:"embedded"`
	SubjectName string `gorm:"column:subject_name"`
	UnitName    string `gorm:"column:unit_name"`
}

func toNoteWithContext(row noteContextRow) *domain.NoteWithContext {
	return &domain.NoteWithContext{
		Note:        *toDomainNote(row.NoteModel),
		SubjectName: row.SubjectName,
		UnitName:    row.UnitName,
	}
}

// Create inserts a note. The unit is looked up through an ownership join and
// the note's SubjectID is taken from the unit row, so a note can never point
// at a subject its unit does not belong to.
func (r *NoteRepository) Create(ctx context.Context, userID int64, n *domain.Note) error {
	var unit unitModel
	tx := r.db.WithContext(ctx).
		Joins("JOIN subjects ON subjects.id = units.subject_id").
		Where("units.id = ? AND subjects.user_id = ?", n.UnitID, userID).
		First(&unit)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return ErrUnitNotFound
		}
		return tx.Error
	}

	n.UserID = userID
	n.SubjectID = unit.SubjectID
	m := toNoteModel(n)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return err
	}
	*n = *toDomainNote(m)
	return nil
}

func (r *NoteRepository) GetByID(ctx context.Context, userID, id int64) (*domain.Note, error) {
	var m noteModel
	tx := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&m)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNoteNotFound
		}
		return nil, tx.Error
	}
	return toDomainNote(m), nil
}

// GetWithContext returns a note with its subject and unit names.
func (r *NoteRepository) GetWithContext(ctx context.Context, userID, id int64) (*domain.NoteWithContext, error) {
	var rows []noteContextRow
	tx := r.contextQuery(ctx).
		Where("notes.id = ? AND notes.user_id = ?", id, userID).
		Scan(&rows)
	if tx.Error != nil {
		return nil, tx.Error
	}
	if len(rows) == 0 {
		return nil, ErrNoteNotFound
	}
	return toNoteWithContext(rows[0]), nil
}

// ListByUser returns all of the user's notes, newest first, with subject and
// unit names attached.
func (r *NoteRepository) ListByUser(ctx context.Context, userID int64) ([]*domain.NoteWithContext, error) {
	var rows []noteContextRow
	tx := r.contextQuery(ctx).
		Where("notes.user_id = ?", userID).
		Order("notes.created_at DESC, notes.id DESC").
		Scan(&rows)
	if tx.Error != nil {
		return nil, tx.Error
	}
	notes := make([]*domain.NoteWithContext, 0, len(rows))
	for _, row := range rows {
		notes = append(notes, toNoteWithContext(row))
	}
	return notes, nil
}

// Recent returns the user's newest notes capped at limit.
func (r *NoteRepository) Recent(ctx context.Context, userID int64, limit int) ([]*domain.Note, error) {
	var models []noteModel
	tx := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&models)
	if tx.Error != nil {
		return nil, tx.Error
	}
	notes := make([]*domain.Note, 0, len(models))
	for _, m := range models {
		notes = append(notes, toDomainNote(m))
	}
	return notes, nil
}

func (r *NoteRepository) CountByUser(ctx context.Context, userID int64) (int64, error) {
	var count int64
	tx := r.db.WithContext(ctx).Model(&noteModel{}).Where("user_id = ?", userID).Count(&count)
	return count, tx.Error
}

func (r *NoteRepository) Delete(ctx context.Context, userID, id int64) error {
	tx := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&noteModel{})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrNoteNotFound
	}
	return nil
}

// SearchByUser matches the query case-insensitively against note titles and
// descriptions, in natural id order.
func (r *NoteRepository) SearchByUser(ctx context.Context, userID int64, query string) ([]*domain.NoteWithContext, error) {
	pattern := likePattern(query)
	var rows []noteContextRow
	tx := r.contextQuery(ctx).
		Where("notes.user_id = ?", userID).
		Where("LOWER(notes.title) LIKE ? OR LOWER(notes.description) LIKE ?", pattern, pattern).
		Order("notes.id").
		Scan(&rows)
	if tx.Error != nil {
		return nil, tx.Error
	}
	notes := make([]*domain.NoteWithContext, 0, len(rows))
	for _, row := range rows {
		notes = append(notes, toNoteWithContext(row))
	}
	return notes, nil
}

func (r *NoteRepository) contextQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("notes").
		Select("notes.*, subjects.name AS subject_name, units.name AS unit_name").
		Joins("JOIN subjects ON subjects.id = notes.subject_id").
		Joins("JOIN units ON units.id = notes.unit_id")
}
