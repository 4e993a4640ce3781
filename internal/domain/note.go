package domain

import "time"

// Note is an uploaded artifact attached to exactly one unit. SubjectID is
// always derived from the unit at creation time, never taken from the caller.
type Note struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	SubjectID   int64     `json:"subject_id"`
	UnitID      int64     `json:"unit_id"`
	Title       string    `json:"title" validate:"required"`
	Description string    `json:"description,omitempty"`
	Filename    string    `json:"filename"`
	FilePath    string    `json:"-"`
	FileType    string    `json:"file_type"`
	CreatedAt   time.Time `json:"created_at"`
}

// NoteWithContext carries the parent names alongside a note for listings.
type NoteWithContext struct {
	Note
	SubjectName string `json:"subject_name"`
	UnitName    string `json:"unit_name"`
}
