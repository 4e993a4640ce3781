package notes

import (
	"mime/multipart"

	"studynotes/internal/domain"
)

// IngestRequest carries a multipart note upload into the service.
type IngestRequest struct {
	SubjectID   int64
	UnitID      int64
	Title       string
	Description string
	File        *multipart.FileHeader
}

// NoteDetail is a note with its parent names and, for txt files, the inline
// text content.
type NoteDetail struct {
	*domain.NoteWithContext
	Content *string `json:"content,omitempty"`
}
