package repository

import "errors"

// Not-found covers both a missing row and a row owned by another user; the
// two cases are deliberately indistinguishable to callers.
var (
	ErrUserNotFound    = errors.New("user not found")
	ErrSubjectNotFound = errors.New("subject not found")
	ErrUnitNotFound    = errors.New("unit not found")
	ErrNoteNotFound    = errors.New("note not found")
)
