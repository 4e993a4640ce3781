package notes

import "errors"

var (
	ErrMissingAssociation = errors.New("please select both subject and unit")
	ErrNoFile             = errors.New("no file selected")
	ErrDisallowedType     = errors.New("file type not allowed")
)
