package subjects

type CreateSubjectRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description"`
}

type CreateUnitRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description"`
}

// UnitOption is the compact {id, name} shape the note upload form consumes.
type UnitOption struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
