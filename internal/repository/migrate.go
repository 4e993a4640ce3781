package repository

import "gorm.io/gorm"

// Migrate creates or updates the four tables. Used by cmd/api on startup and
// by tests against in-memory SQLite.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&userModel{},
		&subjectModel{},
		&unitModel{},
		&noteModel{},
	)
}
