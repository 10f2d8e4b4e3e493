package db

import (
	_ "embed"

	"gorm.io/gorm"
)

// Schema is the courseware DDL. It is idempotent; ApplySchema runs it
// on startup tooling and the integration suite.
//
//go:embed schema.sql
var Schema string

// ApplySchema creates the courseware tables if they do not exist.
func ApplySchema(database *gorm.DB) error {
	return database.Exec(Schema).Error
}
