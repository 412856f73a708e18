// Package migrations holds all the migrations for the reporter database
package migrations

import (
	"github.com/uptrace/bun/migrate"
)

// Migrations is the collection of all migrations for the reporter database
var Migrations = migrate.NewMigrations()
