package posts

import (
	"embed"
)

//go:embed data/sql/migrations/*.sql
var migrationsFS embed.FS

//go:embed data/fixtures/*.yml
var fixturesFS embed.FS

// GetMigrationsFS returns the migration files for this package
func GetMigrationsFS() embed.FS {
	return migrationsFS
}

// GetFixturesFS returns the bundled seed users
func GetFixturesFS() embed.FS {
	return fixturesFS
}
