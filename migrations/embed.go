// Package migrations embeds the SQL schema of the dataset definitions store.
package migrations

import (
	"embed"

	"github.com/engineering-on-display/eod-uaa/internal/infrastructure/database"
)

//go:embed *.sql
var migrationsFS embed.FS

func init() {
	database.MigrationsFS = migrationsFS
	database.MigrationsDir = "."
}
