// Package migrations embeds the schema migration files.
package migrations

import (
	"embed"
	"io/fs"
)

//go:embed *.sql
var files embed.FS

// FS returns the migration files as a filesystem.
func FS() fs.FS {
	return files
}
