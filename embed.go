package schema

import (
	"fmt"
	"io/fs"
	"path"
)

// FSMigrations receives a filesystem (such as an embed.FS) and extracts all
// files matching the provided glob as Migrations, with the filename (without extension)
// being the ID and the file's contents being the Script. Files named
// "<id>.down.sql" become the DownScript of migration "<id>".
//
// Example usage:
//
//	FSMigrations(embeddedFS, "my-migrations/*.sql")
func FSMigrations(filesystem fs.FS, glob string) (migrations []*Migration, err error) {
	migrations = make([]*Migration, 0)

	entries, err := fs.Glob(filesystem, glob)
	if err != nil {
		return migrations, fmt.Errorf("failed to process glob '%s' in embed.FS: %w", glob, err)
	}

	scripts := make(map[string]string, len(entries))
	filenames := make([]string, 0, len(entries))
	for _, entry := range entries {
		data, err := fs.ReadFile(filesystem, entry)
		if err != nil {
			return migrations, err
		}
		if path.Ext(entry) != ".sql" {
			continue
		}
		scripts[entry] = string(data)
		filenames = append(filenames, entry)
	}
	return pairMigrations(filenames, scripts), nil
}
