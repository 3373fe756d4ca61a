package schema

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// downSuffix marks a migration file as the DownScript of the migration
// with the same ID minus the suffix
const downSuffix = ".down"

// MigrationIDFromFilename removes directory paths and extensions
// from the filename to make a friendlier Migration ID
//
func MigrationIDFromFilename(filename string) string {
	return strings.TrimSuffix(path.Base(filename), path.Ext(filename))
}

// MigrationsFromDirectoryPath retrieves a slice of Migrations from the
// contents of the directory. Only .sql files are read. A file named
// "<id>.down.sql" is attached as the DownScript of migration "<id>".
func MigrationsFromDirectoryPath(dirPath string) (migrations []*Migration, err error) {
	migrations = make([]*Migration, 0)
	filenames, err := filepath.Glob(path.Join(dirPath, "*.sql"))
	if err != nil {
		return migrations, err
	}
	if len(filenames) == 0 {
		if _, statErr := os.Stat(dirPath); statErr != nil {
			return migrations, statErr
		}
	}
	scripts := make(map[string]string, len(filenames))
	for _, filename := range filenames {
		content, err := os.ReadFile(filename)
		if err != nil {
			return migrations, err
		}
		scripts[filename] = string(content)
	}
	return pairMigrations(filenames, scripts), nil
}

// MigrationFromFilePath creates a Migration from a path on disk
func MigrationFromFilePath(filename string) (migration *Migration, err error) {
	migration = &Migration{}
	migration.ID = MigrationIDFromFilename(filename)
	contents, err := os.ReadFile(filename)
	if err != nil {
		return migration, fmt.Errorf("failed to read migration from '%s': %w", filename, err)
	}
	migration.Script = string(contents)
	return migration, err
}

// File wraps the standard library io.Read and os.File.Name methods
type File interface {
	Name() string
	Read(b []byte) (n int, err error)
}

// MigrationFromFile builds a migration by reading from an open File-like
// object. The migration's ID will be based on the file's name. The file
// will *not* be closed after being read.
func MigrationFromFile(file File) (migration *Migration, err error) {
	migration = &Migration{}
	migration.ID = MigrationIDFromFilename(file.Name())
	content, err := io.ReadAll(file)
	if err != nil {
		return migration, err
	}
	migration.Script = string(content)
	return migration, err
}

// pairMigrations turns a list of file names and their contents into
// Migrations, folding "<id>.down" files into the DownScript of "<id>". A
// down file without a matching up file is kept as a regular migration.
func pairMigrations(filenames []string, scripts map[string]string) []*Migration {
	migrations := make([]*Migration, 0, len(filenames))
	byID := make(map[string]*Migration, len(filenames))
	var downs []string

	for _, filename := range filenames {
		id := MigrationIDFromFilename(filename)
		if strings.HasSuffix(id, downSuffix) {
			downs = append(downs, filename)
			continue
		}
		migration := &Migration{ID: id, Script: scripts[filename]}
		byID[id] = migration
		migrations = append(migrations, migration)
	}

	for _, filename := range downs {
		id := MigrationIDFromFilename(filename)
		if up, ok := byID[strings.TrimSuffix(id, downSuffix)]; ok {
			up.DownScript = scripts[filename]
			continue
		}
		migrations = append(migrations, &Migration{ID: id, Script: scripts[filename]})
	}
	return migrations
}
