package schema

import (
	"context"
	"crypto/md5"
	"fmt"
	"sort"
)

// MigrationFunc is a schema change written in Go. It receives a Session
// bound to the transaction the migration runs in.
type MigrationFunc func(ctx context.Context, s *Session) error

// Migration is a yet-to-be-run change to the schema. A migration is either
// a SQL Script (with an optional DownScript) or a pair of Go functions. When
// Up is set it runs in place of Script, and when Down is set it runs in
// place of DownScript.
type Migration struct {
	ID         string
	Script     string
	DownScript string

	Up   MigrationFunc
	Down MigrationFunc
}

// MD5 computes the MD5 hash of the Script for this migration so that it
// can be uniquely identified later. Go migrations have no script, so their
// ID is hashed instead.
func (m *Migration) MD5() string {
	if m.Script == "" && m.Up != nil {
		return fmt.Sprintf("%x", md5.Sum([]byte(m.ID)))
	}
	return fmt.Sprintf("%x", md5.Sum([]byte(m.Script)))
}

// Reversible reports whether the migration can be reverted
func (m *Migration) Reversible() bool {
	return m.Down != nil || m.DownScript != ""
}

func (m *Migration) apply(ctx context.Context, s *Session) error {
	if m.Up != nil {
		return m.Up(ctx, s)
	}
	_, err := s.Exec(m.Script)
	return err
}

func (m *Migration) revert(ctx context.Context, s *Session) error {
	switch {
	case m.Down != nil:
		return m.Down(ctx, s)
	case m.DownScript != "":
		_, err := s.Exec(m.DownScript)
		return err
	}
	return ErrIrreversible
}

// SortMigrations sorts a slice of migrations by their IDs
func SortMigrations(migrations []*Migration) {
	// Adjust execution order so that we apply by ID
	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].ID < migrations[j].ID
	})
}
