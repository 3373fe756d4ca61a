package schema

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
)

// AppliedMigration is a row of the tracking table: a migration which has
// been applied, along with when and how long it took.
type AppliedMigration struct {
	Migration

	// Checksum is the MD5 of the migration at the time it was applied
	Checksum string

	ExecutionTimeInMillis int

	// AppliedAt is when the migration started running
	AppliedAt time.Time
}

// MigrationStatus pairs a migration with its tracking record. Applied is nil
// for pending migrations.
type MigrationStatus struct {
	*Migration
	Applied *AppliedMigration
}

// Changed reports whether an applied migration has been edited since it
// ran
func (s MigrationStatus) Changed() bool {
	return s.Applied != nil && s.Applied.Checksum != s.MD5()
}

// GetAppliedMigrations retrieves all already-applied migrations in a map keyed
// by the migration IDs
func (m Migrator) GetAppliedMigrations(db Queryer) (applied map[string]*AppliedMigration, err error) {
	applied = make(map[string]*AppliedMigration)
	migrations, err := m.Dialect.GetAppliedMigrations(m.context(), db, m.QuotedTableName())
	if err != nil {
		return applied, err
	}
	for _, migration := range migrations {
		applied[migration.ID] = migration
	}
	return applied, nil
}

// Status reports every supplied migration in ID order along with its
// tracking record
func (m Migrator) Status(db Queryer, migrations []*Migration) ([]MigrationStatus, error) {
	applied, err := m.GetAppliedMigrations(db)
	if err != nil {
		return nil, err
	}
	sorted := make([]*Migration, len(migrations))
	copy(sorted, migrations)
	SortMigrations(sorted)

	statuses := make([]MigrationStatus, len(sorted))
	for i, migration := range sorted {
		statuses[i] = MigrationStatus{Migration: migration, Applied: applied[migration.ID]}
	}
	return statuses, nil
}

var ledgerColumns = []string{"id", "checksum", "execution_time_in_millis", "applied_at"}

// ledger reads and writes tracking table rows in the placeholder style of
// a dialect. Only the table's DDL differs between dialects.
type ledger struct {
	format sq.PlaceholderFormat
}

func (l ledger) insert(ctx context.Context, tx Queryer, tableName string, am *AppliedMigration) error {
	query, args, err := sq.Insert(tableName).
		Columns(ledgerColumns...).
		Values(am.ID, am.MD5(), am.ExecutionTimeInMillis, am.AppliedAt).
		PlaceholderFormat(l.format).
		ToSql()
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, query, args...)
	return err
}

func (l ledger) delete(ctx context.Context, tx Queryer, tableName, id string) error {
	query, args, err := sq.Delete(tableName).
		Where(sq.Eq{"id": id}).
		PlaceholderFormat(l.format).
		ToSql()
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, query, args...)
	return err
}

func (l ledger) list(ctx context.Context, tx Queryer, tableName string) (migrations []*AppliedMigration, err error) {
	migrations = make([]*AppliedMigration, 0)

	query, args, err := sq.Select(ledgerColumns...).From(tableName).OrderBy("id ASC").ToSql()
	if err != nil {
		return migrations, err
	}
	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return migrations, err
	}
	defer func() { err = coalesceErrs(err, rows.Close()) }()

	for rows.Next() {
		migration := AppliedMigration{}
		var appliedAt appliedAtTime
		err = rows.Scan(&migration.ID, &migration.Checksum, &migration.ExecutionTimeInMillis, &appliedAt)
		if err != nil {
			return migrations, fmt.Errorf("reading %s, was its structure changed?: %w", tableName, err)
		}
		migration.AppliedAt = appliedAt.Value
		migrations = append(migrations, &migration)
	}
	return migrations, rows.Err()
}

// appliedAtTime scans applied_at whether the driver returns a time.Time or
// the bare "YYYY-MM-DD HH:MM:SS" text MySQL sends without parseTime=true
type appliedAtTime struct {
	Value time.Time
}

func (t *appliedAtTime) Scan(src interface{}) (err error) {
	switch v := src.(type) {
	case nil:
		t.Value = time.Time{}
		return nil
	case time.Time:
		t.Value = v.In(time.Local)
		return nil
	case []byte:
		return t.scanString(string(v))
	case string:
		return t.scanString(v)
	}
	return fmt.Errorf("cannot scan %T into applied_at", src)
}

func (t *appliedAtTime) scanString(src string) (err error) {
	layout := "2006-01-02 15:04:05"
	if len(src) > len(layout) {
		layout = "2006-01-02 15:04:05.999999999"
	}
	t.Value, err = time.ParseInLocation(layout, src, time.UTC)
	if err != nil {
		return err
	}
	t.Value = t.Value.In(time.Local)
	return nil
}
