package schema

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Migrator is an instance customized to perform migrations on a particular
// database against a particular tracking table and with a particular dialect
// defined.
type Migrator struct {
	SchemaName string
	TableName  string
	Dialect    Dialect
	Logger     Logger

	ctx context.Context
}

// NewMigrator creates a new Migrator with the supplied
// options
func NewMigrator(options ...Option) Migrator {
	m := Migrator{
		TableName: DefaultTableName,
		Dialect:   Postgres,
	}
	for _, opt := range options {
		m = opt(m)
	}
	return m
}

// QuotedTableName returns the dialect-quoted fully-qualified name for the
// migrations tracking table
func (m Migrator) QuotedTableName() string {
	return m.Dialect.QuotedTableName(m.SchemaName, m.TableName)
}

// Apply takes a slice of Migrations and applies any which have not yet
// been applied. All of them run in a single transaction: if one fails,
// none of them are recorded.
func (m Migrator) Apply(db DB, migrations []*Migration) (err error) {
	return m.withLockedTx(db, func(tx *sql.Tx) error {
		return m.run(tx, migrations)
	})
}

// Revert rolls back the most recently applied migration among those
// supplied, running its Down function or DownScript and removing its
// tracking record in one transaction.
func (m Migrator) Revert(db DB, migrations []*Migration) (err error) {
	return m.withLockedTx(db, func(tx *sql.Tx) error {
		return m.revert(tx, migrations)
	})
}

// Pending returns the supplied migrations which have not been applied yet,
// in the order Apply would run them
func (m Migrator) Pending(db Queryer, migrations []*Migration) ([]*Migration, error) {
	return m.computeMigrationPlan(db, migrations)
}

// withLockedTx obtains a dedicated connection, takes the dialect's lock if
// it has one, makes sure the tracking table exists and runs f inside a
// transaction on that connection.
func (m Migrator) withLockedTx(db DB, f func(tx *sql.Tx) error) (err error) {
	if db == nil {
		return ErrNilDB
	}
	ctx := m.context()

	// Obtain a concrete connection to the database which will be closed
	// at the conclusion of the run
	conn, err := db.Conn(ctx)
	if err != nil {
		return err
	}
	defer func() { err = coalesceErrs(err, conn.Close()) }()

	tableName := m.QuotedTableName()
	if locker, isLocker := m.Dialect.(Locker); isLocker {
		err = locker.Lock(ctx, conn, tableName)
		if err != nil {
			return err
		}
		m.log("Locked at ", time.Now().Format(time.RFC3339Nano))
		defer func() {
			unlockErr := locker.Unlock(ctx, conn, tableName)
			if unlockErr == nil {
				m.log("Unlocked at ", time.Now().Format(time.RFC3339Nano))
			}
			// Only report the unlock error if it doesn't overwrite an
			// earlier error
			err = coalesceErrs(err, unlockErr)
		}()
	}

	return transaction(ctx, conn, func(tx *sql.Tx) error {
		if err := m.Dialect.CreateMigrationsTable(ctx, tx, tableName); err != nil {
			return err
		}
		return f(tx)
	})
}

func (m Migrator) computeMigrationPlan(db Queryer, toRun []*Migration) (plan []*Migration, err error) {
	applied, err := m.GetAppliedMigrations(db)
	if err != nil {
		return plan, err
	}

	plan = make([]*Migration, 0)
	for _, migration := range toRun {
		if _, exists := applied[migration.ID]; !exists {
			plan = append(plan, migration)
		}
	}

	SortMigrations(plan)
	return plan, err
}

func (m Migrator) run(tx Queryer, migrations []*Migration) error {
	if tx == nil {
		return ErrNilDB
	}

	plan, err := m.computeMigrationPlan(tx, migrations)
	if err != nil {
		return err
	}

	for _, migration := range plan {
		err := m.runMigration(tx, migration)
		if err != nil {
			return err
		}
	}
	return nil
}

func (m Migrator) runMigration(tx Queryer, migration *Migration) error {
	ctx := m.context()
	startedAt := time.Now()
	err := migration.apply(ctx, m.session(tx))
	if err != nil {
		return fmt.Errorf("migration '%s' failed:\n%w", migration.ID, err)
	}

	executionTime := time.Since(startedAt)
	m.log(fmt.Sprintf("Migration '%s' applied in %s\n", migration.ID, executionTime))

	applied := &AppliedMigration{
		Migration:             *migration,
		ExecutionTimeInMillis: int(executionTime.Milliseconds()),
		AppliedAt:             startedAt,
	}
	return m.Dialect.InsertAppliedMigration(ctx, tx, m.QuotedTableName(), applied)
}

func (m Migrator) revert(tx Queryer, migrations []*Migration) error {
	if tx == nil {
		return ErrNilDB
	}

	applied, err := m.GetAppliedMigrations(tx)
	if err != nil {
		return err
	}

	var target *Migration
	for _, migration := range migrations {
		if _, ok := applied[migration.ID]; !ok {
			continue
		}
		if target == nil || migration.ID > target.ID {
			target = migration
		}
	}
	if target == nil {
		return ErrNothingToRevert
	}
	if !target.Reversible() {
		return fmt.Errorf("migration '%s': %w", target.ID, ErrIrreversible)
	}

	ctx := m.context()
	startedAt := time.Now()
	if err := target.revert(ctx, m.session(tx)); err != nil {
		return fmt.Errorf("reverting migration '%s' failed:\n%w", target.ID, err)
	}
	m.log(fmt.Sprintf("Migration '%s' reverted in %s\n", target.ID, time.Since(startedAt)))

	return m.Dialect.DeleteAppliedMigration(ctx, tx, m.QuotedTableName(), target.ID)
}

func (m Migrator) session(tx Queryer) *Session {
	return &Session{
		ctx:     m.context(),
		tx:      tx,
		dialect: m.Dialect,
		logger:  m.Logger,
	}
}

func (m Migrator) context() context.Context {
	if m.ctx == nil {
		return context.Background()
	}
	return m.ctx
}

func (m Migrator) log(msgs ...interface{}) {
	if m.Logger != nil {
		m.Logger.Print(msgs...)
	}
}
