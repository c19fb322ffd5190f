package models

import (
	"context"
	"fmt"
	"time"

	"go.hackfix.me/strata/db/types"
)

// MigrationsTable is the name of the relation that records applied migrations.
// The underscore prefix marks it as internal, so it is excluded from queries
// that list user tables.
const MigrationsTable = "_migrations"

// AppliedMigration is a single ledger entry recording that the migration with
// this name was applied at the given time.
type AppliedMigration struct {
	Name      string
	AppliedAt time.Time
}

// Save stores the ledger entry in the database. It returns
// types.DuplicateError if an entry with the same name is already recorded.
func (m *AppliedMigration) Save(ctx context.Context, d types.Querier) error {
	if m.Name == "" {
		return types.InvalidInputError{Msg: "the migration name must be set"}
	}

	timeNow := d.TimeNow().UTC()
	insertStmt := fmt.Sprintf(
		`INSERT INTO %s (name, applied_at) VALUES (?, ?)`, MigrationsTable)
	_, err := d.ExecContext(ctx, insertStmt, m.Name, timeNow)
	if err != nil {
		return types.Err("migration", fmt.Sprintf("name '%s'", m.Name), err)
	}
	m.AppliedAt = timeNow

	return nil
}

// Delete removes the ledger entry from the database. It returns
// types.NoResultError if no entry with this name is recorded.
func (m *AppliedMigration) Delete(ctx context.Context, d types.Querier) error {
	if m.Name == "" {
		return types.InvalidInputError{Msg: "the migration name must be set"}
	}

	stmt := fmt.Sprintf(`DELETE FROM %s WHERE name = ?`, MigrationsTable)
	res, err := d.ExecContext(ctx, stmt, m.Name)
	if err != nil {
		return types.Err("migration", fmt.Sprintf("name '%s'", m.Name), err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed getting affected rows: %w", err)
	}
	if n == 0 {
		return types.NoResultError{ModelName: "migration", ID: fmt.Sprintf("name '%s'", m.Name)}
	}

	return nil
}

// AppliedMigrations returns ledger entries matching the optional filter, in
// the order they were applied.
func AppliedMigrations(ctx context.Context, d types.Querier, filter *types.Filter) (
	[]*AppliedMigration, error,
) {
	query := fmt.Sprintf(`SELECT name, applied_at FROM %s`, MigrationsTable)
	args := []any{}
	if filter != nil {
		query = fmt.Sprintf("%s WHERE %s", query, filter.Where)
		args = filter.Args
	}
	// The implicit rowid preserves insertion order, which applied_at alone
	// can't guarantee, since multiple migrations can share a timestamp.
	query += " ORDER BY rowid ASC"

	rows, err := d.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed querying applied migrations: %w", err)
	}
	defer rows.Close()

	migs := []*AppliedMigration{}
	for rows.Next() {
		m := &AppliedMigration{}
		if err = rows.Scan(&m.Name, &m.AppliedAt); err != nil {
			return nil, types.ScanError{ModelName: "migration", Err: err}
		}
		migs = append(migs, m)
	}

	//nolint:wrapcheck // This is descriptive enough.
	return migs, rows.Err()
}

// EnsureMigrationsTable creates the migrations ledger table if it doesn't
// already exist.
func EnsureMigrationsTable(ctx context.Context, d types.Querier) error {
	stmt := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			name       TEXT PRIMARY KEY,
			applied_at TIMESTAMP NOT NULL
		)`, MigrationsTable)
	if _, err := d.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("failed creating the %s table: %w", MigrationsTable, err)
	}

	return nil
}
