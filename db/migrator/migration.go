package migrator

import (
	"context"
	"fmt"
	"regexp"

	"go.hackfix.me/strata/db/types"
)

// MigrationDirection determines whether migrations are applied or rolled back.
type MigrationDirection string

// Valid migration directions.
const (
	MigrationUp   MigrationDirection = "up"
	MigrationDown MigrationDirection = "down"
)

// TargetAll instructs the runner to process all known migrations.
const TargetAll = "all"

// A Procedure performs schema or data changes against the database handle it
// receives. The handle may be scoped to a transaction.
type Procedure func(ctx context.Context, d types.Querier) error

// Migration is a single named schema change with a forward and a reverse
// procedure. Migrations are immutable once loaded, and are identified by
// their unique name.
type Migration struct {
	// Name is the base of the migration file names, in the format
	// "{id}-{label}". Migrations are ordered by it lexicographically.
	Name string
	// ID is the numeric prefix of the name, typically a timestamp in the
	// format yyyymmddHHMMSS.
	ID uint64
	// Label is a short human-readable description of the change.
	Label string
	// Up applies the change.
	Up Procedure
	// Down reverts the change.
	Down Procedure
}

// migrationFileRx matches migration file names, e.g.
// "20230101120000-create-users.up.sql".
var migrationFileRx = regexp.MustCompile(`^(\d+)-(.+)\.(up|down)\.sql$`)

// sqlProcedure returns a Procedure that executes the given SQL statements.
func sqlProcedure(stmts string) Procedure {
	return func(ctx context.Context, d types.Querier) error {
		if _, err := d.ExecContext(ctx, stmts); err != nil {
			return fmt.Errorf("failed executing SQL statements: %w", err)
		}
		return nil
	}
}
