package migrator

import (
	"context"

	"go.hackfix.me/strata/db/models"
	"go.hackfix.me/strata/db/types"
)

// Ledger is the persistent record of applied migrations, stored in the
// target database itself. Reads go through the querier the Ledger was
// created with; Record and Remove accept a querier explicitly, so that the
// Runner can scope them to the same transaction as the migration procedure
// they belong to.
type Ledger struct {
	d types.Querier
}

// NewLedger creates a new Ledger backed by the given querier.
func NewLedger(d types.Querier) *Ledger {
	return &Ledger{d: d}
}

// Ensure creates the ledger table if it doesn't already exist.
func (l *Ledger) Ensure(ctx context.Context) error {
	return models.EnsureMigrationsTable(ctx, l.d)
}

// Applied returns all ledger entries, in the order they were applied.
func (l *Ledger) Applied(ctx context.Context) ([]*models.AppliedMigration, error) {
	return models.AppliedMigrations(ctx, l.d, nil)
}

// Pending returns the names in allNames that have no ledger entry,
// preserving the order of allNames.
func (l *Ledger) Pending(ctx context.Context, allNames []string) ([]string, error) {
	applied, err := l.Applied(ctx)
	if err != nil {
		return nil, err
	}

	appliedSet := make(map[string]struct{}, len(applied))
	for _, m := range applied {
		appliedSet[m.Name] = struct{}{}
	}

	pending := []string{}
	for _, name := range allNames {
		if _, ok := appliedSet[name]; !ok {
			pending = append(pending, name)
		}
	}

	return pending, nil
}

// Record inserts a ledger entry for the named migration, and returns the
// entry. It returns types.DuplicateError if the migration is already
// recorded.
func (l *Ledger) Record(ctx context.Context, d types.Querier, name string) (
	*models.AppliedMigration, error,
) {
	entry := &models.AppliedMigration{Name: name}
	if err := entry.Save(ctx, d); err != nil {
		return nil, err
	}
	return entry, nil
}

// Remove deletes the ledger entry for the named migration. It returns
// types.NoResultError if the migration isn't recorded.
func (l *Ledger) Remove(ctx context.Context, d types.Querier, name string) error {
	entry := &models.AppliedMigration{Name: name}
	return entry.Delete(ctx, d)
}
