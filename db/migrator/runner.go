package migrator

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"time"

	"github.com/nrednav/cuid2"

	"go.hackfix.me/strata/db/models"
	"go.hackfix.me/strata/db/types"
)

// DB is a database handle capable of running queries and starting
// transactions.
type DB interface {
	types.Querier
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// Runner executes migration plans against a database, and keeps the ledger
// in sync with them. It assumes it is the only writer to the ledger for the
// duration of a run.
type Runner struct {
	d          DB
	migrations []*Migration
	byName     map[string]*Migration
	ledger     *Ledger
	logger     *slog.Logger
}

// NewRunner creates a new Runner for the given migrations.
func NewRunner(d DB, migrations []*Migration, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	byName := make(map[string]*Migration, len(migrations))
	for _, m := range migrations {
		byName[m.Name] = m
	}

	return &Runner{
		d:          d,
		migrations: migrations,
		byName:     byName,
		ledger:     NewLedger(d),
		logger:     logger,
	}
}

// Up applies pending migrations in ascending name order, up to and including
// target, which must be either a migration name or TargetAll. Each migration
// and its ledger entry are committed in the same transaction. On failure the
// run stops immediately; migrations applied earlier in the run remain
// applied and recorded.
//
// It returns the names of the migrations it applied, in order, which is the
// full prefix of the plan completed before any failure.
func (r *Runner) Up(ctx context.Context, target string) ([]string, error) {
	logger := r.logger.With("run", cuid2.Generate(), "direction", MigrationUp)

	if err := r.ledger.Ensure(ctx); err != nil {
		return nil, err
	}
	if target != TargetAll {
		if _, ok := r.byName[target]; !ok {
			return nil, types.InvalidInputError{
				Msg: fmt.Sprintf("unknown target migration '%s'", target)}
		}
	}

	allNames := make([]string, len(r.migrations))
	for i, m := range r.migrations {
		allNames[i] = m.Name
	}
	if err := r.checkLedger(ctx, allNames); err != nil {
		return nil, err
	}

	pending, err := r.ledger.Pending(ctx, allNames)
	if err != nil {
		return nil, err
	}
	if target != TargetAll {
		if idx := slices.Index(pending, target); idx >= 0 {
			pending = pending[:idx+1]
		} else {
			// The target was already applied in an earlier run.
			pending = nil
		}
	}

	applied := []string{}
	for _, name := range pending {
		if err := r.apply(ctx, r.byName[name], logger); err != nil {
			return applied, err
		}
		applied = append(applied, name)
	}

	logger.Info("migrations applied", "count", len(applied))

	return applied, nil
}

// Down rolls back the most recently applied count migrations, in the reverse
// of the order they were applied in. A negative count rolls back all applied
// migrations. Each migration and its ledger entry removal are committed in
// the same transaction, and the run stops on the first failure.
//
// It returns the names of the migrations it reverted, in order.
func (r *Runner) Down(ctx context.Context, count int) ([]string, error) {
	logger := r.logger.With("run", cuid2.Generate(), "direction", MigrationDown)

	if count == 0 {
		return nil, types.InvalidInputError{Msg: "the rollback count must not be zero"}
	}
	if err := r.ledger.Ensure(ctx); err != nil {
		return nil, err
	}

	entries, err := r.ledger.Applied(ctx)
	if err != nil {
		return nil, err
	}
	if count < 0 || count > len(entries) {
		count = len(entries)
	}

	slices.Reverse(entries)
	reverted := []string{}
	for _, entry := range entries[:count] {
		m, ok := r.byName[entry.Name]
		if !ok {
			return reverted, &MigrationError{Name: entry.Name, Direction: MigrationDown,
				Err: fmt.Errorf("migration is recorded as applied, but wasn't loaded")}
		}
		if err := r.revert(ctx, m, logger); err != nil {
			return reverted, err
		}
		reverted = append(reverted, entry.Name)
	}

	logger.Info("migrations rolled back", "count", len(reverted))

	return reverted, nil
}

// DownTo rolls back all migrations applied after the named migration,
// including the named migration itself.
func (r *Runner) DownTo(ctx context.Context, name string) ([]string, error) {
	if err := r.ledger.Ensure(ctx); err != nil {
		return nil, err
	}

	entries, err := r.ledger.Applied(ctx)
	if err != nil {
		return nil, err
	}

	idx := slices.IndexFunc(entries, func(e *models.AppliedMigration) bool {
		return e.Name == name
	})
	if idx < 0 {
		return nil, types.NoResultError{ModelName: "applied migration",
			ID: fmt.Sprintf("name '%s'", name)}
	}

	return r.Down(ctx, len(entries)-idx)
}

// MigrationStatus is the merged view of a migration's load and ledger state.
type MigrationStatus struct {
	Name      string
	Applied   bool
	AppliedAt time.Time
	// Orphaned marks ledger entries whose migration is absent from the
	// loaded set. They can't be rolled back until their files are restored.
	Orphaned bool
}

// Status reports the state of every known migration: loaded ones in name
// order, followed by any orphaned ledger entries in applied order.
func (r *Runner) Status(ctx context.Context) ([]*MigrationStatus, error) {
	if err := r.ledger.Ensure(ctx); err != nil {
		return nil, err
	}
	entries, err := r.ledger.Applied(ctx)
	if err != nil {
		return nil, err
	}

	appliedAt := make(map[string]time.Time, len(entries))
	for _, e := range entries {
		appliedAt[e.Name] = e.AppliedAt
	}

	statuses := make([]*MigrationStatus, 0, len(r.migrations))
	for _, m := range r.migrations {
		s := &MigrationStatus{Name: m.Name}
		if at, ok := appliedAt[m.Name]; ok {
			s.Applied = true
			s.AppliedAt = at
		}
		statuses = append(statuses, s)
	}
	for _, e := range entries {
		if _, ok := r.byName[e.Name]; !ok {
			statuses = append(statuses, &MigrationStatus{
				Name: e.Name, Applied: true, AppliedAt: e.AppliedAt, Orphaned: true,
			})
		}
	}

	return statuses, nil
}

// apply runs the migration's up procedure and records its ledger entry in a
// single transaction.
func (r *Runner) apply(ctx context.Context, m *Migration, logger *slog.Logger) error {
	err := r.inTx(ctx, func(q types.Querier) error {
		if err := m.Up(ctx, q); err != nil {
			return err
		}
		if _, err := r.ledger.Record(ctx, q, m.Name); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return &MigrationError{Name: m.Name, Direction: MigrationUp, Err: err}
	}

	logger.Debug("migration applied", "name", m.Name)

	return nil
}

// revert runs the migration's down procedure and removes its ledger entry in
// a single transaction.
func (r *Runner) revert(ctx context.Context, m *Migration, logger *slog.Logger) error {
	err := r.inTx(ctx, func(q types.Querier) error {
		if err := m.Down(ctx, q); err != nil {
			return err
		}
		return r.ledger.Remove(ctx, q, m.Name)
	})
	if err != nil {
		return &MigrationError{Name: m.Name, Direction: MigrationDown, Err: err}
	}

	logger.Debug("migration rolled back", "name", m.Name)

	return nil
}

// checkLedger verifies that every recorded migration is present in the
// loaded set before a forward run.
func (r *Runner) checkLedger(ctx context.Context, allNames []string) error {
	entries, err := r.ledger.Applied(ctx)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if !slices.Contains(allNames, e.Name) {
			return types.IntegrityError{Msg: fmt.Sprintf(
				"migration '%s' is recorded as applied, but wasn't loaded", e.Name)}
		}
	}

	return nil
}

func (r *Runner) inTx(ctx context.Context, fn func(q types.Querier) error) error {
	tx, err := r.d.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed beginning transaction: %w", err)
	}
	//nolint:errcheck // The error is irrelevant after a successful commit.
	defer tx.Rollback()

	if err = fn(txQuerier{Tx: tx, base: r.d}); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed committing transaction: %w", err)
	}

	return nil
}

// txQuerier adapts a transaction to the types.Querier interface, delegating
// the helper methods to the database handle the transaction was started on.
type txQuerier struct {
	*sql.Tx
	base types.Querier
}

func (t txQuerier) NewContext() context.Context {
	return t.base.NewContext()
}

func (t txQuerier) TimeNow() time.Time {
	return t.base.TimeNow()
}

// RunMigrations executes migrations in the given direction until the target
// state is reached. The target can be TargetAll, a migration name, or, for
// rollbacks, a number of migrations to roll back. It returns the names of
// the migrations that were processed, in execution order.
func RunMigrations(
	d DB, migrations []*Migration, direction MigrationDirection,
	target string, logger *slog.Logger,
) ([]string, error) {
	r := NewRunner(d, migrations, logger)
	ctx := d.NewContext()

	switch direction {
	case MigrationUp:
		return r.Up(ctx, target)
	case MigrationDown:
		switch {
		case target == TargetAll:
			return r.Down(ctx, -1)
		case target == "":
			return r.Down(ctx, 1)
		default:
			if count, err := strconv.Atoi(target); err == nil {
				return r.Down(ctx, count)
			}
			return r.DownTo(ctx, target)
		}
	}

	return nil, types.InvalidInputError{
		Msg: fmt.Sprintf("invalid migration direction '%s'", direction)}
}
