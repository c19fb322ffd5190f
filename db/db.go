package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	//nolint:revive,nolintlint // Idiomatic way of loading DB libraries.
	_ "github.com/glebarez/go-sqlite"

	"go.hackfix.me/strata/db/models"
	"go.hackfix.me/strata/db/types"
)

// DB wraps sql.DB with additional context and time helpers.
type DB struct {
	*sql.DB
	ctx     context.Context
	timeNow func() time.Time
	path    string
}

var _ types.Querier = (*DB)(nil)

// Init creates the internal strata tables in the database, and records the
// application version it was initialized with.
func (d *DB) Init(appVersion string, logger *slog.Logger) error {
	dblogger := logger.With("path", d.path)
	dblogger.Debug("initializing database")

	ctx := d.NewContext()
	_, err := d.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS _meta (
			version        TEXT NOT NULL,
			initialized_at TIMESTAMP NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("failed creating the _meta table: %w", err)
	}

	if err = models.EnsureMigrationsTable(ctx, d); err != nil {
		return err
	}

	_, err = d.ExecContext(ctx,
		`INSERT INTO _meta (version, initialized_at) VALUES (?, ?)`,
		appVersion, d.TimeNow().UTC())
	if err != nil {
		return fmt.Errorf("failed inserting into _meta: %w", err)
	}

	dblogger.Info("database initialized")

	return nil
}

// NewContext returns a new child context of the main database context.
func (d *DB) NewContext() context.Context {
	// TODO: Return cancel func?
	ctx, _ := context.WithCancel(d.ctx) //nolint:govet // I'll handle this later...
	return ctx
}

// Open creates and configures a new SQLite database connection.
func Open(ctx context.Context, path string, timeNow func() time.Time) (*DB, error) {
	var d *DB
	if strings.Contains(path, "mode=memory") || strings.Contains(path, ":memory:") {
		defer func() {
			if d != nil {
				// See https://github.com/mattn/go-sqlite3#faq
				d.SetMaxIdleConns(10)
				d.SetConnMaxLifetime(time.Duration(math.Inf(1)))
			}
		}()
	}

	sqliteDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed opening SQLite database: %w", err)
	}

	d = &DB{DB: sqliteDB, ctx: ctx, path: path, timeNow: timeNow}

	// Enable foreign key enforcement
	_, err = d.Exec(`PRAGMA foreign_keys = ON;`)
	if err != nil {
		return nil, fmt.Errorf("failed enabling foreign key enforcement: %w", err)
	}

	return d, nil
}

// Path returns the filesystem path of the database.
func (d *DB) Path() string {
	return d.path
}

// TimeNow returns the current system time.
func (d *DB) TimeNow() time.Time {
	return d.timeNow()
}
