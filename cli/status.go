package cli

import (
	"fmt"
	"time"

	actx "go.hackfix.me/strata/app/context"
	aerrors "go.hackfix.me/strata/app/errors"
	"go.hackfix.me/strata/db/migrator"
	"go.hackfix.me/strata/db/queries"
	"go.hackfix.me/strata/xtime"
)

// The Status command shows the state of every known migration: loaded ones
// in chronological order, followed by any applied migrations whose files are
// missing from the migrations directory.
type Status struct{}

// Run the status command.
func (c *Status) Run(appCtx *actx.Context) error {
	if err := requireInit(appCtx); err != nil {
		return err
	}

	migrations, err := migrator.LoadMigrations(appCtx.FS, appCtx.Config.Migrations.Dir.V)
	if err != nil {
		return err
	}

	runner := migrator.NewRunner(appCtx.DB, migrations, appCtx.Logger)
	dbCtx := appCtx.DB.NewContext()
	statuses, err := runner.Status(dbCtx)
	if err != nil {
		return aerrors.NewWithCause("failed retrieving migration status", err)
	}

	timeNow := appCtx.TimeNow().UTC()
	data := make([][]string, len(statuses))
	for i, s := range statuses {
		state := "pending"
		appliedAt, age := "", ""
		switch {
		case s.Orphaned:
			state = "orphaned"
		case s.Applied:
			state = "applied"
		}
		if s.Applied {
			appliedAt = s.AppliedAt.Format(time.DateTime)
			age = xtime.FormatDuration(timeNow.Sub(s.AppliedAt), time.Minute)
		}
		data[i] = []string{s.Name, state, appliedAt, age}
	}

	if len(data) > 0 {
		header := []string{"Name", "State", "Applied At", "Age"}
		if err = renderTable(header, data, appCtx.Stdout); err != nil {
			return aerrors.NewWithCause("failed rendering the status table", err)
		}
	} else {
		fmt.Fprintln(appCtx.Stdout, "No migrations found.")
	}

	tables, err := queries.GetAllTables(dbCtx, appCtx.DB)
	if err != nil {
		return aerrors.NewWithCause("failed listing database tables", err)
	}
	fmt.Fprintf(appCtx.Stdout, "\nDatabase: %s, %d user table(s)\n",
		appCtx.DB.Path(), len(tables))

	return nil
}
