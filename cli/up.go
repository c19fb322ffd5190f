package cli

import (
	"fmt"
	"strings"

	actx "go.hackfix.me/strata/app/context"
	aerrors "go.hackfix.me/strata/app/errors"
	"go.hackfix.me/strata/db/migrator"
)

// The Up command applies pending migrations in chronological order.
type Up struct {
	Target string `arg:"" optional:"" default:"all" help:"Apply migrations up to and including this one. All pending migrations are applied by default."`
}

// Run the up command.
func (c *Up) Run(appCtx *actx.Context) error {
	if err := requireInit(appCtx); err != nil {
		return err
	}

	migrations, err := migrator.LoadMigrations(appCtx.FS, appCtx.Config.Migrations.Dir.V)
	if err != nil {
		return err
	}

	applied, err := migrator.RunMigrations(
		appCtx.DB, migrations, migrator.MigrationUp, c.Target, appCtx.Logger)
	if err != nil {
		return aerrors.NewWithCause("migration run failed", err,
			"applied", strings.Join(applied, ", "))
	}

	if len(applied) == 0 {
		fmt.Fprintln(appCtx.Stdout, "No pending migrations.")
		return nil
	}

	fmt.Fprintf(appCtx.Stdout, "Applied %d migration(s):\n", len(applied))
	for _, name := range applied {
		fmt.Fprintf(appCtx.Stdout, "  %s\n", name)
	}

	return nil
}
