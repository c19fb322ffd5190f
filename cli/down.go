package cli

import (
	"fmt"
	"strconv"
	"strings"

	actx "go.hackfix.me/strata/app/context"
	aerrors "go.hackfix.me/strata/app/errors"
	"go.hackfix.me/strata/db/migrator"
	"go.hackfix.me/strata/db/types"
)

// The Down command rolls back applied migrations, most recent first.
type Down struct {
	Count int    `short:"n" default:"1" help:"Number of migrations to roll back."`
	All   bool   `help:"Roll back all applied migrations."`
	To    string `help:"Roll back all migrations applied after this one, including it."`
}

// Run the down command.
func (c *Down) Run(appCtx *actx.Context) error {
	if err := requireInit(appCtx); err != nil {
		return err
	}
	if c.All && c.To != "" {
		return types.InvalidInputError{Msg: "--all and --to are mutually exclusive"}
	}
	if !c.All && c.To == "" && c.Count < 1 {
		return types.InvalidInputError{Msg: "--count must be a positive number"}
	}

	migrations, err := migrator.LoadMigrations(appCtx.FS, appCtx.Config.Migrations.Dir.V)
	if err != nil {
		return err
	}

	var target string
	switch {
	case c.All:
		target = migrator.TargetAll
	case c.To != "":
		target = c.To
	default:
		target = strconv.Itoa(c.Count)
	}

	reverted, err := migrator.RunMigrations(
		appCtx.DB, migrations, migrator.MigrationDown, target, appCtx.Logger)
	if err != nil {
		return aerrors.NewWithCause("rollback run failed", err,
			"reverted", strings.Join(reverted, ", "))
	}

	if len(reverted) == 0 {
		fmt.Fprintln(appCtx.Stdout, "No migrations to roll back.")
		return nil
	}

	fmt.Fprintf(appCtx.Stdout, "Rolled back %d migration(s):\n", len(reverted))
	for _, name := range reverted {
		fmt.Fprintf(appCtx.Stdout, "  %s\n", name)
	}

	return nil
}
