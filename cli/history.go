package cli

import (
	"fmt"
	"time"

	actx "go.hackfix.me/strata/app/context"
	aerrors "go.hackfix.me/strata/app/errors"
	"go.hackfix.me/strata/db/models"
	"go.hackfix.me/strata/xtime"
)

// The History command shows applied migrations in the order they were
// applied.
type History struct{}

// Run the history command.
func (c *History) Run(appCtx *actx.Context) error {
	if err := requireInit(appCtx); err != nil {
		return err
	}

	applied, err := models.AppliedMigrations(appCtx.DB.NewContext(), appCtx.DB, nil)
	if err != nil {
		return aerrors.NewWithCause("failed listing applied migrations", err)
	}

	if len(applied) == 0 {
		fmt.Fprintln(appCtx.Stdout, "No migrations have been applied.")
		return nil
	}

	timeNow := appCtx.TimeNow().UTC()
	data := make([][]string, len(applied))
	for i, m := range applied {
		data[i] = []string{
			m.Name,
			m.AppliedAt.Format(time.DateTime),
			xtime.FormatDuration(timeNow.Sub(m.AppliedAt), time.Minute),
		}
	}

	header := []string{"Name", "Applied At", "Age"}
	if err = renderTable(header, data, appCtx.Stdout); err != nil {
		return aerrors.NewWithCause("failed rendering the history table", err)
	}

	return nil
}
