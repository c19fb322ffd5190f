package cli

import (
	"fmt"

	actx "go.hackfix.me/strata/app/context"
	aerrors "go.hackfix.me/strata/app/errors"
)

// The Init command creates the initial strata artifacts: the internal tables
// in the target database, the migrations directory, and the configuration
// file with the effective values.
type Init struct{}

// Run the init command.
func (c *Init) Run(appCtx *actx.Context) error {
	if appCtx.VersionInit != "" {
		// TODO: Add --force option?
		return fmt.Errorf("strata is already initialized with version %s", appCtx.VersionInit)
	}

	err := appCtx.DB.Init(appCtx.Version.Semantic, appCtx.Logger)
	if err != nil {
		return aerrors.NewWithCause("failed initializing database", err,
			"path", appCtx.Config.Database.Path.V)
	}

	dir := appCtx.Config.Migrations.Dir.V
	if err = appCtx.FS.MkdirAll(dir, 0o755); err != nil {
		return aerrors.NewWithCause("failed creating migrations directory", err, "dir", dir)
	}
	appCtx.Logger.Info("created migrations directory", "dir", dir)

	if err = appCtx.Config.Save(); err != nil {
		return aerrors.NewWithCause("failed saving the configuration", err,
			"path", appCtx.Config.Path())
	}

	return nil
}
