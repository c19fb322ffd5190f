package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/mandelsoft/vfs/pkg/memoryfs"

	"go.hackfix.me/strata/app/config"
	actx "go.hackfix.me/strata/app/context"
	"go.hackfix.me/strata/cli"
	"go.hackfix.me/strata/db"
	"go.hackfix.me/strata/db/queries"
)

// App is the application.
type App struct {
	name string
	ctx  *actx.Context
	cli  *cli.CLI
	// the logging level is set via the CLI, if the app was initialized with the
	// WithLogger option.
	logLevel *slog.LevelVar
}

// New initializes a new application.
func New(name, configFilePath, dataDir string, opts ...Option) (*App, error) {
	version, err := actx.GetVersion()
	if err != nil {
		return nil, err
	}

	defaultCtx := &actx.Context{
		Ctx:     context.Background(),
		FS:      memoryfs.New(),
		Logger:  slog.Default(),
		TimeNow: time.Now,
		Version: version,
	}
	app := &App{name: name, ctx: defaultCtx}

	for _, opt := range opts {
		opt(app)
	}

	ver := fmt.Sprintf("%s %s", app.name, app.ctx.Version.String())
	app.cli, err = cli.New(configFilePath, dataDir, ver)
	if err != nil {
		return nil, err
	}

	return app, nil
}

// Run initializes the application environment and starts execution of the
// application.
func (app *App) Run(args []string) error {
	if err := app.cli.Parse(args); err != nil {
		return err
	}

	if app.logLevel != nil {
		app.logLevel.Set(app.cli.Log.Level)
		slog.SetLogLoggerLevel(app.cli.Log.Level)
	}

	if err := app.setup(); err != nil {
		return err
	}

	if err := app.cli.Execute(app.ctx); err != nil {
		return err
	}

	return nil
}

// setup loads the configuration, applies CLI overrides to it, and opens the
// target database, unless these collaborators were injected with options.
func (app *App) setup() error {
	if app.ctx.Config == nil {
		cfg := config.NewConfig(app.ctx.FS, app.cli.ConfigFile)
		if err := cfg.Load(); err != nil {
			return err
		}
		app.ctx.Config = cfg
	}
	app.ctx.Config.SetDefaults(app.cli.DataDir)

	if dbPath := app.cli.DB; dbPath != "" {
		app.ctx.Config.Database.Path = sql.Null[string]{V: dbPath, Valid: true}
	}
	if dir := app.cli.MigrationsDir; dir != "" {
		app.ctx.Config.Migrations.Dir = sql.Null[string]{V: dir, Valid: true}
	}

	if app.ctx.DB == nil {
		d, err := db.Open(app.ctx.Ctx, app.ctx.Config.Database.Path.V, app.ctx.TimeNow)
		if err != nil {
			return err
		}
		app.ctx.DB = d
	}

	version, err := queries.Version(app.ctx.DB.NewContext(), app.ctx.DB)
	if err != nil {
		return fmt.Errorf("failed reading the database version: %w", err)
	}
	if version.Valid {
		app.ctx.VersionInit = version.V
	}

	return nil
}
