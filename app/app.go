package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/mandelsoft/vfs/pkg/memoryfs"

	"go.hackfix.me/crudkit/app/config"
	actx "go.hackfix.me/crudkit/app/context"
	aerrors "go.hackfix.me/crudkit/app/errors"
	"go.hackfix.me/crudkit/cli"
	"go.hackfix.me/crudkit/db"
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

// New initializes a new application. configFilePath and dataDir are the
// default locations of the configuration file and the database, which can be
// overridden via the CLI.
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
	app.cli, err = cli.New(app.name, configFilePath, dataDir, ver)
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

	if err := app.loadConfig(); err != nil {
		return err
	}

	if err := app.openDB(); err != nil {
		return err
	}

	if err := app.cli.Execute(app.ctx); err != nil {
		return err
	}

	return nil
}

func (app *App) loadConfig() error {
	cfgPath := app.cli.ConfigFile
	if app.ctx.Config != nil && app.ctx.Config.Path() == cfgPath {
		return nil
	}

	cfg := config.NewConfig(app.ctx.FS, cfgPath)
	if err := cfg.Load(); err != nil {
		return aerrors.NewRuntimeError("failed loading configuration", err,
			fmt.Sprintf("Check the contents of %s", cfgPath))
	}
	cfg.SetDefaults()
	app.ctx.Config = cfg
	app.cli.ApplyConfig(cfg)

	return nil
}

func (app *App) openDB() error {
	if app.ctx.DB == nil {
		if err := app.ctx.FS.MkdirAll(app.cli.DataDir, 0o700); err != nil {
			return fmt.Errorf("failed creating data directory: %w", err)
		}

		dbPath := filepath.Join(app.cli.DataDir, fmt.Sprintf("%s.db", app.name))
		d, err := db.Open(app.ctx.Ctx, dbPath, app.ctx.TimeNow)
		if err != nil {
			return aerrors.NewRuntimeError("failed opening database", err, "")
		}
		app.ctx.DB = d
	}

	version, err := app.ctx.DB.Version(app.ctx.DB.NewContext())
	if err != nil {
		return aerrors.NewRuntimeError("failed reading database version", err, "")
	}
	app.ctx.VersionInit = version.V

	if app.ctx.VersionInit == "" && app.cli.Command() != "init" {
		return aerrors.NewRuntimeError("the database isn't initialized", errors.New("no version"),
			fmt.Sprintf("Run '%s init' first", app.name))
	}

	return nil
}
