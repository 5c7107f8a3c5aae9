package app

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/mandelsoft/vfs/pkg/memoryfs"

	"github.com/nicoalimin/talentscan/app/config"
	actx "github.com/nicoalimin/talentscan/app/context"
	"github.com/nicoalimin/talentscan/cli"
	"github.com/nicoalimin/talentscan/db"
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
	defaultCtx := &actx.Context{
		Ctx:     context.Background(),
		FS:      memoryfs.New(),
		Logger:  slog.Default(),
		Version: actx.GetVersion(),
	}
	app := &App{name: name, ctx: defaultCtx}

	for _, opt := range opts {
		opt(app)
	}

	ver := fmt.Sprintf("%s %s", app.name, app.ctx.Version)
	var err error
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

	cfg := config.NewConfig(app.ctx.FS, app.cli.ConfigFile)
	if err := cfg.Load(); err != nil {
		return err
	}
	cfg.SetDefaults()
	app.ctx.Config = cfg

	if app.ctx.DB == nil {
		if err := app.ctx.FS.MkdirAll(app.cli.DataDir, 0o755); err != nil {
			return fmt.Errorf("failed creating data directory: %w", err)
		}
		d, err := db.Open(app.ctx.Ctx, filepath.Join(app.cli.DataDir, "talentscan.db"), app.ctx.TimeNow)
		if err != nil {
			return err
		}
		app.ctx.DB = d
	}

	if err := app.cli.Execute(app.ctx); err != nil {
		return err
	}

	return nil
}
