package cli

import (
	"fmt"
	"log/slog"

	"github.com/alecthomas/kong"

	actx "github.com/nicoalimin/talentscan/app/context"
	aerrors "github.com/nicoalimin/talentscan/app/errors"
	"github.com/nicoalimin/talentscan/db/migrator"
)

// CLI is the command line interface of TalentScan.
type CLI struct {
	Migrate   Migrate   `kong:"cmd,help='Manage database schema migrations.'"`
	Process   Process   `kong:"cmd,help='Extract and store candidate data from resume documents.'"`
	Screen    Screen    `kong:"cmd,help='Rank stored candidates against a role query.'"`
	Candidate Candidate `kong:"cmd,help='Manage stored candidates.'"`

	Log struct {
		Level slog.Level `enum:"DEBUG,INFO,WARN,ERROR" default:"INFO" help:"Set the app logging level."`
	} `embed:"" prefix:"log-"`
	// NOTE: Deliberately not using kong.ConfigFlag or its support for reading
	// values from configuration files, since the configuration is managed
	// independently from the CLI.
	ConfigFile string           `kong:"default='${configFile}',help='Path to the TalentScan configuration file.'"`
	DataDir    string           `kong:"default='${dataDir}',help='Path to the directory where TalentScan data is stored.'"`
	Version    kong.VersionFlag `kong:"help='Output version and exit.'"`

	kong *kong.Kong
	kctx *kong.Context
}

// New initializes the command-line interface.
func New(configFilePath, dataDir, version string) (*CLI, error) {
	c := &CLI{}
	kparser, err := kong.New(c,
		kong.Name("talentscan"),
		kong.UsageOnError(),
		kong.DefaultEnvars("TALENTSCAN"),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			Summary:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"configFile": configFilePath,
			"dataDir":    dataDir,
			"version":    version,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed creating the Kong parser: %w", err)
	}

	c.kong = kparser

	return c, nil
}

// Parse the given command line arguments. This method must be called before
// Execute.
func (c *CLI) Parse(args []string) error {
	kctx, err := c.kong.Parse(args)
	if err != nil {
		return fmt.Errorf("failed parsing CLI arguments: %w", err)
	}
	c.kctx = kctx

	return nil
}

// Execute starts the command execution. Parse must be called before this method.
func (c *CLI) Execute(appCtx *actx.Context) error {
	if c.kctx == nil {
		panic("the CLI wasn't initialized properly")
	}
	c.kong.Stdout = appCtx.Stdout
	c.kong.Stderr = appCtx.Stderr

	//nolint:wrapcheck // This is fine.
	return c.kctx.Run(appCtx)
}

// ensureMigrated returns an error if any known migration hasn't been applied
// yet. Commands that read or write candidate data call this first, so they
// fail with a clear message instead of an arbitrary SQL error.
func ensureMigrated(appCtx *actx.Context) error {
	statuses, err := migrator.State(appCtx.DB, appCtx.DB.Migrations())
	if err != nil {
		return aerrors.NewWithCause("failed checking migration status", err)
	}

	for _, s := range statuses {
		if !s.Applied {
			return aerrors.NewWith("the database schema is not up to date",
				"pending", s.Migration.Name,
				"hint", "run 'talentscan migrate up'")
		}
	}

	return nil
}
