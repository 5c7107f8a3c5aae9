package cli

import (
	"fmt"
	"time"

	actx "github.com/nicoalimin/talentscan/app/context"
	aerrors "github.com/nicoalimin/talentscan/app/errors"
	"github.com/nicoalimin/talentscan/db/migrator"
)

// Migrate manages the database schema changesets embedded in the binary.
type Migrate struct {
	Up     MigrateUp     `kong:"cmd,help='Apply all pending migrations.'"`
	Down   MigrateDown   `kong:"cmd,help='Roll back the most recently applied migration.'"`
	Status MigrateStatus `kong:"cmd,help='Show the status of all migrations.'"`
}

// MigrateUp applies all pending migrations in order.
type MigrateUp struct{}

// Run the migrate up command.
func (c *MigrateUp) Run(appCtx *actx.Context) error {
	applied, err := migrator.Up(appCtx.DB, appCtx.DB.Migrations(), appCtx.Logger)
	for _, name := range applied {
		fmt.Fprintf(appCtx.Stdout, "Applied: %s\n", name)
	}
	if err != nil {
		return aerrors.NewWithCause("failed applying migrations", err)
	}

	if len(applied) == 0 {
		fmt.Fprintln(appCtx.Stdout, "No pending migrations")
		return nil
	}

	fmt.Fprintf(appCtx.Stdout, "Applied %d migration(s)\n", len(applied))

	return nil
}

// MigrateDown rolls back the single most recently applied migration.
type MigrateDown struct{}

// Run the migrate down command.
func (c *MigrateDown) Run(appCtx *actx.Context) error {
	name, err := migrator.Down(appCtx.DB, appCtx.DB.Migrations(), appCtx.Logger)
	if err != nil {
		return aerrors.NewWithCause("failed rolling back migration", err)
	}

	if name == "" {
		fmt.Fprintln(appCtx.Stdout, "No migrations to roll back")
		return nil
	}

	fmt.Fprintf(appCtx.Stdout, "Rolled back: %s\n", name)

	return nil
}

// MigrateStatus lists all known migrations and whether they've been applied.
type MigrateStatus struct{}

// Run the migrate status command.
func (c *MigrateStatus) Run(appCtx *actx.Context) error {
	statuses, err := migrator.State(appCtx.DB, appCtx.DB.Migrations())
	if err != nil {
		return aerrors.NewWithCause("failed getting migration status", err)
	}

	data := make([][]string, 0, len(statuses))
	for _, s := range statuses {
		status, appliedAt := "pending", ""
		if s.Applied {
			status = "applied"
			appliedAt = s.AppliedAt.Format(time.DateTime)
		}
		data = append(data, []string{s.Migration.Name, status, appliedAt})
	}

	err = renderTable([]string{"Migration", "Status", "Applied At"}, data, appCtx.Stdout)
	if err != nil {
		return aerrors.NewWithCause("failed rendering migration status table", err)
	}

	return nil
}
