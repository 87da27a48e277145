package commands

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

// NewMigrateCommand creates the migrate command and its subcommands.
func NewMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database schema migrations",
		Long: `Apply, roll back, and inspect the catalog schema migrations.

Migrations are embedded in the binary and applied with goose. Each
migration runs in a transaction; a failing migration leaves the schema
at the previous version.`,
	}

	cmd.AddCommand(newMigrateUpCommand())
	cmd.AddCommand(newMigrateDownCommand())
	cmd.AddCommand(newMigrateStatusCommand())
	cmd.AddCommand(newMigrateVersionCommand())
	cmd.AddCommand(newMigrateRedoCommand())

	return cmd
}

func newMigrateUpCommand() *cobra.Command {
	var toVersion int64

	cmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		Example: `  # Apply all pending migrations
  retrodex migrate up

  # Migrate up to a specific version
  retrodex migrate up --to 5`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			if cmd.Flags().Changed("to") {
				err = cc.DB.MigrateUpTo(toVersion)
			} else {
				err = cc.DB.MigrateUp()
			}
			if err != nil {
				return err
			}

			return reportVersion(cc, "migrated up")
		},
	}

	cmd.Flags().Int64Var(&toVersion, "to", 0, "Migrate up to this version (inclusive)")

	return cmd
}

func newMigrateDownCommand() *cobra.Command {
	var toVersion int64

	cmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		Long: `Roll back the most recent migration, or, with --to, every migration
above the given version.

Rolling back the core-systems join table requires every core to be
associated with at least one system; the rollback fails and leaves the
schema unchanged otherwise.`,
		Example: `  # Roll back the most recent migration
  retrodex migrate down

  # Roll back everything above version 3
  retrodex migrate down --to 3`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			if cmd.Flags().Changed("to") {
				err = cc.DB.MigrateDownTo(toVersion)
			} else {
				err = cc.DB.MigrateDown()
			}
			if err != nil {
				return err
			}

			return reportVersion(cc, "migrated down")
		},
	}

	cmd.Flags().Int64Var(&toVersion, "to", 0, "Roll back to this version (exclusive)")

	return cmd
}

func newMigrateStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the status of each migration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			states, err := cc.DB.MigrationStatus()
			if err != nil {
				return err
			}

			if cc.Renderer.JSONMode() {
				return cc.Renderer.JSON(states)
			}

			rows := make([]table.Row, 0, len(states))
			for _, st := range states {
				applied := "pending"
				if st.Applied {
					applied = "applied"
				}
				rows = append(rows, table.Row{st.Version, st.Source, applied})
			}
			cc.Renderer.Table(table.Row{"VERSION", "SOURCE", "STATUS"}, rows)
			return nil
		},
	}
}

func newMigrateVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			version, err := cc.DB.MigrationVersion()
			if err != nil {
				return err
			}

			if cc.Renderer.JSONMode() {
				return cc.Renderer.JSON(map[string]int64{"version": version})
			}
			cc.Renderer.Printf("version %d\n", version)
			return nil
		},
	}
}

func newMigrateRedoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "redo",
		Short: "Roll back and re-apply the latest migration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := cc.DB.MigrateRedo(); err != nil {
				return err
			}

			return reportVersion(cc, "redo complete")
		},
	}
}

func reportVersion(cc *CommandContext, msg string) error {
	version, err := cc.DB.MigrationVersion()
	if err != nil {
		return fmt.Errorf("migration succeeded but version lookup failed: %w", err)
	}

	if cc.Renderer.JSONMode() {
		return cc.Renderer.JSON(map[string]any{"status": msg, "version": version})
	}
	cc.Renderer.Printf("%s, schema at version %d\n", msg, version)
	return nil
}
