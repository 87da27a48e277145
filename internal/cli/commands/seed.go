package commands

import (
	"github.com/spf13/cobra"
)

// NewSeedCommand creates the seed command.
func NewSeedCommand() *cobra.Command {
	var seedFile string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load catalog entries from a seed file",
		Long: `Load teams, platforms, systems, and cores from a YAML seed file.

Seeding is idempotent: entries whose slug already exists in the catalog
are skipped, so the command can be re-run after editing the file.`,
		Example: `  # Load the default seed file
  retrodex seed

  # Load a specific file, reporting results as JSON
  retrodex seed --file fixtures/demo.yaml --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			path := seedFile
			if path == "" {
				path = cc.Cfg.SeedFile
			}

			res, err := cc.Store.LoadSeeds(cmd.Context(), path)
			if err != nil {
				return err
			}

			if cc.Renderer.JSONMode() {
				return cc.Renderer.JSON(res)
			}
			cc.Renderer.Printf("seeded from %s: %d created, %d skipped\n", path, res.Created, res.Skipped)
			return nil
		},
	}

	cmd.Flags().StringVar(&seedFile, "file", "", "Seed file to load (default: seed_file from config)")

	return cmd
}
