package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yourusername/value-better/internal/database"
	"github.com/yourusername/value-better/internal/history"
	"github.com/yourusername/value-better/internal/models"
	"github.com/yourusername/value-better/internal/repository"
)

func newImportCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Load a results CSV into the historical_fixtures table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			fixtures, err := history.NewCSVSource(args[0], "", 0, c.log).LoadFixtures(ctx)
			if err != nil {
				return err
			}

			db, err := database.Initialize(ctx, &c.cfg.Database, c.log)
			if err != nil {
				return fmt.Errorf("database: %w", err)
			}
			defer db.Close()

			repos, err := repository.NewRepositories(db)
			if err != nil {
				return err
			}

			rows := make([]*models.HistoricalFixture, len(fixtures))
			for i := range fixtures {
				rows[i] = &fixtures[i]
			}
			n, err := repos.Fixtures.InsertBatch(ctx, rows)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "imported %d fixture(s) from %s\n", n, args[0])
			return err
		},
	}
}
