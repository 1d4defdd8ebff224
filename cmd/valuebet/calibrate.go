package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yourusername/value-better/internal/models"
	"github.com/yourusername/value-better/internal/probability"
	"github.com/yourusername/value-better/internal/report"
)

func newCalibrateCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "calibrate",
		Short: "Show the calibration table built from historical results",
		Long: `Calibrate loads the configured historical fixtures, prints the outcome
frequencies used by the frequency strategy and, when the classifier strategy is
selected, trains the classifier and reports its size.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			w := cmd.OutOrStdout()

			_, store, closeStore, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			fixtures, err := c.loadFixtures(ctx, store)
			if err != nil {
				return err
			}

			fb := c.cfg.History.Fallback
			table := probability.Calibrate(fixtures, models.Distribution{Home: fb.Home, Draw: fb.Draw, Away: fb.Away})
			if err := report.RenderCalibration(w, table); err != nil {
				return err
			}

			strat, err := probability.ParseStrategy(c.cfg.Betting.Strategy)
			if err != nil {
				return err
			}
			if strat != probability.StrategyClassifier {
				return nil
			}

			est, err := c.buildEstimator(ctx, store)
			if err != nil {
				return err
			}
			classifier := est.(*probability.Classifier)
			home, away := classifier.Teams()
			_, err = fmt.Fprintf(w, "classifier: %d samples, %d home teams, %d away teams\n", classifier.Samples(), home, away)
			return err
		},
	}
}
