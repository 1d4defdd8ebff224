package main

import (
	"github.com/spf13/cobra"

	"github.com/yourusername/value-better/internal/report"
)

func addOutputFlags(cmd *cobra.Command, out *outputOptions) {
	cmd.Flags().StringVarP(&out.format, "format", "f", report.FormatTable, "Output format (table, json)")
	cmd.Flags().IntVarP(&out.topN, "top", "n", 0, "Number of rows to show, ranked by edge (0 uses betting.top_n, negative shows all)")
	cmd.Flags().BoolVar(&out.betsOnly, "bets-only", false, "Show only the suggested bet of each match and bookmaker")
}

func newScanCmd(c *cli) *cobra.Command {
	out := outputOptions{}
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Fetch live odds and list value bets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runOnce(cmd, out)
		},
	}
	addOutputFlags(cmd, &out)
	return cmd
}

func newScoreCmd(c *cli) *cobra.Command {
	out := outputOptions{}
	cmd := &cobra.Command{
		Use:   "score FILE",
		Short: "Score a saved odds response",
		Long:  `Score reads a JSON array of fixtures in The Odds API v4 shape instead of calling the API.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runOnce(cmd, out)
		},
	}
	addOutputFlags(cmd, &out)
	return cmd
}

// runOnce builds the pipeline from configuration and runs a single pass
func (c *cli) runOnce(cmd *cobra.Command, out outputOptions) error {
	ctx := cmd.Context()

	_, store, closeStore, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	p, err := c.newPipeline(ctx, store)
	if err != nil {
		return err
	}
	_, err = p.run(ctx, cmd.OutOrStdout(), out)
	return err
}
