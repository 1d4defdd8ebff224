package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/yourusername/value-better/internal/health"
	"github.com/yourusername/value-better/internal/scheduler"
)

const scanJobName = "value-scan"

func newWatchCmd(c *cli) *cobra.Command {
	out := outputOptions{}
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Scan on a cron schedule and serve health and metrics endpoints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.watch(cmd, out, timeout)
		},
	}
	addOutputFlags(cmd, &out)
	cmd.Flags().DurationVar(&timeout, "scan-timeout", 5*time.Minute, "Upper bound for a single scan")
	return cmd
}

func (c *cli) watch(cmd *cobra.Command, out outputOptions, timeout time.Duration) error {
	ctx := cmd.Context()

	db, store, closeStore, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	// The estimator is fitted once; every scan reuses it.
	p, err := c.newPipeline(ctx, store)
	if err != nil {
		return err
	}

	sched := scheduler.NewScheduler(c.log)
	job := func(ctx context.Context) error {
		_, err := p.run(ctx, cmd.OutOrStdout(), out)
		return err
	}
	if err := sched.ScheduleScan(c.cfg.Schedule.Cron, scanJobName, timeout, job); err != nil {
		return err
	}

	if c.cfg.Metrics.Enabled {
		hc := health.Config{
			ServiceName: c.cfg.App.Name,
			Version:     Version,
			Commit:      GitCommit,
			Port:        c.cfg.Metrics.Port,
			MetricsPath: c.cfg.Metrics.Path,
			Logger:      c.log,
			Scans:       sched,
		}
		if db != nil {
			hc.DB = db
		}
		server := health.NewServer(hc)
		if err := server.Start(ctx); err != nil {
			return err
		}
		server.SetReady(true)
	}

	if c.cfg.Schedule.RunOnStart {
		sched.RunNow(ctx, scanJobName, timeout, job)
	}

	if err := sched.Start(ctx); err != nil {
		return err
	}
	c.log.WithField("next_run", sched.GetNextRun()).Info("Watching for value bets")

	<-ctx.Done()
	return sched.Stop()
}
