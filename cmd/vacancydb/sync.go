package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/amishk599/vacancydb/internal/scheduler"
)

var scheduleSpec string

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Fetch and store vacancies without opening the menu",
	Long: "Runs the fetch-and-store pipeline once, or repeatedly on a cron schedule when\n" +
		"--schedule (or `schedule:` in the config) is set. Blocks until SIGINT/SIGTERM in that case.",
	RunE: runSync,
}

func init() {
	syncCmd.Flags().StringVar(&scheduleSpec, "schedule", "", "cron spec for repeated runs, e.g. \"0 */6 * * *\" or \"@every 1h\"")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	logger := setupLogger(os.Stderr, debug)
	cfg := mustLoadConfig(logger)

	st, err := openStore(cfg, logger)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	p, closeNotifier, err := buildPipeline(cfg, st, false, logger)
	if err != nil {
		return fmt.Errorf("set up notifier: %w", err)
	}
	defer closeNotifier()

	ctx, stop := signalContext()
	defer stop()

	spec := cfg.Schedule
	if scheduleSpec != "" {
		spec = scheduleSpec
	}
	if spec == "" {
		if _, err := p.Run(ctx); err != nil {
			return fmt.Errorf("sync: %w", err)
		}
		return nil
	}

	logger.Info("scheduled sync", "schedule", spec)
	sched := scheduler.NewScheduler(spec, p, logger)
	if err := sched.Run(ctx); err != nil {
		return err
	}
	logger.Info("goodbye")
	return nil
}
