package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/amishk599/vacancydb/internal/console"
	"github.com/amishk599/vacancydb/internal/store"
)

var (
	dryRun bool
	noMenu bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Sync vacancies, then open the query menu",
	Long: "Fetches the configured employers and their vacancies, stores them, and opens the\n" +
		"numbered query menu. This is the default when no command is given.",
	RunE: runRun,
}

func init() {
	addRunFlags(runCmd)
	rootCmd.AddCommand(runCmd)
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "fetch only; write nothing and skip the menu")
	cmd.Flags().BoolVar(&noMenu, "no-menu", false, "exit after the sync instead of opening the menu")
}

func runRun(cmd *cobra.Command, args []string) error {
	logger := setupLogger(os.Stderr, debug)
	cfg := mustLoadConfig(logger)

	logger.Info("config loaded",
		"employers", len(cfg.Employers),
		"driver", cfg.Database.Driver,
		"notification", cfg.Notification.Type,
	)

	// While the spinner owns the terminal, log lines are held back.
	var held *heldWriter
	syncLogger := logger
	if interactive() {
		held = newHeldWriter(os.Stderr)
		syncLogger = setupLogger(held, debug)
	}

	var (
		db storeBackend
		st *store.Store
	)
	if dryRun {
		logger.Info("dry-run mode enabled, nothing will be written")
		db = store.NewNopStore()
	} else {
		var err error
		st, err = openStore(cfg, syncLogger)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer st.Close()
		db = st
	}

	p, closeNotifier, err := buildPipeline(cfg, db, dryRun, syncLogger)
	if err != nil {
		return fmt.Errorf("set up notifier: %w", err)
	}
	defer closeNotifier()

	ctx, stop := signalContext()
	summary, err := syncOnce(ctx, p, held)
	// The menu blocks on stdin; let ctrl+c terminate the process again.
	stop()
	if err != nil {
		return fmt.Errorf("sync: %w", err)
	}
	logger.Info("sync complete",
		"run_id", summary.RunID,
		"employers", summary.Employers,
		"vacancies", summary.Vacancies,
	)

	if dryRun || noMenu {
		return nil
	}
	return console.New(st, os.Stdin, os.Stdout).Run(cmd.Context())
}
