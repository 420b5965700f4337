package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var initDBCmd = &cobra.Command{
	Use:   "init-db",
	Short: "Create the database and tables",
	Long:  "Creates the configured database if it is missing, then the employers and vacancies tables. Safe to repeat.",
	RunE:  runInitDB,
}

func init() {
	rootCmd.AddCommand(initDBCmd)
}

func runInitDB(cmd *cobra.Command, args []string) error {
	logger := setupLogger(os.Stderr, debug)
	cfg := mustLoadConfig(logger)

	st, err := openStore(cfg, logger)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	ctx, stop := signalContext()
	defer stop()

	if err := st.CreateDatabase(ctx); err != nil {
		return err
	}
	if err := st.CreateTables(ctx); err != nil {
		return err
	}
	logger.Info("schema ready", "driver", cfg.Database.Driver)
	return nil
}
