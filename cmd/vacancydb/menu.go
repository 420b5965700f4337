package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/amishk599/vacancydb/internal/console"
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Open the query menu over already stored data",
	RunE:  runMenu,
}

func init() {
	rootCmd.AddCommand(menuCmd)
}

func runMenu(cmd *cobra.Command, args []string) error {
	logger := setupLogger(os.Stderr, debug)
	cfg := mustLoadConfig(logger)

	st, err := openStore(cfg, logger)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	ctx := cmd.Context()
	if err := st.Ping(ctx); err != nil {
		return err
	}
	return console.New(st, os.Stdin, os.Stdout).Run(ctx)
}
