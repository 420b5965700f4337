package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var employersCmd = &cobra.Command{
	Use:   "employers",
	Short: "List all configured employers",
	Long:  "Reads the config and prints a table of the employer IDs that are synced.",
	RunE:  runEmployers,
}

func init() {
	rootCmd.AddCommand(employersCmd)
}

func runEmployers(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("%-12s %s\n", "ID", "Name")
	fmt.Println(strings.Repeat("─", 36))

	for _, e := range cfg.Employers {
		name := e.Name
		if name == "" {
			name = "-"
		}
		fmt.Printf("%-12s %s\n", e.ID, name)
	}

	fmt.Printf("\nTotal: %d employers\n", len(cfg.Employers))
	return nil
}
