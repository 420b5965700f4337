package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/amishk599/vacancydb/internal/notifier"
)

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Notification subcommands",
}

var notifyTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Send a test notification",
	Long:  "Sends a test run summary using the configured notifier.",
	RunE:  runNotifyTest,
}

func init() {
	rootCmd.AddCommand(notifyCmd)
	notifyCmd.AddCommand(notifyTestCmd)
}

func runNotifyTest(cmd *cobra.Command, args []string) error {
	logger := setupLogger(os.Stderr, debug)
	cfg := mustLoadConfig(logger)

	n, closeNotifier, err := setupNotifier(cfg, newHTTPClient(cfg), logger)
	if err != nil {
		return fmt.Errorf("set up notifier: %w", err)
	}
	defer closeNotifier()

	if err := notifier.SendTestMessage(n); err != nil {
		return fmt.Errorf("test notification failed: %w", err)
	}
	logger.Info("test notification sent successfully", "type", cfg.Notification.Type)
	return nil
}
