package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/amishk599/vacancydb/internal/config"
	"github.com/amishk599/vacancydb/internal/secrets"
)

var secretAccount string

var secretCmd = &cobra.Command{
	Use:   "secret",
	Short: "Manage the database password stored in the OS keyring",
}

var secretSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Store the database password in the keyring",
	Long: "Reads the password from the first line of stdin and stores it under --account\n" +
		"(default: keyring_account from the config, or one derived from the connection).",
	RunE: runSecretSet,
}

var secretDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Remove the database password from the keyring",
	RunE:  runSecretDelete,
}

func init() {
	secretCmd.PersistentFlags().StringVar(&secretAccount, "account", "", "keyring account name")
	secretCmd.AddCommand(secretSetCmd, secretDeleteCmd)
	rootCmd.AddCommand(secretCmd)
}

// resolveAccount picks --account, then the config's keyring_account, then a
// name derived from the connection target.
func resolveAccount() (string, error) {
	if secretAccount != "" {
		return secretAccount, nil
	}
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return "", err
	}
	if cfg.Database.Driver != config.DriverPostgres {
		return "", fmt.Errorf("section %s uses %s, which takes no password", section, cfg.Database.Driver)
	}
	if cfg.Database.KeyringAccount != "" {
		return cfg.Database.KeyringAccount, nil
	}
	return secrets.DefaultAccount(cfg.Database), nil
}

func runSecretSet(cmd *cobra.Command, args []string) error {
	account, err := resolveAccount()
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Password for %s: ", account)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return fmt.Errorf("read password: %w", err)
	}
	password := strings.TrimRight(line, "\r\n")

	if err := secrets.SetDatabasePassword(account, password); err != nil {
		return err
	}
	fmt.Printf("Stored password for %s\n", account)
	return nil
}

func runSecretDelete(cmd *cobra.Command, args []string) error {
	account, err := resolveAccount()
	if err != nil {
		return err
	}
	if err := secrets.DeleteDatabasePassword(account); err != nil {
		return err
	}
	fmt.Printf("Deleted password for %s\n", account)
	return nil
}
