package secrets

import (
	"errors"
	"fmt"
	"strings"

	"github.com/amishk599/vacancydb/internal/config"
	"github.com/zalando/go-keyring"
)

// KeyringService groups vacancydb entries in the OS keychain.
const KeyringService = "vacancydb"

// DatabasePassword returns the password to connect with. A password set in
// the config wins; otherwise the keyring entry for cfg.KeyringAccount is
// read. An empty result with a nil error means no password is configured.
func DatabasePassword(cfg config.DatabaseConfig) (string, error) {
	if cfg.Password != "" {
		return cfg.Password, nil
	}
	account := strings.TrimSpace(cfg.KeyringAccount)
	if account == "" {
		return "", nil
	}

	pw, err := keyring.Get(KeyringService, account)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", fmt.Errorf("database password for %q not found in keyring (run `vacancydb secret set`)", account)
	}
	if err != nil {
		return "", fmt.Errorf("read keyring: %w", err)
	}
	return pw, nil
}

func SetDatabasePassword(account, password string) error {
	if strings.TrimSpace(account) == "" {
		return errors.New("keyring account name is empty")
	}
	if strings.TrimSpace(password) == "" {
		return errors.New("password is empty")
	}
	return keyring.Set(KeyringService, account, password)
}

func DeleteDatabasePassword(account string) error {
	if strings.TrimSpace(account) == "" {
		return errors.New("keyring account name is empty")
	}
	return keyring.Delete(KeyringService, account)
}

// DefaultAccount derives a keyring account name from the connection target.
func DefaultAccount(cfg config.DatabaseConfig) string {
	return fmt.Sprintf("vacancydb:%s:%s@%s/%s", cfg.Driver, cfg.User, cfg.Host, cfg.DBName)
}
