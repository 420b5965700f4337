package secrets

import (
	"testing"

	"github.com/amishk599/vacancydb/internal/config"
	"github.com/zalando/go-keyring"
)

func TestDatabasePassword_ConfigWins(t *testing.T) {
	keyring.MockInit()
	if err := SetDatabasePassword("acct", "from-keyring"); err != nil {
		t.Fatal(err)
	}

	pw, err := DatabasePassword(config.DatabaseConfig{Password: "inline", KeyringAccount: "acct"})
	if err != nil {
		t.Fatalf("DatabasePassword: %v", err)
	}
	if pw != "inline" {
		t.Errorf("pw = %q, want inline", pw)
	}
}

func TestDatabasePassword_FromKeyring(t *testing.T) {
	keyring.MockInit()
	if err := SetDatabasePassword("acct", "from-keyring"); err != nil {
		t.Fatal(err)
	}

	pw, err := DatabasePassword(config.DatabaseConfig{KeyringAccount: "acct"})
	if err != nil {
		t.Fatalf("DatabasePassword: %v", err)
	}
	if pw != "from-keyring" {
		t.Errorf("pw = %q, want from-keyring", pw)
	}
}

func TestDatabasePassword_NoneConfigured(t *testing.T) {
	keyring.MockInit()

	pw, err := DatabasePassword(config.DatabaseConfig{})
	if err != nil {
		t.Fatalf("DatabasePassword: %v", err)
	}
	if pw != "" {
		t.Errorf("pw = %q, want empty", pw)
	}
}

func TestDatabasePassword_MissingEntry(t *testing.T) {
	keyring.MockInit()

	if _, err := DatabasePassword(config.DatabaseConfig{KeyringAccount: "nobody"}); err == nil {
		t.Fatal("expected error for missing keyring entry")
	}
}

func TestDeleteDatabasePassword(t *testing.T) {
	keyring.MockInit()
	if err := SetDatabasePassword("acct", "pw"); err != nil {
		t.Fatal(err)
	}
	if err := DeleteDatabasePassword("acct"); err != nil {
		t.Fatalf("DeleteDatabasePassword: %v", err)
	}
	if _, err := DatabasePassword(config.DatabaseConfig{KeyringAccount: "acct"}); err == nil {
		t.Fatal("expected error after delete")
	}
}

func TestSetDatabasePassword_Validation(t *testing.T) {
	keyring.MockInit()
	if err := SetDatabasePassword(" ", "pw"); err == nil {
		t.Error("expected error for empty account")
	}
	if err := SetDatabasePassword("acct", ""); err == nil {
		t.Error("expected error for empty password")
	}
}

func TestDefaultAccount(t *testing.T) {
	got := DefaultAccount(config.DatabaseConfig{Driver: "postgres", User: "app", Host: "db", DBName: "hh_jobs"})
	if got != "vacancydb:postgres:app@db/hh_jobs" {
		t.Errorf("DefaultAccount = %q", got)
	}
}
