package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jackc/pgx/v5"
)

const createEmployersTable = `CREATE TABLE IF NOT EXISTS employers (
	employer_id    BIGINT PRIMARY KEY,
	name           VARCHAR(255) NOT NULL,
	url            TEXT,
	open_vacancies INT
)`

const createVacanciesTable = `CREATE TABLE IF NOT EXISTS vacancies (
	vacancy_id  BIGINT PRIMARY KEY,
	employer_id BIGINT REFERENCES employers(employer_id),
	name        VARCHAR(255) NOT NULL,
	salary_from INT,
	salary_to   INT,
	currency    VARCHAR(10),
	url         TEXT
)`

// CreateDatabase makes sure the target database exists. For PostgreSQL it
// connects to the admin database and issues CREATE DATABASE when the target
// is missing. For SQLite it creates the directory holding the file; the file
// itself appears on first connection.
func (s *Store) CreateDatabase(ctx context.Context) error {
	if !s.isPostgres() {
		dir := filepath.Dir(s.cfg.Path)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating database directory %s: %w", dir, err)
		}
		s.logger.Debug("sqlite database ready", "path", s.cfg.Path)
		return nil
	}

	driver, dsn, err := driverDSN(s.cfg, s.cfg.AdminDBName)
	if err != nil {
		return err
	}
	admin, err := sql.Open(driver, dsn)
	if err != nil {
		return fmt.Errorf("opening admin db %s: %w", s.cfg.AdminDBName, err)
	}
	defer admin.Close()

	var exists int
	err = admin.QueryRowContext(ctx, "SELECT 1 FROM pg_database WHERE datname = $1", s.cfg.DBName).Scan(&exists)
	switch {
	case err == nil:
		s.logger.Info("database already exists", "dbname", s.cfg.DBName)
		return nil
	case err != sql.ErrNoRows:
		return fmt.Errorf("checking database %s: %w", s.cfg.DBName, err)
	}

	// CREATE DATABASE takes no bind parameters and cannot run in a transaction.
	stmt := "CREATE DATABASE " + pgx.Identifier{s.cfg.DBName}.Sanitize()
	if _, err := admin.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("creating database %s: %w", s.cfg.DBName, err)
	}
	s.logger.Info("database created", "dbname", s.cfg.DBName)
	return nil
}

// CreateTables creates the employers and vacancies tables if they do not
// exist. Existing tables are left untouched.
func (s *Store) CreateTables(ctx context.Context) error {
	return s.withConn(ctx, func(conn *sql.Conn) error {
		for _, stmt := range []string{createEmployersTable, createVacanciesTable} {
			if _, err := conn.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("creating tables: %w", err)
			}
		}
		return nil
	})
}
