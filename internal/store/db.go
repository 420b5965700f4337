package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"modernc.org/sqlite"

	"github.com/amishk599/vacancydb/internal/config"
)

// lowerFunc is available in every SQLite connection. SQLite's own lower()
// and LIKE fold ASCII only, which misses Cyrillic titles.
const lowerFunc = "vdb_lower"

func init() {
	sqlite.MustRegisterDeterministicScalarFunction(lowerFunc, 1,
		func(ctx *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
			switch v := args[0].(type) {
			case nil:
				return nil, nil
			case string:
				return strings.ToLower(v), nil
			case []byte:
				return strings.ToLower(string(v)), nil
			default:
				return v, nil
			}
		})
}

// Store is the relational backing store for employers and vacancies. One
// Store serves schema creation, writes and queries; every operation borrows a
// connection from the pool for its own duration only.
type Store struct {
	db     *sql.DB
	cfg    config.DatabaseConfig
	logger *slog.Logger
}

// Open prepares a connection pool for cfg. No connection is made until the
// first operation, so Open succeeds even when the target database has not
// been created yet.
func Open(cfg config.DatabaseConfig, logger *slog.Logger) (*Store, error) {
	driver, dsn, err := driverDSN(cfg, cfg.DBName)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening %s db: %w", cfg.Driver, err)
	}
	if cfg.MaxConns > 0 {
		db.SetMaxOpenConns(cfg.MaxConns)
	}
	return &Store{db: db, cfg: cfg, logger: logger}, nil
}

// Ping verifies the target database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("pinging %s db: %w", s.cfg.Driver, err)
	}
	return nil
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) withConn(ctx context.Context, fn func(conn *sql.Conn) error) error {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquiring connection: %w", err)
	}
	defer conn.Close()
	return fn(conn)
}

func (s *Store) isPostgres() bool {
	return s.cfg.Driver == config.DriverPostgres
}

// driverDSN maps a database section onto a database/sql driver name and DSN.
// dbname overrides cfg.DBName so the admin database can be reached with the
// same credentials.
func driverDSN(cfg config.DatabaseConfig, dbname string) (string, string, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		u := url.URL{
			Scheme: "postgres",
			Host:   net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
			Path:   "/" + dbname,
		}
		if cfg.Password != "" {
			u.User = url.UserPassword(cfg.User, cfg.Password)
		} else {
			u.User = url.User(cfg.User)
		}
		q := url.Values{}
		if cfg.SSLMode != "" {
			q.Set("sslmode", cfg.SSLMode)
		}
		u.RawQuery = q.Encode()
		return "pgx", u.String(), nil
	case config.DriverSQLite:
		return "sqlite", fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", cfg.Path), nil
	default:
		return "", "", fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}
