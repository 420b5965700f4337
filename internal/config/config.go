package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// DefaultSection is the key of the database section read when none is given.
const DefaultSection = "postgresql"

// ErrNotFound is matched (via errors.Is) by every NotFoundError.
var ErrNotFound = errors.New("config not found")

// NotFoundError is returned by Load when the config file or the requested
// database section does not exist.
type NotFoundError struct {
	Path    string
	Section string // empty when the file itself is missing
}

func (e *NotFoundError) Error() string {
	if e.Section == "" {
		return fmt.Sprintf("config file %s not found", e.Path)
	}
	return fmt.Sprintf("section %s not found in the %s file", e.Section, e.Path)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// Config is the root configuration for vacancydb.
type Config struct {
	Employers    []EmployerConfig
	API          APIConfig
	Notification NotificationConfig
	Schedule     string // cron spec for `sync`; empty means run once
	Database     DatabaseConfig
}

// EmployerIDs returns the configured employer IDs in order.
func (c *Config) EmployerIDs() []string {
	ids := make([]string, len(c.Employers))
	for i, e := range c.Employers {
		ids[i] = e.ID
	}
	return ids
}

// EmployerConfig names one employer whose vacancies are collected.
type EmployerConfig struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"` // informational only; the stored name comes from the API
}

// APIConfig controls the job-board HTTP client.
type APIConfig struct {
	BaseURL   string
	UserAgent string
	PerPage   int
	Timeout   time.Duration
}

// NotificationConfig controls which notifier is used and its settings.
type NotificationConfig struct {
	Type       string `yaml:"type"`        // "log", "slack" or "redis"
	WebhookURL string `yaml:"webhook_url"` // required if type is "slack"
	RedisURL   string `yaml:"redis_url"`   // required if type is "redis"
	Channel    string `yaml:"channel"`
}

// DatabaseConfig holds connection parameters for one named database section.
type DatabaseConfig struct {
	Driver         string // "postgres" or "sqlite"
	Host           string
	Port           int
	User           string
	Password       string
	KeyringAccount string // keyring entry consulted when Password is empty
	DBName         string
	AdminDBName    string // database used to issue CREATE DATABASE
	SSLMode        string
	MaxConns       int
	Path           string // sqlite file
}

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	defaultBaseURL        = "https://api.hh.ru"
	defaultPerPage        = 100
	defaultTimeout        = 30 * time.Second
	defaultRedisChannel   = "vacancydb:sync"
	slackWebhookURLPrefix = "https://hooks.slack.com/"
)

// DefaultEmployers is used when the config lists no employers.
var DefaultEmployers = []EmployerConfig{
	{ID: "1740", Name: "Yandex"},
	{ID: "3529", Name: "Sber"},
	{ID: "15478", Name: "VK"},
	{ID: "7863", Name: "Tinkoff"},
	{ID: "1057", Name: "Kaspersky"},
	{ID: "2180", Name: "Alfa-Bank"},
	{ID: "3776", Name: "MTS"},
	{ID: "1122401", Name: "Skyeng"},
	{ID: "7172", Name: "Ozon"},
	{ID: "84552", Name: "Avito"},
}

// rawConfig is used for YAML unmarshaling (snake_case fields and duration as string).
type rawConfig struct {
	Employers    []EmployerConfig   `yaml:"employers"`
	API          rawAPIConfig       `yaml:"api"`
	Notification NotificationConfig `yaml:"notification"`
	Schedule     string             `yaml:"schedule"`
}

type rawAPIConfig struct {
	BaseURL   string `yaml:"base_url"`
	UserAgent string `yaml:"user_agent"`
	PerPage   int    `yaml:"per_page"`
	Timeout   string `yaml:"timeout"`
}

type rawDatabaseConfig struct {
	Driver         string `yaml:"driver"`
	Host           string `yaml:"host"`
	Port           string `yaml:"port"`
	User           string `yaml:"user"`
	Password       string `yaml:"password"`
	KeyringAccount string `yaml:"keyring_account"`
	DBName         string `yaml:"dbname"`
	AdminDBName    string `yaml:"admin_dbname"`
	SSLMode        string `yaml:"sslmode"`
	MaxConns       int    `yaml:"max_conns"`
	Path           string `yaml:"path"`
}

// Load reads the YAML config file at path, extracts the database parameters
// from the named section, validates everything, and returns Config.
func Load(path, section string) (*Config, error) {
	if section == "" {
		section = DefaultSection
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &NotFoundError{Path: path}
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables
	expanded := []byte(os.ExpandEnv(string(data)))

	var sections map[string]yaml.Node
	if err := yaml.Unmarshal(expanded, &sections); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	node, ok := sections[section]
	if !ok {
		return nil, &NotFoundError{Path: path, Section: section}
	}

	var raw rawConfig
	if err := yaml.Unmarshal(expanded, &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	var rawDB rawDatabaseConfig
	if err := node.Decode(&rawDB); err != nil {
		return nil, fmt.Errorf("parse section %s: %w", section, err)
	}

	timeout := defaultTimeout
	if raw.API.Timeout != "" {
		timeout, err = time.ParseDuration(raw.API.Timeout)
		if err != nil {
			return nil, fmt.Errorf("parse api.timeout %q: %w", raw.API.Timeout, err)
		}
	}

	db, err := buildDatabase(rawDB, section)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Employers: raw.Employers,
		API: APIConfig{
			BaseURL:   strings.TrimRight(raw.API.BaseURL, "/"),
			UserAgent: raw.API.UserAgent,
			PerPage:   raw.API.PerPage,
			Timeout:   timeout,
		},
		Notification: raw.Notification,
		Schedule:     strings.TrimSpace(raw.Schedule),
		Database:     db,
	}
	if len(cfg.Employers) == 0 {
		cfg.Employers = append([]EmployerConfig(nil), DefaultEmployers...)
	}
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = defaultBaseURL
	}
	if cfg.API.PerPage == 0 {
		cfg.API.PerPage = defaultPerPage
	}
	if cfg.Notification.Type == "" {
		cfg.Notification.Type = "log"
	}
	if cfg.Notification.Type == "redis" && cfg.Notification.Channel == "" {
		cfg.Notification.Channel = defaultRedisChannel
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func buildDatabase(raw rawDatabaseConfig, section string) (DatabaseConfig, error) {
	db := DatabaseConfig{
		Driver:         strings.ToLower(raw.Driver),
		Host:           raw.Host,
		User:           raw.User,
		Password:       raw.Password,
		KeyringAccount: raw.KeyringAccount,
		DBName:         raw.DBName,
		AdminDBName:    raw.AdminDBName,
		SSLMode:        raw.SSLMode,
		MaxConns:       raw.MaxConns,
		Path:           raw.Path,
	}
	if db.Driver == "" || db.Driver == "postgresql" {
		db.Driver = DriverPostgres
	}

	switch db.Driver {
	case DriverPostgres:
		if db.Host == "" {
			db.Host = "localhost"
		}
		db.Port = 5432
		if raw.Port != "" {
			port, err := strconv.Atoi(raw.Port)
			if err != nil {
				return db, fmt.Errorf("parse %s.port %q: %w", section, raw.Port, err)
			}
			db.Port = port
		}
		if db.AdminDBName == "" {
			db.AdminDBName = "postgres"
		}
		if db.SSLMode == "" {
			db.SSLMode = "disable"
		}
		if db.MaxConns == 0 {
			db.MaxConns = 4
		}
	case DriverSQLite:
		// a single connection keeps writers from tripping over SQLITE_BUSY
		if db.MaxConns == 0 {
			db.MaxConns = 1
		}
	}
	return db, nil
}

func validate(cfg *Config) error {
	for i, e := range cfg.Employers {
		if _, err := strconv.ParseInt(e.ID, 10, 64); err != nil {
			return fmt.Errorf("employers[%d].id must be a decimal ID, got %q", i, e.ID)
		}
	}

	if cfg.API.PerPage < 1 || cfg.API.PerPage > 100 {
		return fmt.Errorf("api.per_page must be between 1 and 100, got %d", cfg.API.PerPage)
	}
	if cfg.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be positive, got %v", cfg.API.Timeout)
	}

	db := cfg.Database
	switch db.Driver {
	case DriverPostgres:
		if db.DBName == "" {
			return fmt.Errorf("dbname is required for the postgres driver")
		}
		if db.User == "" {
			return fmt.Errorf("user is required for the postgres driver")
		}
		if db.Port <= 0 || db.Port > 65535 {
			return fmt.Errorf("port must be between 1 and 65535, got %d", db.Port)
		}
	case DriverSQLite:
		if db.Path == "" {
			return fmt.Errorf("path is required for the sqlite driver")
		}
		// The path becomes a file: URI; these would start its query or fragment.
		if strings.ContainsAny(db.Path, "?#") {
			return fmt.Errorf("sqlite path must not contain '?' or '#', got %q", db.Path)
		}
	default:
		return fmt.Errorf("unsupported database driver %q (want %q or %q)", db.Driver, DriverPostgres, DriverSQLite)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("max_conns must be positive, got %d", db.MaxConns)
	}

	switch cfg.Notification.Type {
	case "log":
	case "slack":
		if cfg.Notification.WebhookURL == "" {
			return fmt.Errorf("notification.webhook_url is required when type is \"slack\"")
		}
		if !strings.HasPrefix(cfg.Notification.WebhookURL, slackWebhookURLPrefix) {
			return fmt.Errorf("notification.webhook_url must start with %s", slackWebhookURLPrefix)
		}
	case "redis":
		if cfg.Notification.RedisURL == "" {
			return fmt.Errorf("notification.redis_url is required when type is \"redis\"")
		}
	default:
		return fmt.Errorf("unknown notification.type %q", cfg.Notification.Type)
	}

	if cfg.Schedule != "" {
		if _, err := cron.ParseStandard(cfg.Schedule); err != nil {
			return fmt.Errorf("parse schedule %q: %w", cfg.Schedule, err)
		}
	}

	return nil
}
