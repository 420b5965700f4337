package main

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/amishk599/vacancydb/internal/config"
	"github.com/amishk599/vacancydb/internal/hh"
	"github.com/amishk599/vacancydb/internal/model"
	"github.com/amishk599/vacancydb/internal/notifier"
	"github.com/amishk599/vacancydb/internal/pipeline"
	"github.com/amishk599/vacancydb/internal/secrets"
	"github.com/amishk599/vacancydb/internal/store"
	"github.com/amishk599/vacancydb/internal/tui"
)

var (
	cfgPath string
	section string
	envFile string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "vacancydb",
	Short: "Collect hh.ru vacancies into a database and query them",
	Long: "vacancydb fetches employers and their open vacancies from the hh.ru API,\n" +
		"stores them in PostgreSQL or SQLite, and offers a console menu over the data.",
	// Bare `vacancydb` behaves like `vacancydb run`.
	RunE:         runRun,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadEnvFile(envFile)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: VACANCYDB_CONFIG env var or ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&section, "section", config.DefaultSection, "database section of the config file to use")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before the config is read (ignored if missing)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	addRunFlags(rootCmd)
}

// loadEnvFile primes the environment from path. Variables already set win.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// loadConfig resolves the config path and parses it.
// Priority: explicit path arg > VACANCYDB_CONFIG env var > "./config.yaml"
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		if env := os.Getenv("VACANCYDB_CONFIG"); env != "" {
			path = env
		} else {
			path = "config.yaml"
		}
	}
	return config.Load(path, section)
}

// mustLoadConfig exits with status 1 when the config cannot be loaded.
func mustLoadConfig(logger *slog.Logger) *config.Config {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	return cfg
}

func setupLogger(w io.Writer, dbg bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: logLevel}))
}

func setupNotifier(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) (model.Notifier, func(), error) {
	switch cfg.Notification.Type {
	case "slack":
		logger.Info("using slack notifier")
		return notifier.NewSlackNotifier(cfg.Notification.WebhookURL, httpClient, logger), func() {}, nil
	case "redis":
		n, err := notifier.NewRedisNotifier(cfg.Notification.RedisURL, cfg.Notification.Channel, logger)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("using redis notifier", "channel", cfg.Notification.Channel)
		return n, func() { _ = n.Close() }, nil
	default:
		return notifier.NewLogNotifier(logger), func() {}, nil
	}
}

func newHTTPClient(cfg *config.Config) *http.Client {
	return &http.Client{Timeout: cfg.API.Timeout}
}

func newFetcher(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) *hh.Client {
	userAgent := cfg.API.UserAgent
	if userAgent == "" {
		userAgent = "vacancydb/" + version
	}
	return hh.NewClient(hh.Config{
		BaseURL:    cfg.API.BaseURL,
		UserAgent:  userAgent,
		PerPage:    cfg.API.PerPage,
		HTTPClient: httpClient,
	}, logger)
}

// openStore resolves the database password (config, then keyring) and
// prepares the connection pool.
func openStore(cfg *config.Config, logger *slog.Logger) (*store.Store, error) {
	dbCfg := cfg.Database
	pw, err := secrets.DatabasePassword(dbCfg)
	if err != nil {
		return nil, err
	}
	dbCfg.Password = pw
	return store.Open(dbCfg, logger)
}

// buildPipeline wires a pipeline that writes through db. The returned func
// releases the notifier.
func buildPipeline(cfg *config.Config, db storeBackend, dryRun bool, logger *slog.Logger) (*pipeline.Pipeline, func(), error) {
	httpClient := newHTTPClient(cfg)
	n, closeNotifier, err := setupNotifier(cfg, httpClient, logger)
	if err != nil {
		return nil, nil, err
	}
	fetcher := newFetcher(cfg, httpClient, logger)
	p := pipeline.New(cfg.EmployerIDs(), fetcher, db, db, n, logger).WithDryRun(dryRun)
	return p, closeNotifier, nil
}

// storeBackend is satisfied by *store.Store and *store.NopStore.
type storeBackend interface {
	model.SchemaInitializer
	model.Writer
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

// interactive reports whether stdin and stdout are both terminals.
func interactive() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) && isatty.IsTerminal(os.Stdout.Fd())
}

// syncOnce runs p once. On an interactive terminal a spinner is shown while
// it runs and log lines written through held are released afterwards.
func syncOnce(ctx context.Context, p *pipeline.Pipeline, held *heldWriter) (model.RunSummary, error) {
	if held == nil {
		return p.Run(ctx)
	}

	var summary model.RunSummary
	err := tui.RunLoader(ctx, "Syncing vacancies from hh.ru", func(ctx context.Context) error {
		var err error
		summary, err = p.Run(ctx)
		return err
	})
	_ = held.Release()
	return summary, err
}
