package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/amishk599/vacancydb/internal/model"
)

// Pipeline owns one full refresh:
// fetch employers → fetch vacancies → create database → create tables → save → notify.
type Pipeline struct {
	employerIDs []string
	fetcher     model.Fetcher
	schema      model.SchemaInitializer
	writer      model.Writer
	notifier    model.Notifier
	dryRun      bool
	logger      *slog.Logger
}

// New creates a pipeline wired with all its dependencies.
func New(
	employerIDs []string,
	fetcher model.Fetcher,
	schema model.SchemaInitializer,
	writer model.Writer,
	notifier model.Notifier,
	logger *slog.Logger,
) *Pipeline {
	return &Pipeline{
		employerIDs: employerIDs,
		fetcher:     fetcher,
		schema:      schema,
		writer:      writer,
		notifier:    notifier,
		logger:      logger,
	}
}

// WithDryRun marks summaries produced by p as dry runs.
func (p *Pipeline) WithDryRun(dryRun bool) *Pipeline {
	p.dryRun = dryRun
	return p
}

// Run executes one refresh. Fetch failures for individual employers or pages
// are absorbed by the fetcher; database failures abort the run. A failing
// notifier is logged and does not fail the run.
func (p *Pipeline) Run(ctx context.Context) (model.RunSummary, error) {
	summary := model.RunSummary{
		RunID:     uuid.NewString(),
		DryRun:    p.dryRun,
		StartedAt: time.Now(),
	}
	logger := p.logger.With("run_id", summary.RunID)

	employers, err := p.fetcher.FetchEmployers(ctx, p.employerIDs)
	if err != nil {
		return summary, fmt.Errorf("fetching employers: %w", err)
	}
	logger.Info("employers fetched", "requested", len(p.employerIDs), "fetched", len(employers))

	// Vacancies are only collected for employers that will be stored, so every
	// saved vacancy has its employer row.
	fetchedIDs := make([]string, len(employers))
	for i, e := range employers {
		fetchedIDs[i] = strconv.FormatInt(e.ID, 10)
	}
	vacancies, err := p.fetcher.FetchAllVacancies(ctx, fetchedIDs)
	if err != nil {
		return summary, fmt.Errorf("fetching vacancies: %w", err)
	}
	logger.Info("vacancies fetched", "count", len(vacancies))

	if err := p.schema.CreateDatabase(ctx); err != nil {
		return summary, fmt.Errorf("creating database: %w", err)
	}
	if err := p.schema.CreateTables(ctx); err != nil {
		return summary, fmt.Errorf("creating tables: %w", err)
	}
	if err := p.writer.Save(ctx, employers, vacancies); err != nil {
		return summary, fmt.Errorf("saving: %w", err)
	}

	summary.Employers = len(employers)
	summary.Vacancies = len(vacancies)
	summary.Duration = time.Since(summary.StartedAt)

	if err := p.notifier.Notify(summary); err != nil {
		logger.Warn("notify failed", "error", err)
	}

	logger.Info("run complete",
		"employers", summary.Employers,
		"vacancies", summary.Vacancies,
		"dry_run", summary.DryRun,
		"duration", summary.Duration.Round(time.Millisecond),
	)
	return summary, nil
}
