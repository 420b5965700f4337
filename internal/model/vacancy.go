package model

import (
	"context"
	"time"
)

// Employer is a company profile as published by the job board.
type Employer struct {
	ID            int64  // external employer ID
	Name          string // display name
	URL           string // public profile link (alternate_url)
	OpenVacancies int    // vacancies currently open, as reported by the board
}

// Vacancy is a single job posting owned by an Employer.
type Vacancy struct {
	ID         int64
	EmployerID int64 // employer the search was filtered by
	Title      string
	SalaryFrom *int    // nil when the board gives no lower bound
	SalaryTo   *int    // nil when the board gives no upper bound
	Currency   *string // nil when the posting has no salary block
	URL        string
}

// EmployerVacancyCount is one row of the per-employer vacancy count report.
type EmployerVacancyCount struct {
	Employer string
	Count    int
}

// VacancyRow is a vacancy joined with its employer's name, as returned by the
// listing, filtering and search queries.
type VacancyRow struct {
	Employer   string
	Title      string
	SalaryFrom *int
	SalaryTo   *int
	Currency   *string
	URL        string
}

// RunSummary describes one completed fetch-and-save run.
type RunSummary struct {
	RunID     string
	Employers int
	Vacancies int
	DryRun    bool
	StartedAt time.Time
	Duration  time.Duration
}

// Fetcher pulls employers and their vacancies from the job board.
type Fetcher interface {
	FetchEmployers(ctx context.Context, ids []string) ([]Employer, error)
	FetchAllVacancies(ctx context.Context, employerIDs []string) ([]Vacancy, error)
}

// SchemaInitializer makes sure the target database and tables exist.
type SchemaInitializer interface {
	CreateDatabase(ctx context.Context) error
	CreateTables(ctx context.Context) error
}

// Writer persists fetched records, keyed by their external IDs.
type Writer interface {
	Save(ctx context.Context, employers []Employer, vacancies []Vacancy) error
}

// Querier runs the fixed read queries over stored data.
type Querier interface {
	CountVacanciesPerEmployer(ctx context.Context) ([]EmployerVacancyCount, error)
	ListAllVacancies(ctx context.Context) ([]VacancyRow, error)
	AverageSalary(ctx context.Context) (float64, error)
	VacanciesAboveAverage(ctx context.Context) ([]VacancyRow, error)
	VacanciesMatchingKeyword(ctx context.Context, keyword string) ([]VacancyRow, error)
}

// Notifier reports the outcome of a run.
type Notifier interface {
	Notify(summary RunSummary) error
}
