package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/amishk599/vacancydb/internal/model"
)

// midpoint treats a single salary bound as both bounds.
const midpoint = `(COALESCE(v.salary_from, v.salary_to) + COALESCE(v.salary_to, v.salary_from)) / 2.0`

const selectVacancyRows = `SELECT e.name, v.name, v.salary_from, v.salary_to, v.currency, v.url
FROM vacancies v
JOIN employers e ON v.employer_id = e.employer_id`

const orderVacancyRows = ` ORDER BY e.name, v.vacancy_id`

// CountVacanciesPerEmployer returns every employer with the number of stored
// vacancies it owns, including employers with none.
func (s *Store) CountVacanciesPerEmployer(ctx context.Context) ([]model.EmployerVacancyCount, error) {
	const query = `SELECT e.name, COUNT(v.vacancy_id)
FROM employers e
LEFT JOIN vacancies v ON e.employer_id = v.employer_id
GROUP BY e.name
ORDER BY e.name`

	var counts []model.EmployerVacancyCount
	err := s.withConn(ctx, func(conn *sql.Conn) error {
		rows, err := conn.QueryContext(ctx, query)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var c model.EmployerVacancyCount
			if err := rows.Scan(&c.Employer, &c.Count); err != nil {
				return err
			}
			counts = append(counts, c)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("counting vacancies per employer: %w", err)
	}
	return counts, nil
}

// ListAllVacancies returns every stored vacancy with its employer's name.
func (s *Store) ListAllVacancies(ctx context.Context) ([]model.VacancyRow, error) {
	rows, err := s.queryVacancyRows(ctx, selectVacancyRows+orderVacancyRows)
	if err != nil {
		return nil, fmt.Errorf("listing vacancies: %w", err)
	}
	return rows, nil
}

// AverageSalary returns the mean salary midpoint over vacancies with at least
// one salary bound, or 0 when no vacancy has one.
func (s *Store) AverageSalary(ctx context.Context) (float64, error) {
	query := `SELECT CAST(AVG(` + midpoint + `) AS DOUBLE PRECISION)
FROM vacancies v
WHERE v.salary_from IS NOT NULL OR v.salary_to IS NOT NULL`

	var avg sql.NullFloat64
	err := s.withConn(ctx, func(conn *sql.Conn) error {
		return conn.QueryRowContext(ctx, query).Scan(&avg)
	})
	if err != nil {
		return 0, fmt.Errorf("computing average salary: %w", err)
	}
	if !avg.Valid {
		return 0, nil
	}
	return avg.Float64, nil
}

// VacanciesAboveAverage returns vacancies whose salary midpoint is strictly
// greater than the current AverageSalary.
func (s *Store) VacanciesAboveAverage(ctx context.Context) ([]model.VacancyRow, error) {
	avg, err := s.AverageSalary(ctx)
	if err != nil {
		return nil, err
	}
	query := selectVacancyRows + `
WHERE ` + midpoint + ` > CAST($1 AS DOUBLE PRECISION)` + orderVacancyRows

	rows, err := s.queryVacancyRows(ctx, query, avg)
	if err != nil {
		return nil, fmt.Errorf("listing vacancies above average: %w", err)
	}
	return rows, nil
}

// VacanciesMatchingKeyword returns vacancies whose title contains keyword,
// ignoring case. Wildcard characters in keyword match literally.
func (s *Store) VacanciesMatchingKeyword(ctx context.Context, keyword string) ([]model.VacancyRow, error) {
	match := `v.name ILIKE $1 ESCAPE '!'`
	if !s.isPostgres() {
		match = lowerFunc + `(v.name) LIKE ` + lowerFunc + `($1) ESCAPE '!'`
	}
	query := selectVacancyRows + `
WHERE ` + match + orderVacancyRows

	rows, err := s.queryVacancyRows(ctx, query, "%"+escapeLike(keyword)+"%")
	if err != nil {
		return nil, fmt.Errorf("searching vacancies for %q: %w", keyword, err)
	}
	return rows, nil
}

func (s *Store) queryVacancyRows(ctx context.Context, query string, args ...any) ([]model.VacancyRow, error) {
	var out []model.VacancyRow
	err := s.withConn(ctx, func(conn *sql.Conn) error {
		rows, err := conn.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var (
				r        model.VacancyRow
				from, to sql.NullInt64
				currency sql.NullString
				url      sql.NullString
			)
			if err := rows.Scan(&r.Employer, &r.Title, &from, &to, &currency, &url); err != nil {
				return err
			}
			if from.Valid {
				n := int(from.Int64)
				r.SalaryFrom = &n
			}
			if to.Valid {
				n := int(to.Int64)
				r.SalaryTo = &n
			}
			if currency.Valid {
				c := currency.String
				r.Currency = &c
			}
			r.URL = url.String
			out = append(out, r)
		}
		return rows.Err()
	})
	return out, err
}

// '!' is the LIKE escape character: it needs no quoting in either dialect.
var likeEscaper = strings.NewReplacer(`!`, `!!`, `%`, `!%`, `_`, `!_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
