package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/amishk599/vacancydb/internal/model"
)

const upsertEmployer = `INSERT INTO employers (employer_id, name, url, open_vacancies)
VALUES ($1, $2, $3, $4)
ON CONFLICT (employer_id) DO UPDATE SET
	name = EXCLUDED.name,
	url = EXCLUDED.url,
	open_vacancies = EXCLUDED.open_vacancies`

const upsertVacancy = `INSERT INTO vacancies (vacancy_id, employer_id, name, salary_from, salary_to, currency, url)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (vacancy_id) DO UPDATE SET
	employer_id = EXCLUDED.employer_id,
	name = EXCLUDED.name,
	salary_from = EXCLUDED.salary_from,
	salary_to = EXCLUDED.salary_to,
	currency = EXCLUDED.currency,
	url = EXCLUDED.url`

// Save upserts employers and then vacancies, each batch in its own
// transaction. A failure rolls back only the batch it happened in; an
// employer batch committed before a failing vacancy batch stays committed.
func (s *Store) Save(ctx context.Context, employers []model.Employer, vacancies []model.Vacancy) error {
	return s.withConn(ctx, func(conn *sql.Conn) error {
		if err := s.saveEmployers(ctx, conn, employers); err != nil {
			return err
		}
		return s.saveVacancies(ctx, conn, vacancies)
	})
}

func (s *Store) saveEmployers(ctx context.Context, conn *sql.Conn, employers []model.Employer) error {
	if len(employers) == 0 {
		return nil
	}
	err := inTx(ctx, conn, upsertEmployer, func(stmt *sql.Stmt) error {
		for _, e := range employers {
			if _, err := stmt.ExecContext(ctx, e.ID, e.Name, e.URL, e.OpenVacancies); err != nil {
				return fmt.Errorf("employer %d: %w", e.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("saving employers: %w", err)
	}
	s.logger.Info("employers saved", "count", len(employers))
	return nil
}

func (s *Store) saveVacancies(ctx context.Context, conn *sql.Conn, vacancies []model.Vacancy) error {
	if len(vacancies) == 0 {
		return nil
	}
	err := inTx(ctx, conn, upsertVacancy, func(stmt *sql.Stmt) error {
		for _, v := range vacancies {
			_, err := stmt.ExecContext(ctx,
				v.ID, v.EmployerID, v.Title,
				nullInt(v.SalaryFrom), nullInt(v.SalaryTo), nullString(v.Currency),
				v.URL,
			)
			if err != nil {
				return fmt.Errorf("vacancy %d: %w", v.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("saving vacancies: %w", err)
	}
	s.logger.Info("vacancies saved", "count", len(vacancies))
	return nil
}

// inTx prepares query inside a new transaction on conn and commits when fn
// succeeds.
func inTx(ctx context.Context, conn *sql.Conn, query string, fn func(stmt *sql.Stmt) error) error {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	if err := fn(stmt); err != nil {
		return err
	}
	return tx.Commit()
}

func nullInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

func nullString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}
