package store

import (
	"context"

	"github.com/amishk599/vacancydb/internal/model"
)

// NopStore is a no-op schema initializer and writer used in dry-run mode.
// Fetched data is discarded and no database is touched.
type NopStore struct{}

func NewNopStore() *NopStore { return &NopStore{} }

func (s *NopStore) CreateDatabase(ctx context.Context) error { return nil }
func (s *NopStore) CreateTables(ctx context.Context) error   { return nil }
func (s *NopStore) Save(ctx context.Context, employers []model.Employer, vacancies []model.Vacancy) error {
	return nil
}
