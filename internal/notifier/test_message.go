package notifier

import (
	"time"

	"github.com/amishk599/vacancydb/internal/model"
)

// SendTestMessage sends a dummy run summary to verify the integration works.
func SendTestMessage(n model.Notifier) error {
	return n.Notify(model.RunSummary{
		RunID:     "test-notification",
		Employers: 1,
		Vacancies: 42,
		DryRun:    true,
		StartedAt: time.Now(),
		Duration:  1500 * time.Millisecond,
	})
}
