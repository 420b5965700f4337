package notifier

import (
	"log/slog"
	"time"

	"github.com/amishk599/vacancydb/internal/model"
)

// Ensure LogNotifier implements model.Notifier.
var _ model.Notifier = (*LogNotifier)(nil)

// LogNotifier writes run summaries to the given logger as structured messages.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs the summary. Returns nil (logging does not fail).
func (n *LogNotifier) Notify(s model.RunSummary) error {
	n.logger.Info("sync finished",
		"run_id", s.RunID,
		"employers", s.Employers,
		"vacancies", s.Vacancies,
		"dry_run", s.DryRun,
		"started_at", s.StartedAt.Format(time.RFC3339),
		"duration", s.Duration.Round(time.Millisecond),
	)
	return nil
}
