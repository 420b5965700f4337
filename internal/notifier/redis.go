package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/amishk599/vacancydb/internal/model"
)

// Ensure RedisNotifier implements model.Notifier.
var _ model.Notifier = (*RedisNotifier)(nil)

const (
	syncEventType  = "EVENT_SYNC_COMPLETED"
	publishTimeout = 5 * time.Second
)

// RedisNotifier publishes run summaries as JSON events on a Redis channel.
type RedisNotifier struct {
	client  *redis.Client
	channel string
	logger  *slog.Logger
}

// NewRedisNotifier parses redisURL and returns a notifier publishing to
// channel. The connection is made lazily on first publish.
func NewRedisNotifier(redisURL, channel string, logger *slog.Logger) (*RedisNotifier, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL(%q): %w", redisURL, err)
	}
	return &RedisNotifier{
		client:  redis.NewClient(opts),
		channel: channel,
		logger:  logger,
	}, nil
}

type syncEvent struct {
	Type       string    `json:"type"`
	RunID      string    `json:"runId"`
	Employers  int       `json:"employers"`
	Vacancies  int       `json:"vacancies"`
	DryRun     bool      `json:"dryRun"`
	StartedAt  time.Time `json:"startedAt"`
	DurationMS int64     `json:"durationMs"`
}

// Notify publishes the summary. Having no subscribers is not an error.
func (n *RedisNotifier) Notify(s model.RunSummary) error {
	event, err := json.Marshal(syncEvent{
		Type:       syncEventType,
		RunID:      s.RunID,
		Employers:  s.Employers,
		Vacancies:  s.Vacancies,
		DryRun:     s.DryRun,
		StartedAt:  s.StartedAt,
		DurationMS: s.Duration.Milliseconds(),
	})
	if err != nil {
		return fmt.Errorf("marshal sync event: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	receivers, err := n.client.Publish(ctx, n.channel, event).Result()
	if err != nil {
		return fmt.Errorf("publish %s: %w", n.channel, err)
	}
	n.logger.Info("sync event published", "channel", n.channel, "run_id", s.RunID, "receivers", receivers)
	return nil
}

// Close releases the underlying Redis connections.
func (n *RedisNotifier) Close() error {
	return n.client.Close()
}
