package notifier

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/amishk599/vacancydb/internal/model"
)

// Ensure SlackNotifier implements model.Notifier.
var _ model.Notifier = (*SlackNotifier)(nil)

// SlackNotifier posts run summaries to a Slack channel via Incoming Webhooks.
type SlackNotifier struct {
	webhookURL string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewSlackNotifier(webhookURL string, httpClient *http.Client, logger *slog.Logger) *SlackNotifier {
	return &SlackNotifier{
		webhookURL: webhookURL,
		httpClient: httpClient,
		logger:     logger,
	}
}

// Notify sends the summary as one Block Kit message.
func (s *SlackNotifier) Notify(summary model.RunSummary) error {
	body, err := json.Marshal(buildPayload(summary))
	if err != nil {
		return fmt.Errorf("marshal slack payload: %w", err)
	}

	resp, err := s.httpClient.Post(s.webhookURL, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("post to slack: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("slack returned %d", resp.StatusCode)
	}
	s.logger.Info("slack message sent", "run_id", summary.RunID)
	return nil
}

// Block Kit payload types.

type slackPayload struct {
	Text   string       `json:"text"`
	Blocks []slackBlock `json:"blocks"`
}

type slackBlock struct {
	Type     string      `json:"type"`
	Text     *slackText  `json:"text,omitempty"`
	Fields   []slackText `json:"fields,omitempty"`
	Elements []slackText `json:"elements,omitempty"`
}

type slackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func buildPayload(s model.RunSummary) slackPayload {
	title := "Vacancy sync complete"
	if s.DryRun {
		title += " (dry run)"
	}
	fallback := fmt.Sprintf("%s: %d employers, %d vacancies", title, s.Employers, s.Vacancies)

	return slackPayload{
		Text: fallback,
		Blocks: []slackBlock{
			{
				Type: "header",
				Text: &slackText{Type: "plain_text", Text: title},
			},
			{
				Type: "section",
				Fields: []slackText{
					{Type: "mrkdwn", Text: "*Employers:*\n" + strconv.Itoa(s.Employers)},
					{Type: "mrkdwn", Text: "*Vacancies:*\n" + strconv.Itoa(s.Vacancies)},
				},
			},
			{
				Type: "section",
				Fields: []slackText{
					{Type: "mrkdwn", Text: "*Started:*\n" + s.StartedAt.Format(time.RFC1123)},
					{Type: "mrkdwn", Text: "*Duration:*\n" + s.Duration.Round(time.Millisecond).String()},
				},
			},
			{
				Type:     "context",
				Elements: []slackText{{Type: "mrkdwn", Text: "run `" + s.RunID + "`"}},
			},
			{Type: "divider"},
		},
	}
}
