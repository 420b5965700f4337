package notifier

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/amishk599/vacancydb/internal/model"
)

func TestLogNotifier_Notify(t *testing.T) {
	var buf bytes.Buffer
	n := NewLogNotifier(slog.New(slog.NewTextHandler(&buf, nil)))

	err := n.Notify(model.RunSummary{
		RunID:     "run-1",
		Employers: 10,
		Vacancies: 250,
		StartedAt: time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC),
		Duration:  3 * time.Second,
	})
	if err != nil {
		t.Fatalf("Notify = %v, want nil", err)
	}

	out := buf.String()
	for _, want := range []string{"run_id=run-1", "employers=10", "vacancies=250", "duration=3s"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output %q missing %q", out, want)
		}
	}
}

func TestSendTestMessage(t *testing.T) {
	var buf bytes.Buffer
	n := NewLogNotifier(slog.New(slog.NewTextHandler(&buf, nil)))

	if err := SendTestMessage(n); err != nil {
		t.Fatalf("SendTestMessage = %v", err)
	}
	if !strings.Contains(buf.String(), "run_id=test-notification") {
		t.Errorf("log output %q missing test run id", buf.String())
	}
}
