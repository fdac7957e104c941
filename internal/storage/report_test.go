package storage

import (
	"strings"
	"testing"
	"time"

	"github.com/friendsincode/heimdall_stage/internal/models"
)

func TestReportKey(t *testing.T) {
	date := time.Date(2026, 8, 29, 21, 0, 0, 0, time.UTC)
	if got := ReportKey("Main Stage", date); got != "reports/main-stage/2026-08-29.csv" {
		t.Fatalf("key = %q", got)
	}
	if got := ReportKey("", date); got != "reports/stage/2026-08-29.csv" {
		t.Fatalf("key for empty stage = %q", got)
	}
}

func TestReportCSV(t *testing.T) {
	start := models.Clock{Hour: 19, Minute: 10}
	end := models.Clock{Hour: 19, Minute: 32}
	acts := []models.Act{
		{
			ActName:        "Opener",
			ScheduledStart: models.Clock{Hour: 19, Minute: 0},
			ScheduledEnd:   models.Clock{Hour: 19, Minute: 30},
			ActualStart:    &start,
			ActualEnd:      &end,
		},
		{
			ActName:        "Headliner",
			ScheduledStart: models.Clock{Hour: 19, Minute: 30},
			ScheduledEnd:   models.Clock{Hour: 20, Minute: 30},
		},
	}

	data, err := ReportCSV(acts)
	if err != nil {
		t.Fatalf("ReportCSV: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header, 2 acts, and summary; got %d lines:\n%s", len(lines), data)
	}
	if !strings.Contains(lines[1], "Opener") || !strings.Contains(lines[1], "+10m") {
		t.Fatalf("opener row = %q", lines[1])
	}
	if !strings.Contains(lines[3], "Running slip") || !strings.Contains(lines[3], "2m") {
		t.Fatalf("summary row = %q", lines[3])
	}
}
