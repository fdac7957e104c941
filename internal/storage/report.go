/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package storage

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
	"time"

	"github.com/friendsincode/heimdall_stage/internal/models"
	"github.com/friendsincode/heimdall_stage/internal/slip"
)

// ReportKey names the archived report object for a stage and show date.
func ReportKey(stage string, date time.Time) string {
	slug := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(stage), " ", "-"))
	if slug == "" {
		slug = "stage"
	}
	return fmt.Sprintf("reports/%s/%s.csv", slug, date.Format("2006-01-02"))
}

// ReportCSV renders the show report: one row per act with scheduled and
// actual times plus variances, and a trailing summary row with the
// running slip.
func ReportCSV(acts []models.Act) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"Act", "Scheduled Start", "Scheduled End", "Actual Start", "Actual End", "Start Variance", "End Variance"}
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("write report header: %w", err)
	}

	for _, act := range acts {
		row := []string{
			act.ActName,
			act.ScheduledStart.String(),
			act.ScheduledEnd.String(),
			clockString(act.ActualStart),
			clockString(act.ActualEnd),
			varianceString(act.StartVariance()),
			varianceString(act.EndVariance()),
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write report row: %w", err)
		}
	}

	summary := []string{"Running slip", slip.FormatDuration(slip.Calculate(acts)), "", "", "", "", ""}
	if err := w.Write(summary); err != nil {
		return nil, fmt.Errorf("write report summary: %w", err)
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush report: %w", err)
	}
	return buf.Bytes(), nil
}

func clockString(c *models.Clock) string {
	if c == nil {
		return ""
	}
	return c.String()
}

func varianceString(seconds int, ok bool) string {
	if !ok {
		return ""
	}
	return slip.FormatVariance(&seconds)
}
