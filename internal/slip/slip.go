/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package slip derives live schedule-drift state from the running order.
package slip

import (
	"fmt"

	"github.com/friendsincode/heimdall_stage/internal/models"
)

// Calculate returns the show's current slip in seconds, always >= 0.
//
// The acts must be supplied in schedule order (ascending scheduled start);
// the result is driven by the last act in the sequence with actual data.
// Each completed or in-progress act overwrites the running value rather
// than accumulating: slip is a statement about the current state of the
// show, and a later act's variance already subsumes earlier lateness under
// normal sequential operation. Early finishes never go negative — they
// just fail to raise the value.
func Calculate(acts []models.Act) int {
	s := 0

	for _, act := range acts {
		switch {
		case act.Ended():
			v, _ := act.EndVariance()
			s = max(0, v)
		case act.InProgress():
			// Project the end from the actual start and the planned
			// duration, then compare against the scheduled end.
			projectedEnd := act.ActualStart.Seconds() + act.ScheduledDuration()
			projected := projectedEnd - act.ScheduledEnd.Seconds()
			s = max(0, projected)
		}
	}

	return s
}

// FormatDuration renders a signed second count as a short human-readable
// string: "1h 2m", "2m", "40s". Zero renders as "0s"; negative values get
// a leading minus.
func FormatDuration(seconds int) string {
	if seconds < 0 {
		return "-" + FormatDuration(-seconds)
	}

	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	secs := seconds % 60

	switch {
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	case minutes > 0:
		return fmt.Sprintf("%dm", minutes)
	default:
		return fmt.Sprintf("%ds", secs)
	}
}

// FormatVariance renders a signed variance with a +/- prefix. A nil value
// (no actual time recorded yet) renders empty; zero renders "on time".
func FormatVariance(seconds *int) string {
	if seconds == nil {
		return ""
	}
	switch {
	case *seconds == 0:
		return "on time"
	case *seconds > 0:
		return "+" + FormatDuration(*seconds)
	default:
		return FormatDuration(*seconds)
	}
}
