/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package web

import (
	"bytes"
	"context"
	"fmt"

	"github.com/friendsincode/heimdall_stage/internal/models"
	"github.com/friendsincode/heimdall_stage/internal/slip"
)

// ScheduleRow is one act in the rendered running order.
type ScheduleRow struct {
	Name           string
	ScheduledStart string
	ScheduledEnd   string
	ActualStart    string
	ActualEnd      string
	StartVariance  string
	EndVariance    string
	Status         string // pending, live, done
}

// ScheduleView is the data behind the schedule fragment.
type ScheduleView struct {
	StageName string
	Rows      []ScheduleRow
	Slip      string
	Editor    bool
}

// buildScheduleView assembles the fragment data from the current acts.
func (h *Handler) buildScheduleView(acts []models.Act, editor bool) ScheduleView {
	view := ScheduleView{
		StageName: h.stageName,
		Slip:      slip.FormatDuration(slip.Calculate(acts)),
		Editor:    editor,
	}
	for _, act := range acts {
		row := ScheduleRow{
			Name:           act.ActName,
			ScheduledStart: act.ScheduledStart.String(),
			ScheduledEnd:   act.ScheduledEnd.String(),
			Status:         "pending",
		}
		if act.ActualStart != nil {
			row.ActualStart = act.ActualStart.String()
			row.Status = "live"
		}
		if act.ActualEnd != nil {
			row.ActualEnd = act.ActualEnd.String()
			row.Status = "done"
		}
		if v, ok := act.StartVariance(); ok {
			row.StartVariance = slip.FormatVariance(&v)
		}
		if v, ok := act.EndVariance(); ok {
			row.EndVariance = slip.FormatVariance(&v)
		}
		view.Rows = append(view.Rows, row)
	}
	return view
}

// RenderSchedule renders the schedule partial to a string for socket
// delivery.
func (h *Handler) RenderSchedule(acts []models.Act, editor bool) (string, error) {
	var buf bytes.Buffer
	if err := h.partials.ExecuteTemplate(&buf, "partials/schedule", h.buildScheduleView(acts, editor)); err != nil {
		return "", fmt.Errorf("render schedule fragment: %w", err)
	}
	return buf.String(), nil
}

// SchedulePayloads renders the viewer and editor schedule fragments from
// the current store state. Both the socket join push and the broadcast
// worker go through here so every client sees the same markup.
func (h *Handler) SchedulePayloads(ctx context.Context) (viewer, editor string, err error) {
	acts, err := h.store.ListActs(ctx)
	if err != nil {
		return "", "", fmt.Errorf("list acts: %w", err)
	}
	viewer, err = h.RenderSchedule(acts, false)
	if err != nil {
		return "", "", err
	}
	editor, err = h.RenderSchedule(acts, true)
	if err != nil {
		return "", "", err
	}
	return viewer, editor, nil
}
