/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package web

import (
	"fmt"
	"net/http"
	"time"

	"github.com/friendsincode/heimdall_stage/internal/storage"
)

// Board renders the read-only stage board.
func (h *Handler) Board(w http.ResponseWriter, r *http.Request) {
	acts, err := h.store.ListActs(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("list acts for board")
		http.Error(w, "Schedule unavailable", http.StatusServiceUnavailable)
		return
	}

	h.Render(w, r, "pages/board", PageData{
		Title: h.stageName,
		Data: map[string]any{
			"Schedule":   h.buildScheduleView(acts, false),
			"Brightness": h.hub.Brightness(),
		},
	})
}

// SchedulePartial serves the schedule fragment for HTMX refreshes. The
// editor variant is selected with ?role=editor.
func (h *Handler) SchedulePartial(w http.ResponseWriter, r *http.Request) {
	acts, err := h.store.ListActs(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("list acts for partial")
		http.Error(w, "Schedule unavailable", http.StatusServiceUnavailable)
		return
	}

	editor := r.URL.Query().Get("role") == "editor"
	h.RenderPartial(w, r, "partials/schedule", h.buildScheduleView(acts, editor))
}

// Export downloads the show report as CSV and, when an object store is
// configured, archives a copy of it.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	acts, err := h.store.ListActs(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("list acts for export")
		http.Error(w, "Schedule unavailable", http.StatusServiceUnavailable)
		return
	}

	data, err := storage.ReportCSV(acts)
	if err != nil {
		h.logger.Error().Err(err).Msg("build show report")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	now := time.Now()
	if h.reports != nil {
		key := storage.ReportKey(h.stageName, now)
		if err := h.reports.Put(r.Context(), key, data); err != nil {
			// The download still succeeds; archiving is best-effort.
			h.logger.Error().Err(err).Str("key", key).Msg("archive show report")
		} else {
			h.logger.Info().Str("key", key).Msg("show report archived")
		}
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fmt.Sprintf("show-report-%s.csv", now.Format("2006-01-02"))))
	w.Write(data)
}
