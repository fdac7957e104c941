/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package web

import (
	"net/http"
	"strconv"

	"github.com/friendsincode/heimdall_stage/internal/logbuffer"
)

// Logs renders the in-memory log viewer.
func (h *Handler) Logs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := 200
	if raw := q.Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	params := logbuffer.QueryParams{
		Level:      q.Get("level"),
		Component:  q.Get("component"),
		Search:     q.Get("q"),
		Limit:      limit,
		Descending: true,
	}

	h.Render(w, r, "pages/logs", PageData{
		Title: "Logs",
		Data: map[string]any{
			"Entries":    h.logBuf.Query(params),
			"Components": h.logBuf.Components(),
			"Level":      params.Level,
			"Component":  params.Component,
			"Search":     params.Search,
		},
	})
}
