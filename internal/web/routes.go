/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes registers all web UI routes on the given router.
func (h *Handler) Routes(r chi.Router) {
	// Static files
	r.Handle("/static/*", h.StaticHandler())

	// Favicon - simple SVG stage light icon
	r.Get("/favicon.ico", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/svg+xml")
		w.Header().Set("Cache-Control", "public, max-age=86400")
		w.Write([]byte(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 32 32"><rect x="10" y="4" width="12" height="10" rx="2" fill="#f59e0b"/><path d="M8 28 16 14 24 28Z" fill="#fde68a"/></svg>`))
	})

	// Pages
	r.Get("/", h.Board)
	r.Get("/console", h.Console)
	r.Get("/logs", h.Logs)

	// Live updates
	r.Get("/ws", h.ViewerWebSocket)
	r.Get("/ws/editor", h.EditorWebSocket)

	// Fragments
	r.Get("/schedule/partial", h.SchedulePartial)

	// Editor actions
	r.Post("/acts/{name}/start", h.ActStart)
	r.Post("/acts/{name}/end", h.ActEnd)
	r.Post("/acts/{name}/clear", h.ActClear)
	r.Post("/brightness", h.BrightnessSubmit)
	r.Post("/show/reset", h.ShowReset)

	// Report export
	r.Get("/export", h.Export)
}
