/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package web

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/friendsincode/heimdall_stage/internal/events"
	"github.com/friendsincode/heimdall_stage/internal/models"
	"github.com/friendsincode/heimdall_stage/internal/store"
)

// maxBrightness caps the lighting scale; values clamp rather than error.
const maxBrightness = 100

// Console renders the editor console.
func (h *Handler) Console(w http.ResponseWriter, r *http.Request) {
	acts, err := h.store.ListActs(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("list acts for console")
		http.Error(w, "Schedule unavailable", http.StatusServiceUnavailable)
		return
	}

	h.Render(w, r, "pages/console", PageData{
		Title: h.stageName + " Console",
		Data: map[string]any{
			"Schedule":   h.buildScheduleView(acts, true),
			"Brightness": h.hub.Brightness(),
		},
	})
}

// ActStart stamps the named act as started now, or at a submitted HH:MM.
func (h *Handler) ActStart(w http.ResponseWriter, r *http.Request) {
	t, ok := stampTime(r)
	if !ok {
		http.Error(w, "Time must be HH:MM", http.StatusBadRequest)
		return
	}
	h.updateAct(w, r, "start", func(name string) (*models.Act, error) {
		return h.store.SetActualStart(r.Context(), name, t)
	})
}

// ActEnd stamps the named act as ended now, or at a submitted HH:MM.
func (h *Handler) ActEnd(w http.ResponseWriter, r *http.Request) {
	t, ok := stampTime(r)
	if !ok {
		http.Error(w, "Time must be HH:MM", http.StatusBadRequest)
		return
	}
	h.updateAct(w, r, "end", func(name string) (*models.Act, error) {
		return h.store.SetActualEnd(r.Context(), name, t)
	})
}

// stampTime returns the submitted "at" time when present, otherwise the
// current wall clock.
func stampTime(r *http.Request) (models.Clock, bool) {
	raw := r.FormValue("at")
	if raw == "" {
		return clockNow(), true
	}
	return models.ParseClock(raw)
}

// ActClear removes both actual times from the named act.
func (h *Handler) ActClear(w http.ResponseWriter, r *http.Request) {
	h.updateAct(w, r, "clear", func(name string) (*models.Act, error) {
		return h.store.ClearActualTimes(r.Context(), name)
	})
}

func (h *Handler) updateAct(w http.ResponseWriter, r *http.Request, action string, apply func(string) (*models.Act, error)) {
	name := actName(r)
	if name == "" {
		http.Error(w, "Act name required", http.StatusBadRequest)
		return
	}

	act, err := apply(name)
	if err != nil {
		if errors.Is(err, store.ErrActNotFound) {
			http.Error(w, "Act not found", http.StatusNotFound)
			return
		}
		h.logger.Error().Err(err).Str("act", name).Str("action", action).Msg("act update failed")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.logger.Info().Str("act", act.ActName).Str("action", action).Msg("act updated")
	h.bus.Publish(events.EventScheduleUpdated, events.Payload{
		"act":    act.ActName,
		"action": action,
	})

	// The socket push carries the refreshed schedule; HTMX callers get it
	// inline too so non-socket clients stay current.
	acts, err := h.store.ListActs(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("list acts after update")
		w.WriteHeader(http.StatusNoContent)
		return
	}
	h.RenderPartial(w, r, "partials/schedule", h.buildScheduleView(acts, true))
}

// BrightnessSubmit stores a new shared brightness value and announces it.
func (h *Handler) BrightnessSubmit(w http.ResponseWriter, r *http.Request) {
	raw := r.FormValue("value")
	value, err := strconv.Atoi(raw)
	if err != nil {
		http.Error(w, "Brightness must be a number", http.StatusBadRequest)
		return
	}
	if value < 0 {
		value = 0
	}
	if value > maxBrightness {
		value = maxBrightness
	}

	h.logger.Info().Int("value", value).Msg("brightness changed")
	h.bus.Publish(events.EventBrightnessChanged, events.Payload{"value": value})
	w.WriteHeader(http.StatusNoContent)
}

// ShowReset clears actual times from every act, returning the board to
// its pre-show state.
func (h *Handler) ShowReset(w http.ResponseWriter, r *http.Request) {
	acts, err := h.store.ListActs(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("list acts for reset")
		http.Error(w, "Schedule unavailable", http.StatusServiceUnavailable)
		return
	}

	for _, act := range acts {
		if _, err := h.store.ClearActualTimes(r.Context(), act.ActName); err != nil {
			h.logger.Error().Err(err).Str("act", act.ActName).Msg("clear act during reset")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
	}

	h.logger.Info().Int("acts", len(acts)).Msg("show reset")
	h.bus.Publish(events.EventShowReset, events.Payload{"acts": len(acts)})

	refreshed, err := h.store.ListActs(r.Context())
	if err != nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	h.RenderPartial(w, r, "partials/schedule", h.buildScheduleView(refreshed, true))
}

// actName pulls the act name path parameter, tolerating encoded spaces.
func actName(r *http.Request) string {
	raw := chi.URLParam(r, "name")
	if decoded, err := url.PathUnescape(raw); err == nil {
		return decoded
	}
	return raw
}

// clockNow is the wall clock truncated to the minute, the resolution the
// schedule stores.
func clockNow() models.Clock {
	now := time.Now()
	return models.Clock{Hour: now.Hour(), Minute: now.Minute()}
}
