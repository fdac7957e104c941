/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package hub tracks live operator connections and pushes schedule and
// brightness updates to them. Delivery is best-effort, at-most-once: a
// connection whose send fails is silently dropped from the live set, and
// no broadcast ever surfaces an error to its caller.
package hub

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/friendsincode/heimdall_stage/internal/telemetry"
)

// Conn is one live operator session. The hub holds it only for the
// duration of the session; it issues sends but does not own the underlying
// transport's lifecycle.
type Conn interface {
	ID() string
	Send(ctx context.Context, text string) error
}

// DefaultSendTimeout bounds a single send so one hung client cannot stall
// delivery to the rest of the room.
const DefaultSendTimeout = 5 * time.Second

// Hub is the registry of live connections plus the one piece of shared
// mutable state, the current lighting brightness.
type Hub struct {
	logger      zerolog.Logger
	sendTimeout time.Duration

	mu         sync.Mutex
	conns      map[Conn]bool // conn -> is_editor
	brightness int
}

// New creates an empty hub.
func New(logger zerolog.Logger) *Hub {
	return &Hub{
		logger:      logger.With().Str("component", "hub").Logger(),
		sendTimeout: DefaultSendTimeout,
		conns:       make(map[Conn]bool),
	}
}

// Connect registers a connection with its role, fixed for the session.
func (h *Hub) Connect(c Conn, isEditor bool) {
	h.mu.Lock()
	h.conns[c] = isEditor
	h.mu.Unlock()

	telemetry.HubConnections.WithLabelValues(roleLabel(isEditor)).Inc()
	h.logger.Debug().Str("conn_id", c.ID()).Bool("editor", isEditor).Msg("connection joined")
}

// Disconnect removes a connection. Removing one that is not registered is
// a no-op.
func (h *Hub) Disconnect(c Conn) {
	h.mu.Lock()
	isEditor, ok := h.conns[c]
	if ok {
		delete(h.conns, c)
	}
	h.mu.Unlock()

	if ok {
		telemetry.HubConnections.WithLabelValues(roleLabel(isEditor)).Dec()
		h.logger.Debug().Str("conn_id", c.ID()).Msg("connection left")
	}
}

// ConnectionCount returns the size of the live set.
func (h *Hub) ConnectionCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

// Brightness returns the last broadcast brightness value.
func (h *Hub) Brightness() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.brightness
}

// Broadcast delivers the identical payload to every live connection.
func (h *Hub) Broadcast(ctx context.Context, message string) {
	telemetry.HubBroadcastsTotal.WithLabelValues("message").Inc()
	h.sendToAll(ctx, func(Conn, bool) string { return message })
}

// BroadcastSchedule delivers editorPayload to editor connections and
// viewerPayload to everyone else in one pass.
func (h *Hub) BroadcastSchedule(ctx context.Context, viewerPayload, editorPayload string) {
	telemetry.HubBroadcastsTotal.WithLabelValues("schedule").Inc()
	h.sendToAll(ctx, func(_ Conn, isEditor bool) string {
		if isEditor {
			return editorPayload
		}
		return viewerPayload
	})
}

// BroadcastBrightness stores value as the current brightness and pushes a
// self-describing brightness event to all connections.
func (h *Hub) BroadcastBrightness(ctx context.Context, value int) {
	h.mu.Lock()
	h.brightness = value
	h.mu.Unlock()

	telemetry.HubBroadcastsTotal.WithLabelValues("brightness").Inc()
	h.Broadcast(ctx, BrightnessMessage(value))
}

// brightnessEvent is the wire shape for brightness pushes.
type brightnessEvent struct {
	Type  string `json:"type"`
	Value int    `json:"value"`
}

// BrightnessMessage encodes the brightness wire message for value.
func BrightnessMessage(value int) string {
	b, _ := json.Marshal(brightnessEvent{Type: "brightness", Value: value})
	return string(b)
}

// sendToAll is the single delivery primitive behind all broadcast
// variants. getMessage selects the payload per recipient; an empty payload
// skips that connection without a send attempt. Failed connections are
// collected during the pass and removed after it completes, so the live
// set is never mutated mid-iteration.
func (h *Hub) sendToAll(ctx context.Context, getMessage func(Conn, bool) string) {
	h.mu.Lock()
	snapshot := make(map[Conn]bool, len(h.conns))
	for c, isEditor := range h.conns {
		snapshot[c] = isEditor
	}
	h.mu.Unlock()

	var dead []Conn
	for c, isEditor := range snapshot {
		message := getMessage(c, isEditor)
		if message == "" {
			continue
		}

		sendCtx, cancel := context.WithTimeout(ctx, h.sendTimeout)
		err := c.Send(sendCtx, message)
		cancel()

		if err != nil {
			telemetry.HubSendFailuresTotal.Inc()
			h.logger.Debug().Err(err).Str("conn_id", c.ID()).Msg("send failed, dropping connection")
			dead = append(dead, c)
		}
	}

	for _, c := range dead {
		h.Disconnect(c)
	}
}

func roleLabel(isEditor bool) string {
	if isEditor {
		return "editor"
	}
	return "viewer"
}
