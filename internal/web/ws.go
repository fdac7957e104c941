/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package web

import (
	"context"
	"net/http"

	ws "nhooyr.io/websocket"

	"github.com/friendsincode/heimdall_stage/internal/hub"
)

// ViewerWebSocket joins a read-only board client to the hub.
func (h *Handler) ViewerWebSocket(w http.ResponseWriter, r *http.Request) {
	h.serveWebSocket(w, r, false)
}

// EditorWebSocket joins a console client to the hub. Editors receive the
// fragment with controls on every schedule push.
func (h *Handler) EditorWebSocket(w http.ResponseWriter, r *http.Request) {
	h.serveWebSocket(w, r, true)
}

func (h *Handler) serveWebSocket(w http.ResponseWriter, r *http.Request, editor bool) {
	conn, err := ws.Accept(w, r, &ws.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.logger.Error().Err(err).Msg("websocket accept failed")
		return
	}
	defer conn.Close(ws.StatusInternalError, "server error")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	member := hub.NewWebsocketConn(conn)
	h.hub.Connect(member, editor)
	defer h.hub.Disconnect(member)

	// Joining clients get the current state immediately rather than
	// waiting for the next change.
	viewer, editorPayload, err := h.SchedulePayloads(ctx)
	if err != nil {
		h.logger.Error().Err(err).Msg("initial schedule payload")
	} else {
		payload := viewer
		if editor {
			payload = editorPayload
		}
		if sendErr := member.Send(ctx, payload); sendErr != nil {
			h.logger.Debug().Err(sendErr).Msg("initial schedule push failed")
			return
		}
	}
	if sendErr := member.Send(ctx, hub.BrightnessMessage(h.hub.Brightness())); sendErr != nil {
		h.logger.Debug().Err(sendErr).Msg("initial brightness push failed")
		return
	}

	// Clients receive pushes only; drain reads until the peer goes away
	// so pings and close frames are handled.
	for {
		if _, _, err := conn.Read(ctx); err != nil {
			h.logger.Debug().Err(err).Str("conn_id", member.ID()).Msg("websocket closed")
			conn.Close(ws.StatusNormalClosure, "bye")
			return
		}
	}
}
