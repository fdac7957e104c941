/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package hub

import (
	"context"

	"github.com/google/uuid"
	ws "nhooyr.io/websocket"
)

// wsConn adapts a websocket connection to the hub's Conn interface.
type wsConn struct {
	id   string
	conn *ws.Conn
}

// NewWebsocketConn wraps an accepted websocket connection with a unique
// identity for set membership.
func NewWebsocketConn(conn *ws.Conn) Conn {
	return &wsConn{id: uuid.NewString(), conn: conn}
}

func (w *wsConn) ID() string { return w.id }

func (w *wsConn) Send(ctx context.Context, text string) error {
	return w.conn.Write(ctx, ws.MessageText, []byte(text))
}
