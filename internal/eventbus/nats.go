/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package eventbus

import (
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/friendsincode/heimdall_stage/internal/events"
)

// NATSBus relays events over core NATS subjects. Same contract as the
// Redis bridge: local delivery is unconditional, the broker only carries
// copies to other instances, and broker outages degrade to local-only.
type NATSBus struct {
	conn   *nats.Conn
	local  *events.Bus
	logger zerolog.Logger
	nodeID string

	mu     sync.Mutex
	relays map[events.EventType]*nats.Subscription
}

// NewNATSBus connects to the NATS server and returns a bridge. A failed
// connect logs a warning and returns a local-only bus.
func NewNATSBus(url, nodeID string, logger zerolog.Logger) *NATSBus {
	logger = logger.With().Str("component", "eventbus").Logger()

	conn, err := nats.Connect(url,
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.Timeout(5*time.Second),
	)
	if err != nil {
		logger.Warn().Err(err).Str("url", url).Msg("nats unavailable, events stay local to this instance")
		conn = nil
	} else {
		logger.Info().Str("url", url).Str("node_id", nodeID).Msg("nats event bridge initialized")
	}

	return &NATSBus{
		conn:   conn,
		local:  events.NewBus(),
		logger: logger,
		nodeID: nodeID,
		relays: make(map[events.EventType]*nats.Subscription),
	}
}

// Subscribe registers a local subscriber and ensures remote copies of the
// event type are relayed into the local bus.
func (nb *NATSBus) Subscribe(eventType events.EventType) events.Subscriber {
	sub := nb.local.Subscribe(eventType)

	nb.mu.Lock()
	defer nb.mu.Unlock()
	if nb.conn == nil {
		return sub
	}
	if _, exists := nb.relays[eventType]; !exists {
		subject := subjectPrefix + string(eventType)
		natsSub, err := nb.conn.Subscribe(subject, func(msg *nats.Msg) {
			env, err := unmarshalEnvelope(msg.Data)
			if err != nil {
				nb.logger.Error().Err(err).Msg("bad event envelope on nats subject")
				return
			}
			if env.NodeID == nb.nodeID {
				return
			}
			nb.local.Publish(eventType, env.Payload)
		})
		if err != nil {
			nb.logger.Error().Err(err).Str("subject", subject).Msg("nats subscribe failed")
			return sub
		}
		nb.relays[eventType] = natsSub
	}
	return sub
}

// Publish delivers locally and relays a copy to other instances.
func (nb *NATSBus) Publish(eventType events.EventType, payload events.Payload) {
	nb.local.Publish(eventType, payload)

	if nb.conn == nil {
		return
	}

	data, err := marshalEnvelope(eventType, payload, nb.nodeID)
	if err != nil {
		nb.logger.Error().Err(err).Msg("marshal event envelope")
		return
	}
	if err := nb.conn.Publish(subjectPrefix+string(eventType), data); err != nil {
		nb.logger.Error().Err(err).Str("event_type", string(eventType)).Msg("publish to nats failed")
	}
}

// Unsubscribe removes the subscriber; the nats relay for the event type
// stays up for the life of the process.
func (nb *NATSBus) Unsubscribe(eventType events.EventType, sub events.Subscriber) {
	nb.local.Unsubscribe(eventType, sub)
}

// Close drains the subscriptions and the connection.
func (nb *NATSBus) Close() error {
	nb.mu.Lock()
	for _, natsSub := range nb.relays {
		_ = natsSub.Unsubscribe()
	}
	nb.relays = make(map[events.EventType]*nats.Subscription)
	conn := nb.conn
	nb.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
	return nil
}
