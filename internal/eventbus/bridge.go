/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package eventbus relays in-process events between heimdallstage
// instances, so every console server's hub pushes the same updates no
// matter which instance handled the triggering request.
package eventbus

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/friendsincode/heimdall_stage/internal/events"
)

// Bus is the publish/subscribe surface shared by the in-process bus and
// the broker-backed bridges.
type Bus interface {
	Subscribe(events.EventType) events.Subscriber
	Publish(events.EventType, events.Payload)
	Unsubscribe(events.EventType, events.Subscriber)
}

// subjectPrefix namespaces relayed events on the broker.
const subjectPrefix = "heimdall.events."

// envelope is the wire shape for relayed events. NodeID lets an instance
// skip its own messages when they come back around.
type envelope struct {
	EventType events.EventType `json:"event_type"`
	Payload   events.Payload   `json:"payload"`
	Timestamp time.Time        `json:"timestamp"`
	NodeID    string           `json:"node_id"`
	MessageID string           `json:"message_id"`
}

func marshalEnvelope(eventType events.EventType, payload events.Payload, nodeID string) ([]byte, error) {
	return json.Marshal(envelope{
		EventType: eventType,
		Payload:   payload,
		Timestamp: time.Now(),
		NodeID:    nodeID,
		MessageID: uuid.NewString(),
	})
}

func unmarshalEnvelope(data []byte) (*envelope, error) {
	var msg envelope
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("unmarshal event envelope: %w", err)
	}
	return &msg, nil
}

// NodeID returns instanceID if set, otherwise hostname plus a random
// suffix so two unconfigured instances never collide.
func NodeID(instanceID string) string {
	if instanceID != "" {
		return instanceID
	}
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "heimdall"
	}
	return fmt.Sprintf("%s-%s", hostname, uuid.NewString()[:8])
}
