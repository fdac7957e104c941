/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package eventbus

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/friendsincode/heimdall_stage/internal/events"
)

// RedisBus relays events over Redis pub/sub. Local delivery always goes
// through the in-memory bus; Redis only carries copies to other
// instances. If Redis is unreachable the bus degrades to local-only
// operation rather than failing.
type RedisBus struct {
	client *redis.Client
	local  *events.Bus
	logger zerolog.Logger
	nodeID string

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu        sync.Mutex
	relays    map[events.EventType]*redis.PubSub
	localOnly bool
}

// RedisConfig contains Redis connection configuration.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisBus connects to Redis and returns a bridge. A failed initial
// ping logs a warning and returns a local-only bus.
func NewRedisBus(cfg RedisConfig, nodeID string, logger zerolog.Logger) *RedisBus {
	ctx, cancel := context.WithCancel(context.Background())
	logger = logger.With().Str("component", "eventbus").Logger()

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	rb := &RedisBus{
		client: client,
		local:  events.NewBus(),
		logger: logger,
		nodeID: nodeID,
		ctx:    ctx,
		cancel: cancel,
		relays: make(map[events.EventType]*redis.PubSub),
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	defer pingCancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn().Err(err).Str("addr", cfg.Addr).Msg("redis unavailable, events stay local to this instance")
		rb.localOnly = true
	} else {
		logger.Info().Str("addr", cfg.Addr).Str("node_id", nodeID).Msg("redis event bridge initialized")
	}

	return rb
}

// Subscribe registers a local subscriber and ensures remote copies of the
// event type are relayed into the local bus.
func (rb *RedisBus) Subscribe(eventType events.EventType) events.Subscriber {
	sub := rb.local.Subscribe(eventType)

	rb.mu.Lock()
	defer rb.mu.Unlock()
	if rb.localOnly {
		return sub
	}
	if _, exists := rb.relays[eventType]; !exists {
		pubsub := rb.client.Subscribe(rb.ctx, subjectPrefix+string(eventType))
		rb.relays[eventType] = pubsub
		rb.wg.Add(1)
		go rb.receive(eventType, pubsub)
	}
	return sub
}

func (rb *RedisBus) receive(eventType events.EventType, pubsub *redis.PubSub) {
	defer rb.wg.Done()

	ch := pubsub.Channel()
	for {
		select {
		case <-rb.ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				rb.logger.Warn().Str("event_type", string(eventType)).Msg("redis relay channel closed")
				return
			}
			env, err := unmarshalEnvelope([]byte(msg.Payload))
			if err != nil {
				rb.logger.Error().Err(err).Msg("bad event envelope on redis channel")
				continue
			}
			if env.NodeID == rb.nodeID {
				continue
			}
			rb.local.Publish(eventType, env.Payload)
		}
	}
}

// Publish delivers locally and relays a copy to other instances.
func (rb *RedisBus) Publish(eventType events.EventType, payload events.Payload) {
	rb.local.Publish(eventType, payload)

	rb.mu.Lock()
	localOnly := rb.localOnly
	rb.mu.Unlock()
	if localOnly {
		return
	}

	data, err := marshalEnvelope(eventType, payload, rb.nodeID)
	if err != nil {
		rb.logger.Error().Err(err).Msg("marshal event envelope")
		return
	}

	ctx, cancel := context.WithTimeout(rb.ctx, 2*time.Second)
	defer cancel()
	if err := rb.client.Publish(ctx, subjectPrefix+string(eventType), data).Err(); err != nil {
		rb.logger.Error().Err(err).Str("event_type", string(eventType)).Msg("publish to redis failed")
	}
}

// Unsubscribe removes the subscriber; the redis relay for the event type
// stays up for the life of the process.
func (rb *RedisBus) Unsubscribe(eventType events.EventType, sub events.Subscriber) {
	rb.local.Unsubscribe(eventType, sub)
}

// Close tears down the relays and the client connection.
func (rb *RedisBus) Close() error {
	rb.cancel()

	rb.mu.Lock()
	for _, pubsub := range rb.relays {
		_ = pubsub.Close()
	}
	rb.relays = make(map[events.EventType]*redis.PubSub)
	rb.mu.Unlock()

	rb.wg.Wait()
	return rb.client.Close()
}
