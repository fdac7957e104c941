/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package store

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/friendsincode/heimdall_stage/internal/models"
)

// MemoryStore holds the running order in memory. Used by tests and demo
// mode; nothing survives a restart.
type MemoryStore struct {
	mu   sync.RWMutex
	acts map[string]models.Act
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{acts: make(map[string]models.Act)}
}

// Seed replaces the running order with the given acts.
func (s *MemoryStore) Seed(acts []models.Act) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.acts = make(map[string]models.Act, len(acts))
	for _, act := range acts {
		if act.ID == "" {
			act.ID = uuid.NewString()
		}
		s.acts[act.ActName] = act
	}
}

func (s *MemoryStore) ListActs(ctx context.Context) ([]models.Act, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acts := make([]models.Act, 0, len(s.acts))
	for _, act := range s.acts {
		acts = append(acts, act)
	}
	sort.Slice(acts, func(i, j int) bool {
		return acts[i].ScheduledStart.Seconds() < acts[j].ScheduledStart.Seconds()
	})
	return acts, nil
}

func (s *MemoryStore) GetAct(ctx context.Context, actName string) (*models.Act, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	act, ok := s.acts[actName]
	if !ok {
		return nil, ErrActNotFound
	}
	return &act, nil
}

func (s *MemoryStore) SetActualStart(ctx context.Context, actName string, t models.Clock) (*models.Act, error) {
	return s.update(actName, func(act *models.Act) {
		clock := t
		act.ActualStart = &clock
	})
}

func (s *MemoryStore) SetActualEnd(ctx context.Context, actName string, t models.Clock) (*models.Act, error) {
	return s.update(actName, func(act *models.Act) {
		clock := t
		act.ActualEnd = &clock
	})
}

func (s *MemoryStore) ClearActualTimes(ctx context.Context, actName string) (*models.Act, error) {
	return s.update(actName, func(act *models.Act) {
		act.ActualStart = nil
		act.ActualEnd = nil
	})
}

func (s *MemoryStore) update(actName string, apply func(*models.Act)) (*models.Act, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	act, ok := s.acts[actName]
	if !ok {
		return nil, ErrActNotFound
	}
	apply(&act)
	s.acts[actName] = act
	return &act, nil
}
