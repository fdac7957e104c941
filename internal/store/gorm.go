/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/friendsincode/heimdall_stage/internal/models"
)

// GormStore persists the running order in a relational database.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore wraps a gorm connection as a schedule store.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Migrate creates or updates the schedule tables.
func (s *GormStore) Migrate() error {
	if err := s.db.AutoMigrate(&models.Act{}); err != nil {
		return fmt.Errorf("migrate acts: %w", err)
	}
	return nil
}

func (s *GormStore) ListActs(ctx context.Context) ([]models.Act, error) {
	var acts []models.Act
	if err := s.db.WithContext(ctx).Order("scheduled_start ASC").Find(&acts).Error; err != nil {
		return nil, fmt.Errorf("list acts: %w", err)
	}
	return acts, nil
}

func (s *GormStore) GetAct(ctx context.Context, actName string) (*models.Act, error) {
	var act models.Act
	err := s.db.WithContext(ctx).Where("act_name = ?", actName).First(&act).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrActNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get act %q: %w", actName, err)
	}
	return &act, nil
}

func (s *GormStore) SetActualStart(ctx context.Context, actName string, t models.Clock) (*models.Act, error) {
	return s.updateColumns(ctx, actName, map[string]any{"actual_start": t.String()})
}

func (s *GormStore) SetActualEnd(ctx context.Context, actName string, t models.Clock) (*models.Act, error) {
	return s.updateColumns(ctx, actName, map[string]any{"actual_end": t.String()})
}

func (s *GormStore) ClearActualTimes(ctx context.Context, actName string) (*models.Act, error) {
	return s.updateColumns(ctx, actName, map[string]any{"actual_start": nil, "actual_end": nil})
}

func (s *GormStore) updateColumns(ctx context.Context, actName string, columns map[string]any) (*models.Act, error) {
	act, err := s.GetAct(ctx, actName)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(act).Updates(columns).Error; err != nil {
		return nil, fmt.Errorf("update act %q: %w", actName, err)
	}
	return s.GetAct(ctx, actName)
}
