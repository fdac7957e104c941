/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package store owns the persistent running order. The core reads act
// sequences from it and applies point updates to actual start/end times;
// it never mutates acts anywhere else.
package store

import (
	"context"
	"errors"

	"github.com/friendsincode/heimdall_stage/internal/models"
)

// ErrActNotFound is returned for updates targeting an unknown act name.
// It is a sentinel, not a fault: "that act doesn't exist" is the only
// user-visible failure the schedule surface produces.
var ErrActNotFound = errors.New("act not found")

// Store is the schedule store boundary.
type Store interface {
	// ListActs returns the running order sorted by scheduled start.
	ListActs(ctx context.Context) ([]models.Act, error)
	// GetAct returns a single act by name, or ErrActNotFound.
	GetAct(ctx context.Context, actName string) (*models.Act, error)
	// SetActualStart stamps the actual start time on the named act.
	SetActualStart(ctx context.Context, actName string, t models.Clock) (*models.Act, error)
	// SetActualEnd stamps the actual end time on the named act.
	SetActualEnd(ctx context.Context, actName string, t models.Clock) (*models.Act, error)
	// ClearActualTimes removes both actual times from the named act.
	ClearActualTimes(ctx context.Context, actName string) (*models.Act, error)
}
