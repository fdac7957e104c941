/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package models

import (
	"time"
)

// Act represents one scheduled performance slot on the running order.
// The core never mutates an Act in place; actual times change only
// through the schedule store's point updates.
type Act struct {
	ID             string `gorm:"type:uuid;primaryKey"`
	ActName        string `gorm:"uniqueIndex"`
	ScheduledStart Clock  `gorm:"type:varchar(5);index"`
	ScheduledEnd   Clock  `gorm:"type:varchar(5)"`
	ActualStart    *Clock `gorm:"type:varchar(5)"`
	ActualEnd      *Clock `gorm:"type:varchar(5)"`
	Notes          string `gorm:"type:text"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ScheduledDuration is the planned length of the act in seconds. An end
// before the start is read as crossing midnight.
func (a Act) ScheduledDuration() int {
	return DurationSeconds(a.ScheduledStart, a.ScheduledEnd)
}

// StartVariance is actual minus scheduled start in signed seconds.
// The second return is false until the act has started.
func (a Act) StartVariance() (int, bool) {
	if a.ActualStart == nil {
		return 0, false
	}
	return a.ActualStart.Sub(a.ScheduledStart), true
}

// EndVariance is actual minus scheduled end in signed seconds.
// The second return is false until the act has ended.
func (a Act) EndVariance() (int, bool) {
	if a.ActualEnd == nil {
		return 0, false
	}
	return a.ActualEnd.Sub(a.ScheduledEnd), true
}

// Started reports whether the act has an actual start recorded.
func (a Act) Started() bool { return a.ActualStart != nil }

// Ended reports whether the act has an actual end recorded.
func (a Act) Ended() bool { return a.ActualEnd != nil }

// InProgress reports whether the act has started but not yet ended.
func (a Act) InProgress() bool { return a.ActualStart != nil && a.ActualEnd == nil }
