/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package models

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Clock is a wall-clock time of day. Schedule cells are exchanged as
// zero-padded 24-hour "HH:MM" strings at the storage boundary; a Clock is
// the parsed form. Seconds are carried internally (actual times stamped by
// the console have them) but drop at the storage boundary.
type Clock struct {
	Hour   int
	Minute int
	Second int
}

// NewClock builds a Clock from hour and minute.
func NewClock(hour, minute int) Clock {
	return Clock{Hour: hour, Minute: minute}
}

// ClockFromTime extracts the time-of-day from t.
func ClockFromTime(t time.Time) Clock {
	return Clock{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second()}
}

// ParseClock parses "HH:MM" or "HH:MM:SS" (zero-padded or not). An empty
// or malformed string reads as absent, never as an error: schedule cells
// are operator maintained and a stray value must not break the live view.
func ParseClock(s string) (Clock, bool) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return Clock{}, false
	}
	hour, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return Clock{}, false
	}
	minute, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return Clock{}, false
	}
	second := 0
	if len(parts) == 3 {
		second, err = strconv.Atoi(strings.TrimSpace(parts[2]))
		if err != nil {
			return Clock{}, false
		}
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 || second < 0 || second > 59 {
		return Clock{}, false
	}
	return Clock{Hour: hour, Minute: minute, Second: second}, true
}

// String renders the zero-padded "HH:MM" storage form.
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// Seconds returns seconds since midnight.
func (c Clock) Seconds() int {
	return c.Hour*3600 + c.Minute*60 + c.Second
}

// Sub returns c minus o in signed seconds. Used for variances, where the
// sign carries meaning (positive = late, negative = early).
func (c Clock) Sub(o Clock) int {
	return c.Seconds() - o.Seconds()
}

// DurationSeconds returns the elapsed seconds from start to end. An end
// earlier than its start is taken to cross midnight, so the result is
// never negative.
func DurationSeconds(start, end Clock) int {
	d := end.Seconds() - start.Seconds()
	if d < 0 {
		d += 24 * 3600
	}
	return d
}

// Value implements driver.Valuer so Clock persists as "HH:MM".
func (c Clock) Value() (driver.Value, error) {
	return c.String(), nil
}

// Scan implements sql.Scanner. Blank and malformed values scan to the
// zero Clock; nullability is carried by *Clock columns.
func (c *Clock) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		*c = Clock{}
		return nil
	case string:
		parsed, _ := ParseClock(v)
		*c = parsed
		return nil
	case []byte:
		parsed, _ := ParseClock(string(v))
		*c = parsed
		return nil
	case time.Time:
		*c = ClockFromTime(v)
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Clock", value)
	}
}
