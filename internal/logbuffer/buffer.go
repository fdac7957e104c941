/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package logbuffer provides an in-memory ring buffer for capturing logs.
package logbuffer

import (
	"encoding/json"
	"io"
	"strings"
	"sync"
	"time"
)

// LogEntry represents a single log entry.
type LogEntry struct {
	Timestamp time.Time      `json:"timestamp"`
	Level     string         `json:"level"`
	Message   string         `json:"message"`
	Component string         `json:"component,omitempty"`
	Fields    map[string]any `json:"fields,omitempty"`
}

// Buffer is a thread-safe ring buffer for log entries.
type Buffer struct {
	mu       sync.RWMutex
	entries  []LogEntry
	capacity int
	head     int
	count    int
}

// New creates a new log buffer with the specified capacity.
func New(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = 2000
	}
	return &Buffer{
		entries:  make([]LogEntry, capacity),
		capacity: capacity,
	}
}

// Add appends a log entry, evicting the oldest when full.
func (b *Buffer) Add(entry LogEntry) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.entries[b.head] = entry
	b.head = (b.head + 1) % b.capacity
	if b.count < b.capacity {
		b.count++
	}
}

// GetAll returns all log entries in chronological order.
func (b *Buffer) GetAll() []LogEntry {
	b.mu.RLock()
	defer b.mu.RUnlock()

	result := make([]LogEntry, b.count)
	if b.count == 0 {
		return result
	}

	start := 0
	if b.count == b.capacity {
		start = b.head
	}
	for i := 0; i < b.count; i++ {
		result[i] = b.entries[(start+i)%b.capacity]
	}
	return result
}

// QueryParams filters log entries.
type QueryParams struct {
	Level      string // Filter by level (debug, info, warn, error)
	Component  string // Filter by component
	Search     string // Substring match on message/component
	Limit      int    // Max entries to return (0 = all)
	Descending bool   // Return newest first
}

// Query returns log entries matching the filter criteria.
func (b *Buffer) Query(params QueryParams) []LogEntry {
	all := b.GetAll()

	var filtered []LogEntry
	for _, entry := range all {
		if params.Level != "" && entry.Level != params.Level {
			continue
		}
		if params.Component != "" && entry.Component != params.Component {
			continue
		}
		if params.Search != "" {
			needle := strings.ToLower(params.Search)
			if !strings.Contains(strings.ToLower(entry.Message), needle) &&
				!strings.Contains(strings.ToLower(entry.Component), needle) {
				continue
			}
		}
		filtered = append(filtered, entry)
	}

	if params.Descending {
		for i, j := 0, len(filtered)-1; i < j; i, j = i+1, j-1 {
			filtered[i], filtered[j] = filtered[j], filtered[i]
		}
	}

	if params.Limit > 0 && len(filtered) > params.Limit {
		filtered = filtered[:params.Limit]
	}
	return filtered
}

// Components returns the unique component names seen in the buffer.
func (b *Buffer) Components() []string {
	seen := make(map[string]bool)
	for _, entry := range b.GetAll() {
		if entry.Component != "" {
			seen[entry.Component] = true
		}
	}
	components := make([]string, 0, len(seen))
	for c := range seen {
		components = append(components, c)
	}
	return components
}

// Writer wraps the buffer to implement io.Writer for zerolog.
type Writer struct {
	buffer   *Buffer
	fallback io.Writer
}

// NewWriter creates a writer that captures JSON log lines into the buffer.
func NewWriter(buffer *Buffer, fallback io.Writer) *Writer {
	return &Writer{buffer: buffer, fallback: fallback}
}

// Write implements io.Writer.
func (w *Writer) Write(p []byte) (n int, err error) {
	var raw map[string]any
	if err := json.Unmarshal(p, &raw); err == nil {
		entry := LogEntry{
			Timestamp: time.Now(),
			Fields:    make(map[string]any),
		}
		if lvl, ok := raw["level"].(string); ok {
			entry.Level = lvl
			delete(raw, "level")
		}
		if msg, ok := raw["message"].(string); ok {
			entry.Message = msg
			delete(raw, "message")
		}
		if comp, ok := raw["component"].(string); ok {
			entry.Component = comp
			delete(raw, "component")
		}
		delete(raw, "time")
		for k, v := range raw {
			entry.Fields[k] = v
		}
		w.buffer.Add(entry)
	}

	if w.fallback != nil {
		return w.fallback.Write(p)
	}
	return len(p), nil
}
