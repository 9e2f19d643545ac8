// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package services contains the business logic of the narration pipeline.
// This file defines the QuotaStore, the process-wide counter of frames
// analyzed during the current calendar day. The store is the single source
// of truth for the remaining per-day analysis budget: the Analysis Queue
// consults it before every frame request and increments it before each
// call attempt.
//
// Two implementations are provided: a SQLite-backed store for normal
// operation (see quota_sqlite.go) and an in-memory store used in tests and
// when no database path is configured.
package services

import (
	"sync"
	"time"
)

// QuotaUsage is the snapshot returned by a quota read.
type QuotaUsage struct {
	Used      int    `json:"used"`      // Frames analyzed so far today.
	Limit     int    `json:"limit"`     // The fixed daily limit.
	Remaining int    `json:"remaining"` // max(0, Limit - Used).
	ResetsAt  string `json:"resets_at"` // Human-readable description of when the counter resets.
}

// QuotaStore tracks per-day frame analysis usage. Implementations never
// return errors to the caller: a corrupted or missing persisted record is
// treated as a fresh zero record so the pipeline keeps moving.
type QuotaStore interface {
	// Read returns current-day usage. If the persisted record belongs to a
	// previous day the count is lazily rolled over to zero and persisted
	// before returning.
	Read() QuotaUsage

	// Increment adds one to today's count, applying the same day-rollover
	// check first. The effect is observable by the next Read.
	Increment()

	// Reset forces today's count to zero unconditionally.
	Reset()
}

// dateKey formats a time as the calendar-day key used to scope quota records.
func dateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// resetDescription is the user-facing explanation of the quota window.
const resetDescription = "midnight local time"

// MemoryQuotaStore is a QuotaStore backed by process memory. Usage does not
// survive a restart, which makes it suitable for tests and for running
// without a configured database.
type MemoryQuotaStore struct {
	mu    sync.Mutex
	day   string
	used  int
	limit int
	now   func() time.Time
}

// NewMemoryQuotaStore creates an in-memory quota store with the given
// daily limit.
func NewMemoryQuotaStore(limit int) *MemoryQuotaStore {
	return &MemoryQuotaStore{limit: limit, now: time.Now}
}

// SetClock overrides the store's time source. Used by tests to simulate
// day rollover.
func (m *MemoryQuotaStore) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

// rollover zeroes the counter when the stored day is not today.
// Callers must hold the mutex.
func (m *MemoryQuotaStore) rollover() {
	today := dateKey(m.now())
	if m.day != today {
		m.day = today
		m.used = 0
	}
}

// Read returns the current-day usage snapshot.
func (m *MemoryQuotaStore) Read() QuotaUsage {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rollover()
	remaining := m.limit - m.used
	if remaining < 0 {
		remaining = 0
	}
	return QuotaUsage{Used: m.used, Limit: m.limit, Remaining: remaining, ResetsAt: resetDescription}
}

// Increment adds one to today's count.
func (m *MemoryQuotaStore) Increment() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rollover()
	m.used++
}

// Reset zeroes today's count.
func (m *MemoryQuotaStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.day = dateKey(m.now())
	m.used = 0
}
