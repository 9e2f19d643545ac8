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
// This file implements the SQLite-backed QuotaStore. The store keeps a
// single-row table holding the calendar-day key and the number of frames
// analyzed on that day, so the counter survives process restarts.
//
// Per the QuotaStore contract, storage failures never reach the caller:
// a read that fails for any reason behaves as a fresh zero record, and a
// failed write is logged and dropped. Losing a count is preferable to
// stalling the analysis pipeline over a bookkeeping table.
package services

import (
	"database/sql"
	"log/slog"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const quotaSchema = `
CREATE TABLE IF NOT EXISTS daily_quota (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    day TEXT NOT NULL,
    used INTEGER NOT NULL DEFAULT 0
);`

// SQLiteQuotaStore is a QuotaStore persisted in a local SQLite database.
type SQLiteQuotaStore struct {
	mu    sync.Mutex
	db    *sql.DB
	limit int
	now   func() time.Time
}

// NewSQLiteQuotaStore opens (or creates) the quota database at path and
// ensures the schema exists.
//
// Inputs:
//   - path: The SQLite database file location.
//   - limit: The fixed daily frame limit.
//
// Outputs:
//   - *SQLiteQuotaStore: The ready-to-use store.
//   - error: An error if the database cannot be opened or migrated.
func NewSQLiteQuotaStore(path string, limit int) (*SQLiteQuotaStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(quotaSchema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteQuotaStore{db: db, limit: limit, now: time.Now}, nil
}

// SetClock overrides the store's time source. Used by tests to simulate
// day rollover.
func (s *SQLiteQuotaStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Close releases the underlying database handle.
func (s *SQLiteQuotaStore) Close() error {
	return s.db.Close()
}

// load reads the persisted record, applying the lazy day-rollover: a record
// from a previous day (or a missing/corrupt one) comes back as zero usage
// for today, and that reset is persisted immediately. Callers must hold
// the mutex.
func (s *SQLiteQuotaStore) load() (day string, used int) {
	today := dateKey(s.now())
	row := s.db.QueryRow(`SELECT day, used FROM daily_quota WHERE id = 1`)
	if err := row.Scan(&day, &used); err != nil {
		if err != sql.ErrNoRows {
			slog.Warn("quota store read failed, treating as fresh record", "error", err)
		}
		s.store(today, 0)
		return today, 0
	}
	if day != today {
		s.store(today, 0)
		return today, 0
	}
	return day, used
}

// store upserts the single quota row. Callers must hold the mutex.
func (s *SQLiteQuotaStore) store(day string, used int) {
	_, err := s.db.Exec(
		`INSERT INTO daily_quota (id, day, used) VALUES (1, ?, ?)
         ON CONFLICT(id) DO UPDATE SET day = excluded.day, used = excluded.used`,
		day, used)
	if err != nil {
		slog.Warn("quota store write failed", "error", err)
	}
}

// Read returns the current-day usage snapshot.
func (s *SQLiteQuotaStore) Read() QuotaUsage {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, used := s.load()
	remaining := s.limit - used
	if remaining < 0 {
		remaining = 0
	}
	return QuotaUsage{Used: used, Limit: s.limit, Remaining: remaining, ResetsAt: resetDescription}
}

// Increment adds one to today's count.
func (s *SQLiteQuotaStore) Increment() {
	s.mu.Lock()
	defer s.mu.Unlock()
	day, used := s.load()
	s.store(day, used+1)
}

// Reset forces today's count back to zero.
func (s *SQLiteQuotaStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store(dateKey(s.now()), 0)
}
