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

// Package services_test contains unit tests for the narration pipeline's
// business logic. This file tests the daily quota stores: increment
// arithmetic, manual reset, lazy day rollover, and persistence across
// store reopens.
package services_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/jaycherian/gcp-go-video-narrator/internal/core/services"
	test "github.com/jaycherian/gcp-go-video-narrator/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMemoryQuotaIncrement verifies that N increments are reflected by the
// next read and that remaining never goes negative.
func TestMemoryQuotaIncrement(t *testing.T) {
	store := services.NewMemoryQuotaStore(3)

	for i := 0; i < 5; i++ {
		store.Increment()
	}
	usage := store.Read()

	assert.Equal(t, 5, usage.Used)
	assert.Equal(t, 3, usage.Limit)
	// Usage can exceed the limit (charges are per attempt) but the
	// remaining budget floors at zero.
	assert.Equal(t, 0, usage.Remaining)
}

// TestMemoryQuotaReset verifies that a manual reset zeroes the counter
// unconditionally.
func TestMemoryQuotaReset(t *testing.T) {
	store := services.NewMemoryQuotaStore(10)
	store.Increment()
	store.Increment()

	store.Reset()
	usage := store.Read()

	assert.Equal(t, 0, usage.Used)
	assert.Equal(t, 10, usage.Remaining)
}

// TestMemoryQuotaDayRollover verifies that crossing a calendar-day boundary
// lazily zeroes the counter on the next access.
func TestMemoryQuotaDayRollover(t *testing.T) {
	store := services.NewMemoryQuotaStore(10)

	day1 := time.Date(2024, 10, 11, 23, 50, 0, 0, time.Local)
	store.SetClock(func() time.Time { return day1 })
	store.Increment()
	store.Increment()
	assert.Equal(t, 2, store.Read().Used)

	// Ten minutes later it is the next calendar day.
	day2 := day1.Add(10 * time.Minute)
	store.SetClock(func() time.Time { return day2 })

	usage := store.Read()
	assert.Equal(t, 0, usage.Used)
	assert.Equal(t, 10, usage.Remaining)
}

// TestSQLiteQuotaPersistence verifies that usage written through one store
// instance is visible after closing and reopening the database file.
func TestSQLiteQuotaPersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quota.db")

	store, err := services.NewSQLiteQuotaStore(path, 100)
	require.NoError(t, err)

	store.Increment()
	store.Increment()
	store.Increment()
	assert.Equal(t, 3, store.Read().Used)
	test.HandleErr(store.Close(), t)

	reopened, err := services.NewSQLiteQuotaStore(path, 100)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	usage := reopened.Read()
	assert.Equal(t, 3, usage.Used)
	assert.Equal(t, 97, usage.Remaining)
}

// TestSQLiteQuotaRollover verifies that a persisted record from a previous
// day reads as zero and is re-persisted under the new day key.
func TestSQLiteQuotaRollover(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quota.db")

	store, err := services.NewSQLiteQuotaStore(path, 50)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	day1 := time.Date(2024, 10, 11, 12, 0, 0, 0, time.Local)
	store.SetClock(func() time.Time { return day1 })
	store.Increment()
	assert.Equal(t, 1, store.Read().Used)

	store.SetClock(func() time.Time { return day1.AddDate(0, 0, 1) })
	usage := store.Read()

	assert.Equal(t, 0, usage.Used)
	assert.Equal(t, 50, usage.Remaining)
}
