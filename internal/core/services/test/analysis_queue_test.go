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
// business logic. This file tests the AnalysisQueue drain loop: ordering,
// terminal-state guarantees, error substitution, and the quota-exhaustion
// sentinel. The tests use a zero pacing interval so they run at full speed.
package services_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jaycherian/gcp-go-video-narrator/internal/core/model"
	"github.com/jaycherian/gcp-go-video-narrator/internal/core/services"
	test "github.com/jaycherian/gcp-go-video-narrator/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// collectCompletions waits for exactly n completion events or fails the test.
func collectCompletions(t *testing.T, events <-chan services.FrameCompletion, n int) []services.FrameCompletion {
	t.Helper()
	out := make([]services.FrameCompletion, 0, n)
	for len(out) < n {
		select {
		case fc := <-events:
			out = append(out, fc)
		case <-time.After(5 * time.Second):
			require.Failf(t, "timed out", "received %d of %d completions", len(out), n)
		}
	}
	return out
}

// waitIdle polls until the drain loop has stopped.
func waitIdle(t *testing.T, q *services.AnalysisQueue) {
	t.Helper()
	require.Eventually(t, func() bool { return !q.Active() }, 5*time.Second, time.Millisecond)
}

// TestQueueDrainsInOrder verifies that frames complete in backlog order and
// every frame ends in a terminal state with the model's description.
func TestQueueDrainsInOrder(t *testing.T) {
	quota := services.NewMemoryQuotaStore(100)
	events := make(chan services.FrameCompletion, 16)

	analyze := func(_ context.Context, frame *model.Frame) (string, error) {
		return fmt.Sprintf("scene %d", frame.ID), nil
	}
	queue := services.NewAnalysisQueue(context.Background(), quota, analyze, 0, nil, func(fc services.FrameCompletion) {
		events <- fc
	})

	frames := test.GetTestFrameBatch(4, 1.0)
	queue.Enqueue(frames)

	completions := collectCompletions(t, events, 4)
	for i, fc := range completions {
		assert.Equal(t, i, fc.FrameID)
		assert.Equal(t, fmt.Sprintf("scene %d", i), fc.Description)
		assert.False(t, fc.IsQuotaSentinel())
	}
	waitIdle(t, queue)
	assert.True(t, model.AllTerminal(frames))
	assert.Equal(t, 4, quota.Read().Used)
}

// TestQueueSubstitutesErrorMarker verifies that an analysis failure becomes
// a marker description instead of propagating, so the frame still settles.
func TestQueueSubstitutesErrorMarker(t *testing.T) {
	quota := services.NewMemoryQuotaStore(100)
	events := make(chan services.FrameCompletion, 16)

	analyze := func(_ context.Context, frame *model.Frame) (string, error) {
		if frame.ID == 1 {
			return "", errors.New("model unavailable")
		}
		return "a quiet street", nil
	}
	queue := services.NewAnalysisQueue(context.Background(), quota, analyze, 0, nil, func(fc services.FrameCompletion) {
		events <- fc
	})

	frames := test.GetTestFrameBatch(3, 1.0)
	queue.Enqueue(frames)
	collectCompletions(t, events, 3)
	waitIdle(t, queue)

	assert.True(t, model.AllTerminal(frames))
	assert.False(t, frames[1].HasValidDescription())
	assert.Contains(t, frames[1].Description, model.ErrorMarker)
	// The failed attempt still consumed quota.
	assert.Equal(t, 3, quota.Read().Used)
}

// TestQueueQuotaSentinel verifies that quota exhaustion mid-batch emits the
// sentinel exactly once, abandons the rest of the backlog, and never emits
// a second sentinel for later enqueues on the same queue.
func TestQueueQuotaSentinel(t *testing.T) {
	quota := services.NewMemoryQuotaStore(2)
	events := make(chan services.FrameCompletion, 16)

	analyze := func(_ context.Context, frame *model.Frame) (string, error) {
		return "a scene", nil
	}
	queue := services.NewAnalysisQueue(context.Background(), quota, analyze, 0, nil, func(fc services.FrameCompletion) {
		events <- fc
	})

	queue.Enqueue(test.GetTestFrameBatch(5, 1.0))

	// Two frames fit the budget, then the sentinel.
	completions := collectCompletions(t, events, 3)
	assert.Equal(t, 0, completions[0].FrameID)
	assert.Equal(t, 1, completions[1].FrameID)
	assert.True(t, completions[2].IsQuotaSentinel())
	assert.Equal(t, services.QuotaExceededDescription, completions[2].Description)

	waitIdle(t, queue)
	assert.Equal(t, 0, queue.Pending())

	// A second batch against the exhausted quota is silently abandoned:
	// the sentinel fires at most once per queue lifetime.
	queue.Enqueue(test.GetTestFrameBatch(2, 1.0))
	waitIdle(t, queue)
	assert.Equal(t, 0, queue.Pending())
	assert.Len(t, events, 0)
}

// TestQueuePacing verifies that the drain loop spaces requests by the
// configured interval and that the last frame of a batch pays no delay.
func TestQueuePacing(t *testing.T) {
	quota := services.NewMemoryQuotaStore(100)
	events := make(chan services.FrameCompletion, 16)
	interval := 50 * time.Millisecond

	analyze := func(_ context.Context, frame *model.Frame) (string, error) {
		return "a scene", nil
	}
	queue := services.NewAnalysisQueue(context.Background(), quota, analyze, interval, nil, func(fc services.FrameCompletion) {
		events <- fc
	})

	var mu sync.Mutex
	var delays []time.Duration
	queue.SetSleep(func(d time.Duration) {
		mu.Lock()
		delays = append(delays, d)
		mu.Unlock()
	})

	queue.Enqueue(test.GetTestFrameBatch(3, 1.0))
	collectCompletions(t, events, 3)
	waitIdle(t, queue)

	// A delay is requested between consecutive frames only, so three frames
	// yield two. Each is the interval minus the (near-zero) analysis time.
	mu.Lock()
	defer mu.Unlock()
	require.Len(t, delays, 2)
	for _, d := range delays {
		assert.Greater(t, d, time.Duration(0))
		assert.LessOrEqual(t, d, interval)
	}
}

// TestQueueClear verifies that clearing drops the backlog without
// disturbing quota accounting.
func TestQueueClear(t *testing.T) {
	quota := services.NewMemoryQuotaStore(100)
	queue := services.NewAnalysisQueue(context.Background(), quota, func(_ context.Context, _ *model.Frame) (string, error) {
		return "a scene", nil
	}, 0, nil, func(services.FrameCompletion) {})

	queue.Clear()
	assert.Equal(t, 0, queue.Pending())
	assert.False(t, queue.Active())
}

// TestIntervalForRate verifies the pacing derivation from a per-minute
// budget plus padding.
func TestIntervalForRate(t *testing.T) {
	assert.Equal(t, time.Minute/25+100*time.Millisecond, services.IntervalForRate(25, 100*time.Millisecond))
	// A non-positive rate degrades to one request per minute.
	assert.Equal(t, time.Minute, services.IntervalForRate(0, 0))
}
