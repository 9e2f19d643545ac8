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
// business logic. This file tests the FinalizationController state machine,
// in particular the at-most-once guarantee for the synthesis pass.
package services_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/jaycherian/gcp-go-video-narrator/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// settledSnapshot is the snapshot shape that satisfies the transition rule.
func settledSnapshot() services.BatchSnapshot {
	return services.BatchSnapshot{HasFrames: true, AllTerminal: true}
}

// TestFinalizerFiresOnce verifies that repeated observations of a settled
// batch start the runner exactly once.
func TestFinalizerFiresOnce(t *testing.T) {
	var runs atomic.Int32
	controller := services.NewFinalizationController(func() { runs.Add(1) })

	assert.Equal(t, services.StateIdle, controller.State())

	fired := controller.Observe(settledSnapshot())
	assert.True(t, fired)
	assert.Equal(t, services.StateFinalizing, controller.State())
	assert.True(t, controller.Attempted())

	// Redundant observations while the pass is in flight are harmless.
	for i := 0; i < 10; i++ {
		assert.False(t, controller.Observe(settledSnapshot()))
	}

	require.Eventually(t, func() bool { return runs.Load() == 1 }, time.Second, time.Millisecond)
}

// TestFinalizerBlockingConditions verifies that each blocking condition of
// the transition rule prevents the runner from starting.
func TestFinalizerBlockingConditions(t *testing.T) {
	blocked := []services.BatchSnapshot{
		{HasFrames: false, AllTerminal: false},
		{HasFrames: true, AllTerminal: false},
		{HasFrames: true, AllTerminal: true, CommentaryPresent: true},
		{HasFrames: true, AllTerminal: true, Synthesizing: true},
		{HasFrames: true, AllTerminal: true, ErrorPresent: true},
	}
	for _, snapshot := range blocked {
		controller := services.NewFinalizationController(func() {
			t.Error("runner must not start for a blocked snapshot")
		})
		assert.False(t, controller.Observe(snapshot))
		assert.False(t, controller.Attempted())
	}
}

// TestFinalizerStateTracking verifies the bookkeeping transitions for
// batches that are not yet ready.
func TestFinalizerStateTracking(t *testing.T) {
	controller := services.NewFinalizationController(func() {})

	controller.Observe(services.BatchSnapshot{HasFrames: true, AllTerminal: false})
	assert.Equal(t, services.StateAwaitingFrames, controller.State())

	controller.Observe(services.BatchSnapshot{HasFrames: false})
	assert.Equal(t, services.StateIdle, controller.State())
}

// TestFinalizerComplete verifies the outcome transitions.
func TestFinalizerComplete(t *testing.T) {
	controller := services.NewFinalizationController(func() {})
	controller.Observe(settledSnapshot())

	controller.Complete(nil)
	assert.Equal(t, services.StateDone, controller.State())

	controller.Complete(assert.AnError)
	assert.Equal(t, services.StateErrored, controller.State())
}

// TestFinalizerRegenerate verifies that re-arming allows exactly one more
// pass against the same settled batch.
func TestFinalizerRegenerate(t *testing.T) {
	var runs atomic.Int32
	controller := services.NewFinalizationController(func() { runs.Add(1) })

	require.True(t, controller.Observe(settledSnapshot()))
	controller.Complete(nil)

	// The attempt record still blocks a second pass.
	assert.False(t, controller.Observe(settledSnapshot()))

	controller.Regenerate()
	assert.Equal(t, services.StateAwaitingFrames, controller.State())
	assert.True(t, controller.Observe(settledSnapshot()))
	assert.False(t, controller.Observe(settledSnapshot()))

	require.Eventually(t, func() bool { return runs.Load() == 2 }, time.Second, time.Millisecond)
}

// TestFinalizerReset verifies that a new batch starts from a clean slate.
func TestFinalizerReset(t *testing.T) {
	controller := services.NewFinalizationController(func() {})
	require.True(t, controller.Observe(settledSnapshot()))

	controller.Reset()
	assert.Equal(t, services.StateIdle, controller.State())
	assert.False(t, controller.Attempted())
}
