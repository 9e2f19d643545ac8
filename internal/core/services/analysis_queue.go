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
// This file implements the AnalysisQueue, the component that serializes
// frame-analysis requests against two constraints: a minimum spacing between
// consecutive requests (derived from a requests-per-minute ceiling) and a
// hard stop when the daily quota is exhausted.
//
// Logic Flow (single drain loop; re-entrant starts are no-ops):
//  1. While the backlog is non-empty:
//     a. Read the quota; if nothing remains, emit the quota-exceeded
//        sentinel, abandon the backlog, and stop.
//     b. Pop the head frame.
//     c. Increment the quota, then invoke the frame analyzer; any failure
//        is substituted with an error-marker description rather than
//        propagated, so every frame reaches a terminal state.
//     d. Deliver the outcome through the completion callback.
//     e. If the backlog is still non-empty, pause for whatever remains of
//        the minimum inter-request interval after subtracting the time the
//        analysis call itself took.
//  2. Mark the loop idle when the backlog empties.
//
// The quota check happens before each dequeue so exhaustion is caught
// mid-batch without waiting out the full pacing delay.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jaycherian/gcp-go-video-narrator/internal/core/model"
)

// QuotaExceededDescription is the description carried by the sentinel
// completion event emitted when the daily quota runs out mid-batch.
const QuotaExceededDescription = "DAILY QUOTA EXCEEDED"

// QuotaSentinelID is the frame identifier carried by the sentinel event.
// Real frame identifiers are always non-negative.
const QuotaSentinelID = -1

// FrameCompletion is the typed event delivered once per processed frame,
// carrying either the model's description or an error-marker string. A
// completion with FrameID == QuotaSentinelID signals that the remaining
// backlog was abandoned due to quota exhaustion.
type FrameCompletion struct {
	FrameID     int
	Description string
}

// IsQuotaSentinel reports whether this event is the batch-abandoned signal.
func (f FrameCompletion) IsQuotaSentinel() bool {
	return f.FrameID == QuotaSentinelID
}

// AnalyzeFunc performs a single frame analysis, returning the description
// text or an error.
type AnalyzeFunc func(ctx context.Context, frame *model.Frame) (string, error)

// AnalysisQueue owns an ordered backlog of pending frames and drains it one
// frame at a time. Construction takes a single completion callback invoked
// exactly once per dequeued frame; callbacks fire in backlog order, one at
// a time, never concurrently.
type AnalysisQueue struct {
	mu            sync.Mutex
	backlog       []*model.Frame
	running       bool
	quotaNotified bool

	ctx        context.Context
	quota      QuotaStore
	analyze    AnalyzeFunc
	onComplete func(FrameCompletion)
	interval   time.Duration

	// frameMu serializes the drain loop's writes to frame status and
	// description against whoever else reads those fields. The orchestrator
	// passes its own lock here so its snapshots are consistent.
	frameMu sync.Locker

	// sleep is indirected so tests can run without real pacing delays.
	sleep func(time.Duration)
}

// NewAnalysisQueue constructs a queue.
//
// Inputs:
//   - ctx: Root context governing the drain loop's remote calls.
//   - quota: The daily usage counter consulted before every frame.
//   - analyze: The frame analyzer collaborator.
//   - interval: Minimum spacing between consecutive analysis requests.
//   - frameMu: Lock guarding frame status and description fields. Pass the
//     lock that readers of those fields hold, or nil for a private one.
//   - onComplete: Callback receiving one FrameCompletion per processed frame.
//
// Outputs:
//   - *AnalysisQueue: The ready-to-use queue.
func NewAnalysisQueue(ctx context.Context, quota QuotaStore, analyze AnalyzeFunc, interval time.Duration, frameMu sync.Locker, onComplete func(FrameCompletion)) *AnalysisQueue {
	if frameMu == nil {
		frameMu = &sync.Mutex{}
	}
	return &AnalysisQueue{
		ctx:        ctx,
		quota:      quota,
		analyze:    analyze,
		onComplete: onComplete,
		interval:   interval,
		frameMu:    frameMu,
		sleep:      time.Sleep,
	}
}

// SetSleep replaces the pacing sleep function. Call before Enqueue; tests use
// this to record requested delays instead of actually waiting them out.
func (q *AnalysisQueue) SetSleep(fn func(time.Duration)) {
	q.sleep = fn
}

// IntervalForRate derives the minimum spacing between requests from a
// requests-per-minute ceiling plus a small safety padding.
func IntervalForRate(requestsPerMinute int, padding time.Duration) time.Duration {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 1
	}
	return time.Minute/time.Duration(requestsPerMinute) + padding
}

// Enqueue appends frames to the tail of the backlog and starts the drain
// loop if one is not already running. Enqueueing onto an active queue only
// grows the backlog; a second loop is never spawned.
func (q *AnalysisQueue) Enqueue(frames []*model.Frame) {
	q.mu.Lock()
	q.backlog = append(q.backlog, frames...)
	start := !q.running && len(q.backlog) > 0
	if start {
		q.running = true
	}
	q.mu.Unlock()
	if start {
		go q.drain()
	}
}

// Clear empties the backlog. An in-flight analysis finishes naturally and
// its result is still delivered, but the loop halts at the next iteration
// when it observes the empty backlog.
func (q *AnalysisQueue) Clear() {
	q.mu.Lock()
	q.backlog = nil
	q.mu.Unlock()
}

// Pending returns the number of frames waiting in the backlog.
func (q *AnalysisQueue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.backlog)
}

// Active reports whether a drain loop is currently running.
func (q *AnalysisQueue) Active() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.running
}

// drain is the single active processing loop.
func (q *AnalysisQueue) drain() {
	for {
		q.mu.Lock()
		if len(q.backlog) == 0 {
			q.running = false
			q.mu.Unlock()
			return
		}

		// Quota gate. Checked before every dequeue so exhaustion abandons
		// the batch immediately.
		if q.quota.Read().Remaining <= 0 {
			notify := !q.quotaNotified
			q.quotaNotified = true
			q.backlog = nil
			q.running = false
			q.mu.Unlock()
			if notify {
				slog.Warn("daily frame quota exhausted, abandoning backlog")
				q.onComplete(FrameCompletion{FrameID: QuotaSentinelID, Description: QuotaExceededDescription})
			}
			return
		}

		frame := q.backlog[0]
		q.backlog = q.backlog[1:]
		q.mu.Unlock()

		q.frameMu.Lock()
		frame.Status = model.FrameStatusAnalyzing
		q.frameMu.Unlock()

		// Usage is charged per attempt, before the call, so a failed call
		// still consumes quota.
		q.quota.Increment()

		start := time.Now()
		description, err := q.analyze(q.ctx, frame)
		if err != nil {
			slog.Warn("frame analysis failed", "frame", frame.ID, "error", err)
			description = fmt.Sprintf("%s failed to analyze frame %d", model.ErrorMarker, frame.ID)
		}
		elapsed := time.Since(start)

		q.frameMu.Lock()
		frame.Description = description
		frame.Status = model.FrameStatusCompleted
		q.frameMu.Unlock()
		q.onComplete(FrameCompletion{FrameID: frame.ID, Description: description})

		// Pace the next request only when there is one; the final frame of
		// a batch should not pay the spacing delay.
		q.mu.Lock()
		more := len(q.backlog) > 0
		q.mu.Unlock()
		if more && elapsed < q.interval {
			q.sleep(q.interval - elapsed)
		}
	}
}
