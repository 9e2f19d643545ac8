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
// This file implements the FinalizationController, a small finite-state
// machine that decides when the downstream synthesis pass (script plus
// speech) may begin, and guarantees it begins at most once per batch of
// frames.
//
// The controller observes snapshots of batch state on every relevant event.
// When a snapshot shows a non-empty, fully-terminal frame set with no
// commentary published, no synthesis in flight, and no standing error, and
// finalization has not already been attempted for this batch, the controller
// marks the attempt immediately (before any asynchronous work runs) and
// fires the runner. The attempted flag is what makes redundant or repeated
// observations harmless.
package services

import (
	"log/slog"
	"sync"
)

// FinalizationState names a position in the controller's state machine.
type FinalizationState int

const (
	// StateIdle: no frames exist (fresh process or after a reset).
	StateIdle FinalizationState = iota
	// StateAwaitingFrames: frames exist but not all have settled.
	StateAwaitingFrames
	// StateFinalizing: the synthesis pass is in flight.
	StateFinalizing
	// StateDone: a commentary result was published.
	StateDone
	// StateErrored: the synthesis pass failed; a regenerate or reset is
	// required before another attempt.
	StateErrored
)

// String renders the state for logs.
func (s FinalizationState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingFrames:
		return "awaiting-frames"
	case StateFinalizing:
		return "finalizing"
	case StateDone:
		return "done"
	case StateErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// BatchSnapshot is the controller's view of the batch at one instant. The
// orchestrator builds a fresh snapshot on every status change and hands it
// to Observe.
type BatchSnapshot struct {
	HasFrames         bool // At least one frame was extracted.
	AllTerminal       bool // Every frame has a terminal status.
	CommentaryPresent bool // A result has already been published.
	Synthesizing      bool // A synthesis pass is currently in flight.
	ErrorPresent      bool // A classified error is standing.
}

// FinalizationController gates the one-shot synthesis pass. The runner is
// started on its own goroutine; its outcome is reported back through
// Complete.
type FinalizationController struct {
	mu        sync.Mutex
	state     FinalizationState
	attempted bool
	run       func()
}

// NewFinalizationController creates a controller that fires run when a
// snapshot satisfies the transition rule.
func NewFinalizationController(run func()) *FinalizationController {
	return &FinalizationController{state: StateIdle, run: run}
}

// State returns the controller's current position.
func (c *FinalizationController) State() FinalizationState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Attempted reports whether finalization has been started for the current
// batch.
func (c *FinalizationController) Attempted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.attempted
}

// Observe feeds the controller a fresh snapshot. If the transition rule is
// satisfied the attempt is recorded synchronously and the runner starts on
// a new goroutine; the method then reports true. All other observations
// only update the bookkeeping state and report false.
func (c *FinalizationController) Observe(s BatchSnapshot) bool {
	c.mu.Lock()

	switch {
	case !s.HasFrames:
		c.state = StateIdle
	case !s.AllTerminal:
		c.state = StateAwaitingFrames
	}

	fire := s.HasFrames && s.AllTerminal &&
		!s.CommentaryPresent && !s.Synthesizing && !s.ErrorPresent &&
		!c.attempted

	if fire {
		// Set before the asynchronous work begins so a second observation
		// arriving mid-flight cannot start a duplicate pass.
		c.attempted = true
		c.state = StateFinalizing
	}
	run := c.run
	c.mu.Unlock()

	if fire {
		slog.Info("finalization starting")
		go run()
	}
	return fire
}

// Complete records the outcome of a finalization pass.
func (c *FinalizationController) Complete(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.state = StateErrored
		return
	}
	c.state = StateDone
}

// Regenerate clears the attempt record so the transition rule can fire once
// more against the same (already terminal) frame set. The caller is
// responsible for discarding the published result and any standing error
// before the next Observe.
func (c *FinalizationController) Regenerate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.attempted = false
	c.state = StateAwaitingFrames
}

// Reset returns the controller to its initial state. Used when a new video
// replaces the current batch.
func (c *FinalizationController) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.attempted = false
	c.state = StateIdle
}
