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

// Package model defines the core data structures for the application.
// This file contains the Frame type, which represents a single sampled
// instant of an uploaded video as it moves through the analysis pipeline:
// extraction produces frames in the `pending` state, the analysis queue
// drives each one to a terminal state, and the finalization controller
// consumes the settled batch.
package model

import "strings"

// FrameStatus describes where a frame is in its lifecycle. Transitions only
// move forward: a frame never returns to `pending` once the queue has
// picked it up.
type FrameStatus string

const (
	FrameStatusPending   FrameStatus = "pending"   // Created by extraction, waiting in the backlog.
	FrameStatusAnalyzing FrameStatus = "analyzing" // Currently held by the drain loop.
	FrameStatusCompleted FrameStatus = "completed" // Terminal. The description may still carry an error marker.
	FrameStatusError     FrameStatus = "error"     // Terminal. Set on frames abandoned when the daily quota runs out.
)

// ErrorMarker is the prefix used for descriptions that record a failed
// analysis attempt instead of real model output. The analysis queue
// substitutes marker text rather than propagating the failure, so a frame
// always reaches a terminal state. Downstream filtering keys off this
// prefix when selecting frames worth narrating.
const ErrorMarker = "Error:"

// Frame represents one sampled video instant.
type Frame struct {
	ID          int         `json:"id"`          // Unique within a batch, assigned monotonically at extraction time.
	Time        float64     `json:"time"`        // Timestamp in seconds from the start of the video.
	Data        []byte      `json:"-"`           // JPEG image payload. Excluded from API responses; it is large and transient.
	Description string      `json:"description"` // Vision model output, or marker text on failure.
	Status      FrameStatus `json:"status"`
}

// NewFrame creates a frame in the pending state.
func NewFrame(id int, timeSeconds float64, data []byte) *Frame {
	return &Frame{
		ID:     id,
		Time:   timeSeconds,
		Data:   data,
		Status: FrameStatusPending,
	}
}

// IsTerminal reports whether the frame has settled and will not change again.
func (f *Frame) IsTerminal() bool {
	return f.Status == FrameStatusCompleted || f.Status == FrameStatusError
}

// HasValidDescription reports whether the frame produced usable model output:
// a non-empty description that does not carry the error marker.
func (f *Frame) HasValidDescription() bool {
	return len(strings.TrimSpace(f.Description)) > 0 && !strings.Contains(f.Description, ErrorMarker)
}

// AllTerminal reports whether every frame in the batch has reached a
// terminal status. An empty batch returns false; the finalization trigger
// requires at least one frame to exist.
func AllTerminal(frames []*Frame) bool {
	if len(frames) == 0 {
		return false
	}
	for _, f := range frames {
		if !f.IsTerminal() {
			return false
		}
	}
	return true
}

// ValidFrames returns the frames with usable descriptions, preserving
// extraction order. Timestamps in the result ascend because frames are
// sampled in time order.
func ValidFrames(frames []*Frame) []*Frame {
	out := make([]*Frame, 0, len(frames))
	for _, f := range frames {
		if f.HasValidDescription() {
			out = append(out, f)
		}
	}
	return out
}

// TimedText is one (timestamp, description) entry of the ordered list handed
// to the script generator.
type TimedText struct {
	Time float64 `json:"time"` // Seconds from the start of the video.
	Text string  `json:"text"`
}
