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

// Package commands provides the concrete implementations of the Chain of
// Responsibility (COR) pattern's Command interface. This file defines the
// first step of the finalization chain: filtering the frame batch down to
// the frames whose descriptions are usable as script input.
//
// Logic Flow:
//  1. Take the full frame batch from the chain input.
//  2. Keep frames with a non-empty description free of the error marker.
//  3. If nothing survives, fail the chain with a condition that tells the
//     caller whether the batch was empty to begin with ("no frames") or
//     every frame individually failed ("analysis failed"), since those
//     point at very different problems.
//  4. Otherwise emit the ordered (timestamp, text) timeline for the script
//     generator, preserving extraction order.
package commands

import (
	"github.com/jaycherian/gcp-go-video-narrator/internal/core/cor"
	"github.com/jaycherian/gcp-go-video-narrator/internal/core/model"
	"github.com/jaycherian/gcp-go-video-narrator/internal/core/services"
)

// ValidFrameFilter reduces a frame batch to its script-ready timeline.
type ValidFrameFilter struct {
	cor.BaseCommand
}

// NewValidFrameFilter is the constructor for ValidFrameFilter.
//
// Inputs:
//   - name: A string name for this command instance, used for logging and telemetry.
//
// Outputs:
//   - *ValidFrameFilter: A pointer to the newly instantiated command.
func NewValidFrameFilter(name string) *ValidFrameFilter {
	return &ValidFrameFilter{BaseCommand: *cor.NewBaseCommand(name)}
}

// Execute filters the frame batch and emits the (timestamp, text) timeline.
//
// Inputs:
//   - context: The shared `cor.Context` for this workflow execution.
func (c *ValidFrameFilter) Execute(context cor.Context) {
	frames := context.Get(c.GetInputParam()).([]*model.Frame)
	context.Add(CtxFrameCountParam, len(frames))

	valid := model.ValidFrames(frames)
	if len(valid) == 0 {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		if len(frames) == 0 {
			context.AddError(c.GetName(), services.ErrNoFramesExtracted)
		} else {
			context.AddError(c.GetName(), services.ErrAllFramesFailed)
		}
		return
	}

	timeline := make([]model.TimedText, 0, len(valid))
	for _, frame := range valid {
		timeline = append(timeline, model.TimedText{Time: frame.Time, Text: frame.Description})
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(c.GetOutputParam(), timeline)
}
