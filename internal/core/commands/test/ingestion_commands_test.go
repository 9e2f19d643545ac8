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

// Package commands_test contains unit tests for the chain commands. This
// file covers the pure parts of the ingestion and finalization chains: the
// duration-based sampling tiers and the valid-frame filter's error
// classification.
package commands_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jaycherian/gcp-go-video-narrator/internal/core/commands"
	"github.com/jaycherian/gcp-go-video-narrator/internal/core/cor"
	"github.com/jaycherian/gcp-go-video-narrator/internal/core/model"
	"github.com/jaycherian/gcp-go-video-narrator/internal/core/services"
	test "github.com/jaycherian/gcp-go-video-narrator/internal/testutil"
	"github.com/zeebo/assert"
)

// newChainContext builds a chain context with a live Go context, as the
// BaseChain would before executing a command.
func newChainContext() cor.Context {
	ctx := cor.NewBaseContext()
	ctx.SetContext(context.Background())
	return ctx
}

// TestSamplingInterval verifies the three sampling tiers: dense for short
// clips, sparser as duration grows.
func TestSamplingInterval(t *testing.T) {
	assert.Equal(t, 1.0, commands.SamplingInterval(10))
	assert.Equal(t, 1.0, commands.SamplingInterval(60))
	assert.Equal(t, 2.0, commands.SamplingInterval(61))
	assert.Equal(t, 2.0, commands.SamplingInterval(300))
	assert.Equal(t, 5.0, commands.SamplingInterval(301))
	assert.Equal(t, 5.0, commands.SamplingInterval(7200))
}

// TestValidFrameFilterTimeline verifies that usable frames become an
// ordered (timestamp, text) timeline on the chain output.
func TestValidFrameFilterTimeline(t *testing.T) {
	ctx := newChainContext()
	frames := test.GetTestFrameBatch(3, 2.0)
	for i, timed := range test.GetTestTimeline() {
		frames[i].Description = timed.Text
		frames[i].Status = model.FrameStatusCompleted
	}
	// One frame failed analysis and must be dropped.
	frames[1].Description = model.ErrorMarker + " failed to analyze frame 1"
	ctx.Add(cor.CtxIn, frames)

	filter := commands.NewValidFrameFilter("filter-valid-frames")
	filter.Execute(ctx)

	assert.False(t, ctx.HasErrors())
	timeline := ctx.Get(cor.CtxOut).([]model.TimedText)
	assert.Equal(t, 2, len(timeline))
	assert.Equal(t, 0.0, timeline[0].Time)
	assert.Equal(t, 4.0, timeline[1].Time)
	assert.Equal(t, 3, ctx.Get(commands.CtxFrameCountParam).(int))
}

// TestValidFrameFilterEmptyBatch verifies the no-frames classification.
func TestValidFrameFilterEmptyBatch(t *testing.T) {
	ctx := newChainContext()
	ctx.Add(cor.CtxIn, []*model.Frame{})

	filter := commands.NewValidFrameFilter("filter-valid-frames")
	filter.Execute(ctx)

	assert.True(t, ctx.HasErrors())
	assert.True(t, errors.Is(ctx.FirstError(), services.ErrNoFramesExtracted))
}

// TestValidFrameFilterAllFailed verifies the all-failed classification for
// a non-empty batch with no usable descriptions.
func TestValidFrameFilterAllFailed(t *testing.T) {
	ctx := newChainContext()
	frames := test.GetTestFrameBatch(2, 1.0)
	for _, frame := range frames {
		frame.Description = model.ErrorMarker + " failed to analyze frame"
		frame.Status = model.FrameStatusCompleted
	}
	ctx.Add(cor.CtxIn, frames)

	filter := commands.NewValidFrameFilter("filter-valid-frames")
	filter.Execute(ctx)

	assert.True(t, ctx.HasErrors())
	assert.True(t, errors.Is(ctx.FirstError(), services.ErrAllFramesFailed))
}
