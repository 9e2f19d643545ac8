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

// Package model_test contains unit tests for the data models defined in the
// model package. This file tests the frame lifecycle predicates and the
// batch-level helpers the finalization trigger depends on.
package model_test

import (
	"testing"

	"github.com/jaycherian/gcp-go-video-narrator/internal/core/model"
	"github.com/stretchr/testify/assert"
)

// TestNewFrame verifies that a freshly extracted frame starts pending with
// its identifier, timestamp, and payload assigned.
func TestNewFrame(t *testing.T) {
	frame := model.NewFrame(3, 6.0, []byte{0xFF, 0xD8})

	assert.Equal(t, 3, frame.ID)
	assert.Equal(t, 6.0, frame.Time)
	assert.Equal(t, model.FrameStatusPending, frame.Status)
	assert.False(t, frame.IsTerminal())
}

// TestFrameIsTerminal verifies that only the completed and error statuses
// count as terminal.
func TestFrameIsTerminal(t *testing.T) {
	frame := model.NewFrame(0, 0, nil)

	frame.Status = model.FrameStatusAnalyzing
	assert.False(t, frame.IsTerminal())

	frame.Status = model.FrameStatusCompleted
	assert.True(t, frame.IsTerminal())

	frame.Status = model.FrameStatusError
	assert.True(t, frame.IsTerminal())
}

// TestHasValidDescription verifies that blank descriptions and descriptions
// carrying the error marker are rejected as script input.
func TestHasValidDescription(t *testing.T) {
	frame := model.NewFrame(0, 0, nil)

	// Blank and whitespace-only descriptions are unusable.
	assert.False(t, frame.HasValidDescription())
	frame.Description = "   "
	assert.False(t, frame.HasValidDescription())

	// A failed analysis substitutes marker text; it must not reach the
	// script generator.
	frame.Description = model.ErrorMarker + " failed to analyze frame 0"
	assert.False(t, frame.HasValidDescription())

	frame.Description = model.GetExampleFrameDescription()
	assert.True(t, frame.HasValidDescription())
}

// TestAllTerminal verifies the batch settlement predicate, including the
// empty-batch rule: finalization requires at least one frame, so an empty
// slice is never "all terminal".
func TestAllTerminal(t *testing.T) {
	assert.False(t, model.AllTerminal(nil))
	assert.False(t, model.AllTerminal([]*model.Frame{}))

	a := model.NewFrame(0, 0, nil)
	b := model.NewFrame(1, 1, nil)
	frames := []*model.Frame{a, b}

	assert.False(t, model.AllTerminal(frames))

	a.Status = model.FrameStatusCompleted
	assert.False(t, model.AllTerminal(frames))

	b.Status = model.FrameStatusError
	assert.True(t, model.AllTerminal(frames))
}

// TestValidFrames verifies that filtering keeps extraction order and drops
// only the unusable frames.
func TestValidFrames(t *testing.T) {
	a := model.NewFrame(0, 0, nil)
	a.Description = "A harbor at dawn."
	b := model.NewFrame(1, 2, nil)
	b.Description = model.ErrorMarker + " failed to analyze frame 1"
	c := model.NewFrame(2, 4, nil)
	c.Description = "A boat leaves the pier."

	valid := model.ValidFrames([]*model.Frame{a, b, c})

	assert.Len(t, valid, 2)
	assert.Equal(t, 0, valid[0].ID)
	assert.Equal(t, 2, valid[1].ID)
}

// TestFindOption verifies the option lookup used to validate settings
// updates and resolve language prompts.
func TestFindOption(t *testing.T) {
	lang, ok := model.FindOption(model.Languages, model.LanguagePashto)
	assert.True(t, ok)
	assert.Equal(t, "Pashto", lang.Prompt)

	_, ok = model.FindOption(model.Languages, "xx-XX")
	assert.False(t, ok)
}

// TestDefaultSettings verifies the settings a fresh session starts with.
func TestDefaultSettings(t *testing.T) {
	settings := model.DefaultSettings()

	assert.Equal(t, model.LanguageEnglish, settings.Language)
	assert.Equal(t, model.ThemeStandard, settings.Theme)
	assert.Equal(t, model.ToneAssertive, settings.Tone)
	assert.Equal(t, model.VoiceMale, settings.VoiceGender)
	assert.NotNil(t, settings.Movie)
}
