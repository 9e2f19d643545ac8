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

// Package media_test contains unit tests for the media formatting helpers.
// This file covers the SRT subtitle rendering.
package media_test

import (
	"testing"

	"github.com/jaycherian/gcp-go-video-narrator/internal/core/media"
	"github.com/jaycherian/gcp-go-video-narrator/internal/core/model"
	"github.com/stretchr/testify/assert"
)

// TestFormatSRTTime verifies the seconds-to-timestamp conversion across
// sub-second precision, hour boundaries, and negative clamping.
func TestFormatSRTTime(t *testing.T) {
	assert.Equal(t, "00:00:00,000", media.FormatSRTTime(0))
	assert.Equal(t, "00:01:05,250", media.FormatSRTTime(65.25))
	assert.Equal(t, "01:00:01,500", media.FormatSRTTime(3601.5))
	// Negative times clamp to zero rather than producing a malformed stamp.
	assert.Equal(t, "00:00:00,000", media.FormatSRTTime(-3))
}

// TestGenerateSRT verifies a complete two-cue track byte for byte: 1-based
// indices, comma-separated milliseconds, and a blank line between cues.
func TestGenerateSRT(t *testing.T) {
	cues := []*model.SubtitleCue{
		{Start: 0, End: 2.5, Text: "A lone cyclist waits in the rain."},
		{Start: 2.5, End: 65.25, Text: "The light turns green."},
	}

	expected := "1\n" +
		"00:00:00,000 --> 00:00:02,500\n" +
		"A lone cyclist waits in the rain.\n" +
		"\n" +
		"2\n" +
		"00:00:02,500 --> 00:01:05,250\n" +
		"The light turns green.\n"

	assert.Equal(t, expected, media.GenerateSRT(cues))
}

// TestGenerateSRTEmpty verifies that an empty cue list produces an empty
// track instead of a stray index line.
func TestGenerateSRTEmpty(t *testing.T) {
	assert.Equal(t, "", media.GenerateSRT(nil))
}
