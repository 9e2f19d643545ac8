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

// Package media provides container and interchange-format helpers for the
// narrator's outputs. This file implements the SubRip (SRT) subtitle format:
// sequential cue blocks, each consisting of a 1-based index, a
// `start --> end` timestamp line in HH:MM:SS,mmm form, and the cue text,
// separated by blank lines.
package media

import (
	"fmt"
	"strings"

	"github.com/jaycherian/gcp-go-video-narrator/internal/core/model"
)

// FormatSRTTime renders a seconds value as an SRT timestamp.
// Example: 65.25 -> "00:01:05,250".
func FormatSRTTime(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	whole := int(seconds)
	millis := int((seconds - float64(whole)) * 1000.0)
	hours := whole / 3600
	minutes := (whole % 3600) / 60
	secs := whole % 60
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, millis)
}

// GenerateSRT renders an ordered cue list as a complete SRT track.
// Cue indices are 1-based per the format.
func GenerateSRT(cues []*model.SubtitleCue) string {
	var b strings.Builder
	for i, cue := range cues {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%d\n%s --> %s\n%s\n", i+1, FormatSRTTime(cue.Start), FormatSRTTime(cue.End), cue.Text)
	}
	return b.String()
}
