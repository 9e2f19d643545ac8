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
// business logic. This file tests the script generator: the word budget,
// the prompt assembly rules, and the defensive response parsing.
package services_test

import (
	"strings"
	"testing"

	"github.com/jaycherian/gcp-go-video-narrator/internal/core/model"
	"github.com/jaycherian/gcp-go-video-narrator/internal/core/services"
	test "github.com/jaycherian/gcp-go-video-narrator/internal/testutil"
	"github.com/stretchr/testify/assert"
)

// TestTargetWordCount verifies the duration-to-words budget, including the
// slower ASMR pacing and the clamping at both ends.
func TestTargetWordCount(t *testing.T) {
	// 100 seconds at standard pacing.
	assert.Equal(t, 220, services.TargetWordCount(100, model.ToneAssertive))
	// The same duration paced for ASMR yields fewer words.
	assert.Equal(t, 150, services.TargetWordCount(100, model.ToneASMR))
	// Very short videos clamp up to the floor.
	assert.Equal(t, 30, services.TargetWordCount(2, model.ToneAssertive))
	// Very long videos clamp down to the ceiling.
	assert.Equal(t, 800, services.TargetWordCount(3600, model.ToneAssertive))
	// A non-positive duration falls back to the one-minute default.
	assert.Equal(t, 132, services.TargetWordCount(0, model.ToneAssertive))
}

// TestBuildPromptTimeline verifies that each frame appears as a bracketed
// timestamp line in the prompt.
func TestBuildPromptTimeline(t *testing.T) {
	prompt := services.BuildPrompt(test.GetTestTimeline(), model.DefaultSettings())

	assert.Contains(t, prompt, "[0s]: A cyclist in a yellow jacket waits at a rain-soaked intersection.")
	assert.Contains(t, prompt, "[2s]: The light turns green and the cyclist pushes off into traffic.")
	assert.Contains(t, prompt, "Output strictly in English.")
	// The default settings have no explicit context, so the model is asked
	// to infer one.
	assert.Contains(t, prompt, "CONTEXT INFERENCE")
}

// TestBuildPromptASMR verifies that the ASMR tone injects its fixed style
// block and overrides any other context source.
func TestBuildPromptASMR(t *testing.T) {
	settings := model.DefaultSettings()
	settings.Tone = model.ToneASMR
	settings.VideoContext = "A cooking show"

	prompt := services.BuildPrompt(test.GetTestTimeline(), settings)

	assert.Contains(t, prompt, "STYLE: ASMR.")
	assert.Contains(t, prompt, "as if whispering")
	assert.NotContains(t, prompt, "A cooking show")
}

// TestBuildPromptMovie verifies the movie context line with title and
// character substitution.
func TestBuildPromptMovie(t *testing.T) {
	settings := model.DefaultSettings()
	settings.Theme = model.ThemeMovie
	settings.Movie = &model.MovieConfig{Title: "The Last Harbor", CharacterName: "Mira"}

	prompt := services.BuildPrompt(test.GetTestTimeline(), settings)

	assert.Contains(t, prompt, `CONTEXT: Cinematic Movie "The Last Harbor" starring "Mira". Narrate plot details.`)
}

// TestBuildPromptPashtoDialect verifies the dialect addendum that only the
// Pashto locale receives.
func TestBuildPromptPashtoDialect(t *testing.T) {
	settings := model.DefaultSettings()
	settings.Language = model.LanguagePashto

	prompt := services.BuildPrompt(test.GetTestTimeline(), settings)

	assert.Contains(t, prompt, "Output strictly in Pashto.")
	assert.Contains(t, prompt, "Use Peshawari (Pakistani) dialect Pashto/Pukhto.")
}

// TestParseScriptResponse verifies decoding of a well-formed payload into
// narration text and a rendered SRT track.
func TestParseScriptResponse(t *testing.T) {
	text, subtitles := services.ParseScriptResponse(test.GetTestScriptResponseText())

	assert.True(t, strings.HasPrefix(text, "A lone cyclist waits in the rain."))
	assert.Contains(t, subtitles, "1\n00:00:00,000 --> 00:00:02,000\nA lone cyclist waits in the rain.")
	assert.Contains(t, subtitles, "2\n00:00:02,000 --> 00:00:05,000")
}

// TestParseScriptResponseFencedJSON verifies that a markdown-fenced payload
// still decodes; models add fences despite instructions.
func TestParseScriptResponseFencedJSON(t *testing.T) {
	raw := "```json\n" + test.GetTestScriptResponseText() + "\n```"
	text, subtitles := services.ParseScriptResponse(raw)

	assert.True(t, strings.HasPrefix(text, "A lone cyclist waits in the rain."))
	assert.NotEmpty(t, subtitles)
}

// TestParseScriptResponseFallback verifies that a payload that is not valid
// JSON degrades to raw-text narration with no subtitle track.
func TestParseScriptResponseFallback(t *testing.T) {
	raw := "The narrator drones on without any structure."
	text, subtitles := services.ParseScriptResponse(raw)

	assert.Equal(t, raw, text)
	assert.Empty(t, subtitles)
}

// TestParseScriptResponseEmptyScript verifies that a structurally valid
// payload with an empty script field yields the failure placeholder.
func TestParseScriptResponseEmptyScript(t *testing.T) {
	text, subtitles := services.ParseScriptResponse(`{"script": "", "segments": []}`)

	assert.Equal(t, "Generation failed", text)
	assert.Empty(t, subtitles)
}
