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
// This file implements the ScriptGenerator, which turns an ordered list of
// timestamped frame descriptions plus a settings snapshot into a narration
// script and a subtitle track.
//
// The generator asks the language model for a JSON object holding the full
// script and a list of subtitle segments. Models sometimes return malformed
// JSON despite instructions, so the parse is defensive: on failure the whole
// raw response becomes the narration text and the subtitle track is left
// empty rather than failing the pass.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jaycherian/gcp-go-video-narrator/internal/cloud"
	"github.com/jaycherian/gcp-go-video-narrator/internal/core/media"
	"github.com/jaycherian/gcp-go-video-narrator/internal/core/model"
)

// Script length targets. The word budget scales with video duration and the
// chosen pacing, clamped to a sane range.
const (
	minScriptWords        = 30
	maxScriptWords        = 800
	wordsPerSecond        = 2.2
	asmrWordsPerSecond    = 1.5
	defaultScriptDuration = 60.0
)

// ScriptGenerator produces narration scripts through a text model.
type ScriptGenerator struct {
	Model cloud.TextModel
}

// NewScriptGenerator constructs a generator over the given text model.
func NewScriptGenerator(m cloud.TextModel) *ScriptGenerator {
	return &ScriptGenerator{Model: m}
}

// TargetWordCount computes the word budget for a video of the given
// duration under the given tone.
func TargetWordCount(duration float64, tone string) int {
	if duration <= 0 {
		duration = defaultScriptDuration
	}
	wps := wordsPerSecond
	if tone == model.ToneASMR {
		wps = asmrWordsPerSecond
	}
	words := int(duration * wps)
	if words < minScriptWords {
		words = minScriptWords
	}
	if words > maxScriptWords {
		words = maxScriptWords
	}
	return words
}

// BuildPrompt assembles the full Gemini prompt for a script pass.
//
// Inputs:
//   - timeline: Ordered (timestamp, description) pairs from the valid frames.
//   - settings: The immutable settings snapshot for this pass.
//
// Outputs:
//   - string: The prompt text.
func BuildPrompt(timeline []model.TimedText, settings model.CommentarySettings) string {
	duration := defaultScriptDuration
	if len(timeline) > 0 {
		duration = timeline[len(timeline)-1].Time
	}
	targetWords := TargetWordCount(duration, settings.Tone)

	lines := make([]string, 0, len(timeline))
	for _, t := range timeline {
		lines = append(lines, fmt.Sprintf("[%gs]: %s", t.Time, t.Text))
	}
	timelineText := strings.Join(lines, "\n")

	langPrompt := "English"
	if lang, ok := model.FindOption(model.Languages, settings.Language); ok {
		langPrompt = lang.Prompt
	}
	toneLabel := "Assertive"
	if tone, ok := model.FindOption(model.Tones, settings.Tone); ok {
		toneLabel = tone.Label
	}

	// The context block depends on the settings: ASMR has a fixed style
	// block, movie mode injects the title and character, otherwise the
	// user's free-text context is used, falling back to asking the model
	// to infer one from the frames.
	var contextInstruction string
	switch {
	case settings.Tone == model.ToneASMR:
		contextInstruction = `
        STYLE: ASMR.
        - Speak slowly, clearly, and softly, as if whispering.
        - Describe the scene in detail, including visual elements, motion, and subtle ambient details.
        - Add sensory words (e.g., "gentle rustle," "soft glow," "delicate movement").
        - Include slight pauses or phrasing that encourages a relaxed, immersive listening experience.
        - Avoid sudden loud words or abrupt statements.
        `
	case settings.Theme == model.ThemeMovie && settings.Movie != nil && settings.Movie.Title != "":
		contextInstruction = fmt.Sprintf("CONTEXT: Cinematic Movie %q starring %q. Narrate plot details.", settings.Movie.Title, settings.Movie.CharacterName)
	case settings.VideoContext != "":
		contextInstruction = "CONTEXT: " + settings.VideoContext
	default:
		contextInstruction = `
      CONTEXT INFERENCE:
      - Analyze the provided frame descriptions to infer the setting (e.g., indoors, nature, city), the mood (e.g., calm, chaotic, joyful), and the flow of action.
      - Use this inferred context to build a coherent narrative structure.
      `
	}

	langInstruction := fmt.Sprintf("Output strictly in %s.", langPrompt)
	if settings.Language == model.LanguagePashto {
		langInstruction += " Use Peshawari (Pakistani) dialect Pashto/Pukhto."
	}

	// Few-shot example: embedding a concrete instance of the expected JSON
	// keeps the model's output shape consistent across runs.
	example, _ := json.MarshalIndent(model.GetExampleScriptResponse(), "      ", "  ")

	return fmt.Sprintf(`
      ROLE: Expert video narrator.
      TASK: Generate a JSON response containing a cohesive voice-over script and a subtitle segmentation.

      INPUT DATA (Timeline):
      %s

      SETTINGS:
      - Language: %s
      - Tone: %s
      - Theme: %s
      - Length: ~%d words
      - Context Instruction: %s

      INSTRUCTIONS:
      1. Infer the story, mood, and setting from the input frames.
      2. Create a continuous 'script' text for the voice over.
      3. Create 'segments' for subtitles. Each segment must have a start time (seconds), end time (seconds), and text.
      4. Align segments roughly with the input timeline provided.

      IMPORTANT:
      - The output MUST be valid JSON.
      - Do not include markdown code blocks. Just the raw JSON object.

      OUTPUT FORMAT (JSON ONLY):
      %s
    `, timelineText, langInstruction, toneLabel, settings.Theme, targetWords, contextInstruction, string(example))
}

// ParseScriptResponse decodes the model's JSON payload into narration text
// and an SRT subtitle track. A payload that is not valid JSON degrades to
// raw-text-only output instead of an error.
func ParseScriptResponse(raw string) (text string, subtitles string) {
	clean := cloud.TrimMarkdownFence(raw)
	var parsed model.ScriptResponse
	if err := json.Unmarshal([]byte(clean), &parsed); err != nil {
		slog.Warn("script response was not valid JSON, falling back to raw text", "error", err)
		return raw, ""
	}
	text = parsed.Script
	if text == "" {
		text = "Generation failed"
	}
	if len(parsed.Segments) > 0 {
		subtitles = media.GenerateSRT(parsed.Segments)
	}
	return text, subtitles
}

// Generate runs a full script pass: build the prompt, call the model, and
// decode the result.
//
// Inputs:
//   - ctx: The request context.
//   - timeline: Ordered (timestamp, description) pairs from valid frames.
//   - settings: The settings snapshot for this pass.
//
// Outputs:
//   - string: The narration text.
//   - string: The SRT subtitle track (may be empty).
//   - error: An error if the model call itself failed.
func (g *ScriptGenerator) Generate(ctx context.Context, timeline []model.TimedText, settings model.CommentarySettings) (string, string, error) {
	prompt := BuildPrompt(timeline, settings)
	raw, err := g.Model.GenerateText(ctx, prompt)
	if err != nil {
		return "", "", err
	}
	text, subtitles := ParseScriptResponse(raw)
	return text, subtitles, nil
}
