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
// This file implements the SpeechSynthesizer, which converts narration text
// into a playable WAV payload through a TTS model. The voice is picked from
// the settings snapshot by gender and tone; the ASMR tone always overrides
// to the softest voice of the chosen gender.
package services

import (
	"context"
	"errors"
	"strings"

	"github.com/jaycherian/gcp-go-video-narrator/internal/cloud"
	"github.com/jaycherian/gcp-go-video-narrator/internal/core/media"
	"github.com/jaycherian/gcp-go-video-narrator/internal/core/model"
)

// ErrEmptyScript is returned when synthesis is requested with no narration
// text. The synthesizer never silently produces empty audio.
var ErrEmptyScript = errors.New("cannot generate speech: commentary text is empty")

// Prebuilt Gemini TTS voice names.
const (
	VoiceKore   = "Kore"   // Soft, calm female.
	VoiceCharon = "Charon" // Deep, steady male.
	VoicePuck   = "Puck"   // Lighter, energetic male.
	VoiceFenrir = "Fenrir" // Standard assertive male.
)

// SelectVoice maps a settings snapshot to a prebuilt voice name.
func SelectVoice(settings model.CommentarySettings) string {
	// ASMR always wins: the softest voice of the chosen gender.
	if settings.Tone == model.ToneASMR {
		if settings.VoiceGender == model.VoiceFemale {
			return VoiceKore
		}
		return VoiceCharon
	}
	if settings.VoiceGender == model.VoiceFemale {
		// Kore is the only dedicated female voice available.
		return VoiceKore
	}
	switch settings.Tone {
	case model.ToneCalm:
		return VoiceCharon
	case model.ToneExcited:
		return VoicePuck
	default:
		return VoiceFenrir
	}
}

// SpeechSynthesizer produces WAV audio through a speech model.
type SpeechSynthesizer struct {
	Model cloud.SpeechModel
}

// NewSpeechSynthesizer constructs a synthesizer over the given speech model.
func NewSpeechSynthesizer(m cloud.SpeechModel) *SpeechSynthesizer {
	return &SpeechSynthesizer{Model: m}
}

// Synthesize converts narration text into a playable WAV payload.
//
// Inputs:
//   - ctx: The request context.
//   - text: The narration text; must be non-empty.
//   - settings: The settings snapshot used to select the voice.
//
// Outputs:
//   - []byte: A complete WAV file (header plus PCM samples).
//   - error: ErrEmptyScript when text is blank, or the model's error.
func (s *SpeechSynthesizer) Synthesize(ctx context.Context, text string, settings model.CommentarySettings) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyScript
	}
	pcm, err := s.Model.Synthesize(ctx, text, SelectVoice(settings))
	if err != nil {
		return nil, err
	}
	return media.WrapPCM(pcm), nil
}
