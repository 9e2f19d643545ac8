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
// speech synthesis step of the finalization chain: the generated script
// comes in, the same result leaves with the WAV payload attached. A
// synthesis failure aborts the chain; the script and subtitles computed so
// far are deliberately not published without audio.
package commands

import (
	"github.com/jaycherian/gcp-go-video-narrator/internal/core/cor"
	"github.com/jaycherian/gcp-go-video-narrator/internal/core/model"
	"github.com/jaycherian/gcp-go-video-narrator/internal/core/services"
)

// SpeechSynthesize calls the speech synthesizer collaborator.
type SpeechSynthesize struct {
	cor.BaseCommand
	synthesizer *services.SpeechSynthesizer
}

// NewSpeechSynthesize is the constructor for SpeechSynthesize.
//
// Inputs:
//   - name: A string name for this command instance, used for logging and telemetry.
//   - synthesizer: The speech synthesis service backed by the TTS model.
//
// Outputs:
//   - *SpeechSynthesize: A pointer to the newly instantiated command.
func NewSpeechSynthesize(name string, synthesizer *services.SpeechSynthesizer) *SpeechSynthesize {
	return &SpeechSynthesize{BaseCommand: *cor.NewBaseCommand(name), synthesizer: synthesizer}
}

// Execute synthesizes audio for the generated script.
//
// Inputs:
//   - context: The shared `cor.Context` for this workflow execution.
func (c *SpeechSynthesize) Execute(context cor.Context) {
	result := context.Get(c.GetInputParam()).(*model.CommentaryResult)
	settings := context.Get(CtxSettingsParam).(model.CommentarySettings)

	audio, err := c.synthesizer.Synthesize(context.GetContext(), result.Text, settings)
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), err)
		return
	}

	result.Audio = audio
	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(c.GetOutputParam(), result)
}
