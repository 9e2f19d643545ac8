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
// script generation step of the finalization chain: the frame timeline and
// the settings snapshot go in, narration text and a subtitle track come out.
// A model failure here aborts the chain so no audio is produced for a
// missing script.
package commands

import (
	"github.com/jaycherian/gcp-go-video-narrator/internal/core/cor"
	"github.com/jaycherian/gcp-go-video-narrator/internal/core/model"
	"github.com/jaycherian/gcp-go-video-narrator/internal/core/services"
)

// ScriptGenerate calls the script generator collaborator.
type ScriptGenerate struct {
	cor.BaseCommand
	generator *services.ScriptGenerator
}

// NewScriptGenerate is the constructor for ScriptGenerate.
//
// Inputs:
//   - name: A string name for this command instance, used for logging and telemetry.
//   - generator: The script generation service backed by the text model.
//
// Outputs:
//   - *ScriptGenerate: A pointer to the newly instantiated command.
func NewScriptGenerate(name string, generator *services.ScriptGenerator) *ScriptGenerate {
	return &ScriptGenerate{BaseCommand: *cor.NewBaseCommand(name), generator: generator}
}

// Execute generates the narration script from the frame timeline.
//
// Inputs:
//   - context: The shared `cor.Context` for this workflow execution.
func (c *ScriptGenerate) Execute(context cor.Context) {
	timeline := context.Get(c.GetInputParam()).([]model.TimedText)
	settings := context.Get(CtxSettingsParam).(model.CommentarySettings)

	text, subtitles, err := c.generator.Generate(context.GetContext(), timeline, settings)
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), err)
		return
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(c.GetOutputParam(), &model.CommentaryResult{Text: text, Subtitles: subtitles})
}
