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
// final step of the finalization chain, which validates the combined
// narration result and publishes it under the chain's named output key.
package commands

import (
	"errors"
	"log/slog"

	"github.com/jaycherian/gcp-go-video-narrator/internal/core/cor"
	"github.com/jaycherian/gcp-go-video-narrator/internal/core/model"
)

// ResultAssembly publishes the completed commentary under a stable key.
type ResultAssembly struct {
	cor.BaseCommand
}

// NewResultAssembly is the constructor for ResultAssembly. The completed
// result is stored under outputParamName so the orchestrator can read it
// after the chain finishes.
//
// Inputs:
//   - name: A string name for this command instance, used for logging and telemetry.
//   - outputParamName: The context key for the finished result.
//
// Outputs:
//   - *ResultAssembly: A pointer to the newly instantiated command.
func NewResultAssembly(name string, outputParamName string) *ResultAssembly {
	cmd := &ResultAssembly{BaseCommand: *cor.NewBaseCommand(name)}
	cmd.OutputParamName = outputParamName
	return cmd
}

// Execute validates and publishes the finished commentary result.
//
// Inputs:
//   - context: The shared `cor.Context` for this workflow execution.
func (c *ResultAssembly) Execute(context cor.Context) {
	result := context.Get(c.GetInputParam()).(*model.CommentaryResult)
	if result.Text == "" || len(result.Audio) == 0 {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), errors.New("incomplete commentary result"))
		return
	}
	slog.Info("commentary assembled",
		"script_chars", len(result.Text),
		"subtitle_chars", len(result.Subtitles),
		"audio_bytes", len(result.Audio))
	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(c.GetOutputParam(), result)
}
