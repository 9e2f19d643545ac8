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
// last step of the ingestion chain, which loads the extracted stills into
// Frame structs. Identifiers are assigned monotonically from zero and each
// frame's timestamp is its ordinal times the sampling interval, matching
// the order ffmpeg wrote the files.
package commands

import (
	"os"

	"github.com/jaycherian/gcp-go-video-narrator/internal/core/cor"
	"github.com/jaycherian/gcp-go-video-narrator/internal/core/model"
)

// FrameAssembly turns extracted still files into a pending frame batch.
type FrameAssembly struct {
	cor.BaseCommand
}

// NewFrameAssembly is the constructor for FrameAssembly. The finished batch
// is stored under outputParamName so the orchestrator can read it after the
// chain completes.
//
// Inputs:
//   - name: A string name for this command instance, used for logging and telemetry.
//   - outputParamName: The context key for the assembled frame batch.
//
// Outputs:
//   - *FrameAssembly: A pointer to the newly instantiated command.
func NewFrameAssembly(name string, outputParamName string) *FrameAssembly {
	cmd := &FrameAssembly{BaseCommand: *cor.NewBaseCommand(name)}
	cmd.OutputParamName = outputParamName
	return cmd
}

// Execute reads the extracted stills into Frame structs.
//
// Inputs:
//   - context: The shared `cor.Context` for this workflow execution.
func (c *FrameAssembly) Execute(context cor.Context) {
	extracted := context.Get(c.GetInputParam()).(*ExtractedFrames)

	frames := make([]*model.Frame, 0, len(extracted.Paths))
	for i, path := range extracted.Paths {
		data, err := os.ReadFile(path)
		if err != nil {
			c.GetErrorCounter().Add(context.GetContext(), 1)
			context.AddError(c.GetName(), err)
			return
		}
		frames = append(frames, model.NewFrame(i, float64(i)*extracted.Interval, data))
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(c.GetOutputParam(), frames)
}
