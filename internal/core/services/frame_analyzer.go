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
// This file implements the FrameAnalyzer, the collaborator the Analysis
// Queue calls once per frame to obtain a one-line scene description.
package services

import (
	"context"
	"errors"

	"github.com/jaycherian/gcp-go-video-narrator/internal/cloud"
	"github.com/jaycherian/gcp-go-video-narrator/internal/core/model"
)

// DefaultFramePrompt is the instruction sent alongside each frame image
// when no template is configured.
const DefaultFramePrompt = "Describe this scene in one short sentence. Focus on action, setting, or key objects."

// FrameAnalyzer wraps a vision model with the frame description prompt.
type FrameAnalyzer struct {
	Model  cloud.VisionModel
	Prompt string
}

// NewFrameAnalyzer constructs an analyzer. An empty prompt falls back to
// DefaultFramePrompt.
func NewFrameAnalyzer(m cloud.VisionModel, prompt string) *FrameAnalyzer {
	if prompt == "" {
		prompt = DefaultFramePrompt
	}
	return &FrameAnalyzer{Model: m, Prompt: prompt}
}

// Analyze describes a single frame. It satisfies AnalyzeFunc.
func (a *FrameAnalyzer) Analyze(ctx context.Context, frame *model.Frame) (string, error) {
	if len(frame.Data) == 0 {
		return "", errors.New("frame has no image payload")
	}
	description, err := a.Model.Describe(ctx, frame.Data, a.Prompt)
	if err != nil {
		return "", err
	}
	if description == "" {
		return "Analysis failed.", nil
	}
	return description, nil
}
