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

// Package cloud provides components for interacting with Google Cloud services.
// This file defines narrow model interfaces consumed by the pipeline services,
// plus the adapters that back them with the quota-aware genai wrappers. The
// pipeline only ever sees these interfaces, which keeps the Gemini plumbing in
// one place and lets tests substitute fakes.
package cloud

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"google.golang.org/genai"
)

// tokenCounters creates the per-adapter OpenTelemetry counters fed into
// GenerateMultiModalResponse.
func tokenCounters(name string) (input, output, retries metric.Int64Counter) {
	meter := otel.Meter("github.com/jaycherian/gcp-go-video-narrator")
	input, _ = meter.Int64Counter(fmt.Sprintf("%s.gemini.token.input", name))
	output, _ = meter.Int64Counter(fmt.Sprintf("%s.gemini.token.output", name))
	retries, _ = meter.Int64Counter(fmt.Sprintf("%s.gemini.retry", name))
	return input, output, retries
}

// VisionModel describes a single video frame.
type VisionModel interface {
	Describe(ctx context.Context, jpeg []byte, prompt string) (string, error)
}

// TextModel generates free-form text from a prompt.
type TextModel interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// SpeechModel converts script text into raw PCM audio using a named
// prebuilt voice.
type SpeechModel interface {
	Synthesize(ctx context.Context, text string, voiceName string) ([]byte, error)
}

// GeminiVisionModel adapts a quota-aware model to the VisionModel interface.
type GeminiVisionModel struct {
	Model              *QuotaAwareGenerativeAIModel
	inputTokenCounter  metric.Int64Counter
	outputTokenCounter metric.Int64Counter
	retryCounter       metric.Int64Counter
}

// NewGeminiVisionModel wraps a quota-aware model as a VisionModel with its
// own token and retry counters.
func NewGeminiVisionModel(model *QuotaAwareGenerativeAIModel) *GeminiVisionModel {
	out := &GeminiVisionModel{Model: model}
	out.inputTokenCounter, out.outputTokenCounter, out.retryCounter = tokenCounters("vision")
	return out
}

// Describe sends the frame image and instruction prompt to the vision model
// and returns its plain-text description.
func (g *GeminiVisionModel) Describe(ctx context.Context, jpeg []byte, prompt string) (string, error) {
	content := []*genai.Content{
		{
			Role: genai.RoleUser,
			Parts: []*genai.Part{
				NewJpegPart(jpeg),
				{Text: prompt},
			},
		},
	}
	return GenerateMultiModalResponse(ctx, g.inputTokenCounter, g.outputTokenCounter, g.retryCounter, 0, g.Model, content)
}

// GeminiTextModel adapts a quota-aware model to the TextModel interface.
type GeminiTextModel struct {
	Model              *QuotaAwareGenerativeAIModel
	inputTokenCounter  metric.Int64Counter
	outputTokenCounter metric.Int64Counter
	retryCounter       metric.Int64Counter
}

// NewGeminiTextModel wraps a quota-aware model as a TextModel with its own
// token and retry counters.
func NewGeminiTextModel(model *QuotaAwareGenerativeAIModel) *GeminiTextModel {
	out := &GeminiTextModel{Model: model}
	out.inputTokenCounter, out.outputTokenCounter, out.retryCounter = tokenCounters("script")
	return out
}

// GenerateText sends the prompt to the model and returns the concatenated
// candidate text with any markdown fence stripped.
func (g *GeminiTextModel) GenerateText(ctx context.Context, prompt string) (string, error) {
	return GenerateMultiModalResponse(ctx, g.inputTokenCounter, g.outputTokenCounter, g.retryCounter, 0, g.Model, NewTextPart(prompt))
}

// GeminiSpeechModel adapts a quota-aware model to the SpeechModel interface.
type GeminiSpeechModel struct {
	Model *QuotaAwareGenerativeAIModel
}

// NewGeminiSpeechModel wraps a quota-aware model as a SpeechModel.
func NewGeminiSpeechModel(model *QuotaAwareGenerativeAIModel) *GeminiSpeechModel {
	return &GeminiSpeechModel{Model: model}
}

// Synthesize delegates to the wrapper's speech call path.
func (g *GeminiSpeechModel) Synthesize(ctx context.Context, text string, voiceName string) ([]byte, error) {
	return g.Model.GenerateSpeech(ctx, text, voiceName)
}
