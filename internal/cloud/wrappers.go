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
// This file implements a wrapper around the standard Generative AI client.
// This wrapper uses the Decorator design pattern to add extra functionality
// to an existing object without altering its code. Specifically, it adds
// rate limiting and a retry mechanism to the Generative AI model.
//
// Why this is important:
//   - Rate Limiting: Services like Vertex AI have quotas on how many requests
//     you can make per minute. This wrapper prevents the application from
//     exceeding those limits, which would otherwise result in errors.
//   - Retry Logic: Network requests can sometimes fail for transient reasons.
//     The wrapper automatically retries a failed request, making the application
//     more resilient and reliable.
//
// Structs:
//   - QuotaAwareGenerativeAIModel: A struct that wraps a configured genai model
//     reference and adds a rate limiter.
//
// Functions:
//   - NewQuotaAwareModel: A constructor to create a new instance of the wrapped model.
//   - GenerateContent: An overridden method that intercepts calls to the AI model
//     to enforce rate limiting and retries.
//   - GenerateSpeech: A speech-specific call path that requests audio output and
//     extracts the raw PCM payload from the response.
package cloud

import (
	"context"
	"errors"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

type retryCountKey struct{}

// QuotaAwareGenerativeAIModel is a decorator struct that pairs a generation
// config and model name with the genai model handle, adding rate-limiting on
// top. Callers interact with this wrapper exactly as they would with the raw
// handle, but requests are paced and retried.
type QuotaAwareGenerativeAIModel struct {
	GenerativeContentConfig *genai.GenerateContentConfig // The generation parameters applied to every request.
	ModelName               string                       // The Vertex AI model identifier.
	ModelHandle             *genai.Models                // The underlying genai model handle.
	RateLimit               *rate.Limiter                // Paces requests to stay inside the per-minute quota.
}

// NewQuotaAwareModel is a constructor function that creates a new
// QuotaAwareGenerativeAIModel. It takes the generation config, model name, and
// a rate limit in requests per minute, and returns the enhanced, quota-aware model.
//
// Inputs:
//   - wrapped: The generation config applied to each request.
//   - name: The Vertex AI model identifier.
//   - handle: The genai model handle used to execute requests.
//   - requestsPerMinute: The maximum number of API calls allowed per minute.
//
// Outputs:
//   - *QuotaAwareGenerativeAIModel: A pointer to the newly created wrapper.
func NewQuotaAwareModel(wrapped *genai.GenerateContentConfig, name string, handle *genai.Models, requestsPerMinute int) *QuotaAwareGenerativeAIModel {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 1
	}
	return &QuotaAwareGenerativeAIModel{
		GenerativeContentConfig: wrapped,
		ModelName:               name,
		ModelHandle:             handle,
		// Allows a burst of one request and replenishes the token bucket at
		// the configured per-minute rate.
		RateLimit: rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), 1),
	}
}

// GenerateContent executes a generation request through the rate limiter.
//
// Logic Flow:
//  1. Block until the rate limiter admits the request (or the context ends).
//  2. Call the underlying model.
//  3. If it fails, check the retry count carried on the context.
//  4. If retries are available, back off briefly and call itself again.
//  5. If no retries are left, return the error.
//
// Inputs:
//   - ctx: The context for the request. It also carries retry state.
//   - content: The multi-modal prompt content.
//
// Outputs:
//   - *genai.GenerateContentResponse: The response from the AI model if successful.
//   - error: An error if the request fails after all retries or if another issue occurs.
func (q *QuotaAwareGenerativeAIModel) GenerateContent(ctx context.Context, content []*genai.Content) (resp *genai.GenerateContentResponse, err error) {
	// Wait blocks until a token is available, so a burst of callers is
	// naturally serialized to the configured pace.
	if err := q.RateLimit.Wait(ctx); err != nil {
		return nil, err
	}
	resp, err = q.ModelHandle.GenerateContent(ctx, q.ModelName, content, q.GenerativeContentConfig)
	if err != nil {
		// Get the current retry count from the context. `Value()` returns an
		// interface{}, so we must type-assert it to an `int`.
		retryCount, ok := ctx.Value(retryCountKey{}).(int)
		if !ok {
			// This is the first attempt.
			retryCount = 0
		}
		if retryCount >= MaxRetries {
			return nil, errors.New("failed generation on max retries")
		}
		// Back off briefly before retrying to give the service time to recover.
		select {
		case <-time.After(time.Second * time.Duration(2<<retryCount)):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		errCtx := context.WithValue(ctx, retryCountKey{}, retryCount+1)
		return q.GenerateContent(errCtx, content)
	}
	return resp, nil
}

// GenerateSpeech sends text to a TTS-capable model and returns the raw PCM
// audio from the response. The prebuilt voice is selected per request, so a
// single wrapped speech model serves every voice the narrator supports.
//
// Inputs:
//   - ctx: The context for the request.
//   - text: The script text to vocalize.
//   - voiceName: The prebuilt voice identifier (e.g., "Kore", "Charon").
//
// Outputs:
//   - []byte: Raw 16-bit PCM samples at 24 kHz.
//   - error: An error if the request fails or the response carries no audio.
func (q *QuotaAwareGenerativeAIModel) GenerateSpeech(ctx context.Context, text string, voiceName string) ([]byte, error) {
	if err := q.RateLimit.Wait(ctx); err != nil {
		return nil, err
	}
	// Copy the base config and attach the audio-specific settings.
	cfg := *q.GenerativeContentConfig
	cfg.ResponseModalities = []string{"AUDIO"}
	cfg.ResponseMIMEType = ""
	cfg.SpeechConfig = &genai.SpeechConfig{
		VoiceConfig: &genai.VoiceConfig{
			PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: voiceName},
		},
	}
	resp, err := q.ModelHandle.GenerateContent(ctx, q.ModelName, genai.Text(text), &cfg)
	if err != nil {
		return nil, err
	}
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return part.InlineData.Data, nil
			}
		}
	}
	return nil, errors.New("speech response contained no audio data")
}
