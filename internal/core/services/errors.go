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
// This file defines the error taxonomy of the finalization pass and the
// classifier that maps internal failures to the distinguishable,
// user-facing messages the API returns. Unclassified failures collapse
// into a generic message rather than exposing raw internal error text.
package services

import (
	"errors"
	"strings"
)

// Sentinel conditions raised during finalization.
var (
	// ErrNoFramesExtracted: the batch was empty at finalization time.
	ErrNoFramesExtracted = errors.New("no frames were extracted to analyze")

	// ErrAllFramesFailed: the batch was non-empty but every frame carries
	// an error marker, which points at a connectivity or service problem
	// rather than a bad video.
	ErrAllFramesFailed = errors.New("analysis failed: the API could not interpret the frames")
)

// User-facing messages, one per error class.
const (
	MsgQuotaExceeded   = "You have reached your daily API quota limit. Please come back tomorrow!"
	MsgNoFrames        = "Video Error: Could not extract frames from this video."
	MsgAllFramesFailed = "Analysis Failed: The API could not interpret the frames. Please check your internet connection."
	MsgCredential      = "API Key Error: The provided API key is invalid or expired."
	MsgEmptyScript     = "Cannot generate speech: commentary text is empty."
	MsgGeneric         = "Failed to generate final commentary."
)

// ClassifyFinalizationError maps a finalization failure to its user-facing
// message.
func ClassifyFinalizationError(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNoFramesExtracted):
		return MsgNoFrames
	case errors.Is(err, ErrAllFramesFailed):
		return MsgAllFramesFailed
	case errors.Is(err, ErrEmptyScript):
		return MsgEmptyScript
	case isCredentialError(err):
		return MsgCredential
	default:
		return MsgGeneric
	}
}

// isCredentialError recognizes authorization problems from the underlying
// error text, the only signal the remote SDK gives us.
func isCredentialError(err error) bool {
	text := strings.ToLower(err.Error())
	for _, marker := range []string{"api key", "credential", "unauthenticated", "permission denied"} {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}
