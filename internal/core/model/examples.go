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

// Package model defines the data structures for the application. This file,
// `examples.go`, provides factory functions for creating hardcoded, example
// instances of the data models.
//
// These example objects are used for "few-shot" prompting with the
// generative models. By embedding a concrete example of the desired JSON
// output structure in the prompt itself, we guide the model to return data
// that is consistent, correctly formatted, and easily parsable.
package model

// GetExampleScriptResponse creates a sample ScriptResponse. It is serialized
// into the script-generation prompt so the model can see the expected shape:
// a continuous narration string plus subtitle segments with numeric start
// and end times in seconds.
//
// Outputs:
//   - *ScriptResponse: A pointer to a hardcoded ScriptResponse object.
func GetExampleScriptResponse() *ScriptResponse {
	return &ScriptResponse{
		Script: "The morning fog lifts over the harbor as the first boats slip out to sea. " +
			"On the pier, a fisherman coils his rope with practiced hands, unhurried, " +
			"while gulls wheel overhead waiting for the day's first catch.",
		Segments: []*SubtitleCue{
			{Start: 0, End: 4, Text: "The morning fog lifts over the harbor as the first boats slip out to sea."},
			{Start: 4, End: 9, Text: "On the pier, a fisherman coils his rope with practiced hands, unhurried."},
			{Start: 9, End: 13, Text: "Gulls wheel overhead waiting for the day's first catch."},
		},
	}
}

// GetExampleFrameDescription returns a sample one-sentence scene description
// of the kind the vision model is asked for. Used in tests; the per-frame
// prompt is short enough to not need a few-shot example.
func GetExampleFrameDescription() string {
	return "A cyclist in a yellow jacket crosses a rain-soaked intersection at dusk."
}
