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

// Package model defines the core data structures for the application.
// This file holds the transient structures exchanged with the generative
// models during finalization, the published commentary result, and the
// processing/quota statistics the API reports.
package model

// SubtitleCue is one caption entry of the generated subtitle track, ordered
// by start time.
type SubtitleCue struct {
	Start float64 `json:"start"` // Seconds.
	End   float64 `json:"end"`   // Seconds.
	Text  string  `json:"text"`
}

// ScriptResponse is the JSON document the script generator model is asked to
// produce: a continuous voice-over script plus a subtitle segmentation
// aligned with the input timeline. When the model returns something that is
// not valid JSON, the raw response is used as the script and the segments
// are dropped.
type ScriptResponse struct {
	Script   string         `json:"script"`
	Segments []*SubtitleCue `json:"segments"`
}

// CommentaryResult is the published output of one finalization pass.
// It is replaced wholesale on regeneration. A manual script edit replaces
// Text and Audio only, leaving Subtitles untouched even though they may
// drift out of sync with the edited wording.
type CommentaryResult struct {
	Text      string `json:"text"`
	Subtitles string `json:"subtitles,omitempty"` // SRT-formatted track.
	Audio     []byte `json:"audio,omitempty"`     // WAV payload.
}

// ProcessingStats summarizes the state of the current frame batch for the
// status panel.
type ProcessingStats struct {
	TotalFrames    int  `json:"total_frames"`
	AnalyzedFrames int  `json:"analyzed_frames"`
	QueuedFrames   int  `json:"queued_frames"`
	IsProcessing   bool `json:"is_processing"`
}

// UsageStats is the read model of the persisted daily quota record.
type UsageStats struct {
	UsedFrames      int    `json:"used_frames"`
	DailyLimit      int    `json:"daily_limit"`
	RemainingFrames int    `json:"remaining_frames"`
	ResetTime       string `json:"reset_time"` // Human-readable description of when the counter resets.
}
