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
// Responsibility (COR) pattern's Command interface for the narration
// pipeline. This file defines the shared context parameter keys used to
// pass state between commands in the ingestion and finalization chains.
package commands

// Context parameter keys shared across chains.
const (
	// CtxSettingsParam holds the model.CommentarySettings snapshot for a
	// finalization pass.
	CtxSettingsParam = "__commentary_settings__"

	// CtxFrameCountParam holds the size of the original frame batch, used
	// by the filter to distinguish "no frames" from "all frames failed".
	CtxFrameCountParam = "__frame_count__"

	// CtxCommentaryParam is the named output of the finalization chain,
	// holding the assembled *model.CommentaryResult.
	CtxCommentaryParam = "__commentary_output__"

	// CtxFramesParam is the named output of the ingestion chain, holding
	// the extracted []*model.Frame batch.
	CtxFramesParam = "__frames_output__"
)
