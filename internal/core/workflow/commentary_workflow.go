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

// Package workflow defines the high-level business logic orchestrations,
// combining various commands into coherent pipelines. This file implements
// the finalization workflow: the one-shot pass that turns a settled frame
// batch into narration text, subtitles, and audio.
package workflow

import (
	"context"

	"github.com/jaycherian/gcp-go-video-narrator/internal/cloud"
	"github.com/jaycherian/gcp-go-video-narrator/internal/core/commands"
	"github.com/jaycherian/gcp-go-video-narrator/internal/core/cor"
	"github.com/jaycherian/gcp-go-video-narrator/internal/core/model"
	"github.com/jaycherian/gcp-go-video-narrator/internal/core/services"
)

// CommentaryWorkflow orchestrates the finalization pass as a Chain of
// Responsibility: filter the frames, generate the script, synthesize the
// speech, and assemble the published result. A failure in any step aborts
// the chain, so a partial result is never published.
type CommentaryWorkflow struct {
	cor.BaseCommand
	chain cor.Chain // The underlying chain of commands to be executed.
}

// Execute runs the finalization chain.
//
// Inputs:
//   - context: The chain of responsibility context for this execution.
func (w *CommentaryWorkflow) Execute(context cor.Context) {
	w.chain.Execute(context)
}

// Run is a convenience wrapper that builds a fresh chain context for one
// finalization pass and returns the published result or the classified
// failure.
//
// Inputs:
//   - ctx: The Go context governing the remote calls.
//   - frames: The full frame batch, terminal statuses included.
//   - settings: The immutable settings snapshot for this pass.
//
// Outputs:
//   - *model.CommentaryResult: The published result on success.
//   - error: The first failure recorded by the chain.
func (w *CommentaryWorkflow) Run(ctx context.Context, frames []*model.Frame, settings model.CommentarySettings) (*model.CommentaryResult, error) {
	chainCtx := cor.NewBaseContext()
	chainCtx.SetContext(ctx)
	defer chainCtx.Close()

	chainCtx.Add(commands.CtxSettingsParam, settings)
	chainCtx.Add(cor.CtxIn, frames)

	w.Execute(chainCtx)

	if chainCtx.HasErrors() {
		return nil, chainCtx.FirstError()
	}
	result, ok := chainCtx.Get(commands.CtxCommentaryParam).(*model.CommentaryResult)
	if !ok || result == nil {
		return nil, services.ErrAllFramesFailed
	}
	return result, nil
}

// initializeChain builds the sequence of commands that make up this
// workflow. Each command is an atomic unit of work whose output feeds the
// next step.
func (w *CommentaryWorkflow) initializeChain(scriptGen *services.ScriptGenerator, synth *services.SpeechSynthesizer) {
	out := cor.NewBaseChain(w.GetName())

	// Step 1: Reduce the batch to frames whose descriptions are usable,
	// distinguishing an empty batch from a fully-failed one.
	out.AddCommand(commands.NewValidFrameFilter("filter-valid-frames"))

	// Step 2: Generate the narration script and subtitle segmentation from
	// the (timestamp, description) timeline.
	out.AddCommand(commands.NewScriptGenerate("generate-script", scriptGen))

	// Step 3: Synthesize the script into a WAV payload. Runs only if the
	// script step succeeded.
	out.AddCommand(commands.NewSpeechSynthesize("synthesize-speech", synth))

	// Step 4: Validate the combined result and publish it under the named
	// output key the orchestrator reads.
	out.AddCommand(commands.NewResultAssembly("assemble-commentary", commands.CtxCommentaryParam))

	w.chain = out
}

// NewCommentaryWorkflow is the constructor for the CommentaryWorkflow. It
// wires the script and speech services over the configured models and
// builds the command chain.
//
// Inputs:
//   - serviceClients: The initialized model adapters.
//
// Returns:
//   - A pointer to a newly created and fully initialized CommentaryWorkflow.
func NewCommentaryWorkflow(serviceClients *cloud.ServiceClients) *CommentaryWorkflow {
	w := &CommentaryWorkflow{BaseCommand: *cor.NewBaseCommand("commentary-pipeline")}
	w.initializeChain(
		services.NewScriptGenerator(serviceClients.Script),
		services.NewSpeechSynthesizer(serviceClients.Speech))
	return w
}

// NewCommentaryWorkflowWithServices builds the workflow from pre-built
// services. Used by tests to substitute fake models.
func NewCommentaryWorkflowWithServices(scriptGen *services.ScriptGenerator, synth *services.SpeechSynthesizer) *CommentaryWorkflow {
	w := &CommentaryWorkflow{BaseCommand: *cor.NewBaseCommand("commentary-pipeline")}
	w.initializeChain(scriptGen, synth)
	return w
}
