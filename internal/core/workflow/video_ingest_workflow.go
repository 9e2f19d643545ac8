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
// the ingestion workflow: an uploaded video file goes in, a pending frame
// batch comes out, ready for the analysis queue.
package workflow

import (
	"context"
	"errors"

	"github.com/jaycherian/gcp-go-video-narrator/internal/cloud"
	"github.com/jaycherian/gcp-go-video-narrator/internal/core/commands"
	"github.com/jaycherian/gcp-go-video-narrator/internal/core/cor"
	"github.com/jaycherian/gcp-go-video-narrator/internal/core/model"
)

// VideoIngestWorkflow orchestrates upload processing as a Chain of
// Responsibility: probe the file, sample it into stills, and load the
// stills into a frame batch.
type VideoIngestWorkflow struct {
	cor.BaseCommand
	chain cor.Chain // The underlying chain of commands to be executed.
}

// Execute runs the ingestion chain.
//
// Inputs:
//   - context: The chain of responsibility context for this execution.
func (w *VideoIngestWorkflow) Execute(context cor.Context) {
	w.chain.Execute(context)
}

// Run builds a fresh chain context for one upload and returns the extracted
// frame batch. Temp frame files are read into memory before the context
// cleans them up.
//
// Inputs:
//   - ctx: The Go context for the execution.
//   - videoPath: Local path of the uploaded video file.
//
// Outputs:
//   - []*model.Frame: The pending frame batch in sampling order.
//   - error: The first failure recorded by the chain.
func (w *VideoIngestWorkflow) Run(ctx context.Context, videoPath string) ([]*model.Frame, error) {
	chainCtx := cor.NewBaseContext()
	chainCtx.SetContext(ctx)
	defer chainCtx.Close()

	chainCtx.Add(cor.CtxIn, videoPath)

	w.Execute(chainCtx)

	if chainCtx.HasErrors() {
		return nil, chainCtx.FirstError()
	}
	frames, ok := chainCtx.Get(commands.CtxFramesParam).([]*model.Frame)
	if !ok {
		return nil, errors.New("ingestion produced no frame batch")
	}
	return frames, nil
}

// initializeChain builds the sequence of commands that make up this workflow.
func (w *VideoIngestWorkflow) initializeChain(cfg *cloud.Config) {
	out := cor.NewBaseChain(w.GetName())

	// Step 1: Verify the upload is a video and measure its duration.
	out.AddCommand(commands.NewVideoProbe("probe-video", cfg.Extraction.FFprobePath))

	// Step 2: Sample the video into half-scale JPEG stills at an interval
	// chosen from the duration.
	out.AddCommand(commands.NewFrameExtractor("extract-frames",
		cfg.Extraction.FFmpegPath, cfg.Extraction.WorkDir, cfg.Extraction.JpegQuality))

	// Step 3: Load the stills into pending Frame structs under the named
	// output key the orchestrator reads.
	out.AddCommand(commands.NewFrameAssembly("assemble-frames", commands.CtxFramesParam))

	w.chain = out
}

// NewVideoIngestWorkflow is the constructor for the VideoIngestWorkflow.
//
// Inputs:
//   - cfg: The application configuration holding the extraction tooling paths.
//
// Returns:
//   - A pointer to a newly created and fully initialized VideoIngestWorkflow.
func NewVideoIngestWorkflow(cfg *cloud.Config) *VideoIngestWorkflow {
	w := &VideoIngestWorkflow{BaseCommand: *cor.NewBaseCommand("video-ingest-pipeline")}
	w.initializeChain(cfg)
	return w
}
