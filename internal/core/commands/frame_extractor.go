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
// frame extraction step of the ingestion chain, which samples the video
// into half-scale JPEG stills with ffmpeg.
//
// Logic Flow:
//  1. Take the probed video source from the chain input.
//  2. Choose the sampling interval by duration: one frame per second for
//     short clips, one every two seconds up to five minutes, one every
//     five seconds beyond that. Long videos would otherwise produce frame
//     counts far past the daily analysis quota.
//  3. Run ffmpeg once with an fps filter and a half-scale filter, writing
//     numbered JPEG files into a fresh temp directory.
//  4. Track every written file in the context for cleanup, then emit the
//     ordered file list with its interval for assembly.
package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/jaycherian/gcp-go-video-narrator/internal/core/cor"
)

// Sampling interval tiers in seconds.
const (
	shortVideoSeconds  = 60.0
	mediumVideoSeconds = 300.0
)

// framePattern is the ffmpeg output file template.
const framePattern = "frame-%05d.jpg"

// ExtractedFrames is the ordered still-image listing produced by extraction.
type ExtractedFrames struct {
	Paths    []string // JPEG file paths in sampling order.
	Interval float64  // Seconds between consecutive samples.
}

// SamplingInterval returns the seconds between sampled frames for a video
// of the given duration.
func SamplingInterval(duration float64) float64 {
	switch {
	case duration > mediumVideoSeconds:
		return 5
	case duration > shortVideoSeconds:
		return 2
	default:
		return 1
	}
}

// FrameExtractor samples a video into JPEG stills.
type FrameExtractor struct {
	cor.BaseCommand
	ffmpegPath  string
	workDir     string
	jpegQuality int
}

// NewFrameExtractor is the constructor for FrameExtractor.
//
// Inputs:
//   - name: A string name for this command instance, used for logging and telemetry.
//   - ffmpegPath: The file system path to the ffmpeg executable.
//   - workDir: Directory for temporary frame files; empty means the OS temp dir.
//   - jpegQuality: ffmpeg qscale value for the output stills.
//
// Outputs:
//   - *FrameExtractor: A pointer to the newly instantiated command.
func NewFrameExtractor(name string, ffmpegPath string, workDir string, jpegQuality int) *FrameExtractor {
	if jpegQuality <= 0 {
		jpegQuality = 5
	}
	return &FrameExtractor{
		BaseCommand: *cor.NewBaseCommand(name),
		ffmpegPath:  ffmpegPath,
		workDir:     workDir,
		jpegQuality: jpegQuality,
	}
}

// Execute runs ffmpeg to sample the probed video into stills.
//
// Inputs:
//   - context: The shared `cor.Context` for this workflow execution.
func (c *FrameExtractor) Execute(context cor.Context) {
	source := context.Get(c.GetInputParam()).(*VideoSource)
	interval := SamplingInterval(source.Duration)

	outDir, err := os.MkdirTemp(c.workDir, "narrator-frames-")
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("error creating frame directory: %w", err))
		return
	}

	cmd := newFFmpegCommand(c.ffmpegPath,
		"-y", "-hide_banner",
		"-i", source.Path,
		"-vf", fmt.Sprintf("fps=1/%g,scale=iw/2:ih/2", interval),
		"-q:v", fmt.Sprintf("%d", c.jpegQuality),
		filepath.Join(outDir, framePattern))
	if err := cmd.Run(); err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("error running ffmpeg: %w", err))
		return
	}

	entries, err := os.ReadDir(outDir)
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), err)
		return
	}
	paths := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		full := filepath.Join(outDir, entry.Name())
		paths = append(paths, full)
		context.AddTempFile(full)
	}
	// The numbered names sort into sampling order.
	sort.Strings(paths)
	// Registered after the files so cleanup empties the directory before
	// removing it.
	context.AddTempFile(outDir)

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(c.GetOutputParam(), &ExtractedFrames{Paths: paths, Interval: interval})
}
