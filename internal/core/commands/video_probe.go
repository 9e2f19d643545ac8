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
// first step of the ingestion chain: verifying that an uploaded file really
// is a video and measuring its duration with ffprobe. The duration drives
// the frame sampling interval chosen by the extractor.
package commands

import (
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/h2non/filetype"
	"github.com/jaycherian/gcp-go-video-narrator/internal/core/cor"
)

// VideoSource describes a probed, validated upload ready for extraction.
type VideoSource struct {
	Path     string  // Local path of the uploaded video file.
	Duration float64 // Duration in seconds as reported by ffprobe.
}

// VideoProbe validates an upload and measures its duration.
type VideoProbe struct {
	cor.BaseCommand
	ffprobePath string
}

// NewVideoProbe is the constructor for VideoProbe.
//
// Inputs:
//   - name: A string name for this command instance, used for logging and telemetry.
//   - ffprobePath: The file system path to the ffprobe executable.
//
// Outputs:
//   - *VideoProbe: A pointer to the newly instantiated command.
func NewVideoProbe(name string, ffprobePath string) *VideoProbe {
	return &VideoProbe{BaseCommand: *cor.NewBaseCommand(name), ffprobePath: ffprobePath}
}

// Execute verifies the upload's type and probes its duration.
//
// Inputs:
//   - context: The shared `cor.Context` for this workflow execution.
func (c *VideoProbe) Execute(context cor.Context) {
	path := context.Get(c.GetInputParam()).(string)

	// Sniff the actual content rather than trusting the file name.
	if match, err := filetype.MatchFile(path); err != nil || match.MIME.Type != "video" {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("file %q is not a valid video", path))
		return
	}

	// ffprobe prints the container duration as a bare number.
	out, err := exec.Command(c.ffprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path).Output()
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("error running ffprobe: %w", err))
		return
	}
	duration, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil || duration <= 0 {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("could not determine video duration: %v", err))
		return
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(c.GetOutputParam(), &VideoSource{Path: path, Duration: duration})
}
