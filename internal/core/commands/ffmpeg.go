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
// Responsibility (COR) pattern's Command interface. This file holds the
// shared helpers for invoking the ffmpeg toolchain from commands.
package commands

import (
	"fmt"
	"io"
	"os"
	"os/exec"
)

// newFFmpegCommand builds an exec.Cmd for an ffmpeg-family binary with its
// diagnostics routed to the server's stderr, which is where ffmpeg writes
// its progress and error detail.
func newFFmpegCommand(path string, args ...string) *exec.Cmd {
	cmd := exec.Command(path, args...)
	cmd.Stderr = os.Stderr
	return cmd
}

// MoveFile copies a file to destPath and removes the source. Used instead
// of os.Rename so uploads can cross filesystem boundaries (e.g., from the
// OS temp dir into the configured work dir).
func MoveFile(sourcePath, destPath string) error {
	inputFile, err := os.Open(sourcePath)
	if err != nil {
		return fmt.Errorf("could not open source file: %v", err)
	}
	defer inputFile.Close()

	outputFile, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("could not open dest file: %v", err)
	}
	defer outputFile.Close()

	if _, err = io.Copy(outputFile, inputFile); err != nil {
		return fmt.Errorf("could not copy to dest from source: %v", err)
	}
	inputFile.Close()

	if err = os.Remove(sourcePath); err != nil {
		return fmt.Errorf("could not remove source file: %v", err)
	}
	return nil
}
