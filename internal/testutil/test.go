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

// Package test provides utility functions and mock data to support the application's
// test suite. It helps in setting up a consistent test environment, loading
// test-specific configurations, and providing sample frame batches and model
// responses for the pipeline tests.
package test

import (
	"log"
	"os"
	"testing"

	"github.com/jaycherian/gcp-go-video-narrator/internal/cloud"
	"github.com/jaycherian/gcp-go-video-narrator/internal/core/model"
)

// StateManager acts as a simple in-memory cache for the application configuration
// during test runs. This prevents the need to reload configuration files for every
// test, speeding up the test suite.
type StateManager struct {
	config *cloud.Config
}

// state is a package-level variable that holds the singleton instance of StateManager,
// ensuring that the configuration is loaded only once per test run.
var state = &StateManager{}

// HandleErr is a simple test helper function that checks if an error is not nil.
// If an error exists, it fails the test immediately by calling t.Errorf.
// This is a convenience function to reduce boilerplate error-checking code in tests.
//
// Inputs:
//   - err: The error to check.
//   - t: The *testing.T object from the current test.
func HandleErr(err error, t *testing.T) {
	if err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
}

// GetTestFrameBatch returns a batch of frames in the pending state, the shape
// a fresh extraction hands to the analysis queue. Each frame carries a small
// placeholder payload; the tests never send these bytes to a real model.
//
// Inputs:
//   - count: The number of frames to create.
//   - interval: Seconds between consecutive frame timestamps.
//
// Returns:
//   - A slice of pending frames with ascending timestamps.
func GetTestFrameBatch(count int, interval float64) []*model.Frame {
	frames := make([]*model.Frame, 0, count)
	for i := 0; i < count; i++ {
		frames = append(frames, model.NewFrame(i, float64(i)*interval, []byte{0xFF, 0xD8, byte(i)}))
	}
	return frames
}

// GetTestTimeline returns a settled timeline of the kind the script
// generator receives after frame analysis completes.
//
// Returns:
//   - A slice of (timestamp, description) pairs in time order.
func GetTestTimeline() []model.TimedText {
	return []model.TimedText{
		{Time: 0, Text: "A cyclist in a yellow jacket waits at a rain-soaked intersection."},
		{Time: 2, Text: "The light turns green and the cyclist pushes off into traffic."},
		{Time: 4, Text: "Car headlights reflect off the wet asphalt at dusk."},
	}
}

// GetTestScriptResponseText returns a well-formed JSON payload matching what
// the script model is instructed to produce. Used to exercise the response
// parser and the finalization pipeline without a live model.
//
// Returns:
//   - A string containing the JSON payload.
func GetTestScriptResponseText() string {
	return `{
  "script": "A lone cyclist waits in the rain. When the light changes, they push off into the evening traffic, headlights shimmering on the wet road.",
  "segments": [
    { "start": 0, "end": 2, "text": "A lone cyclist waits in the rain." },
    { "start": 2, "end": 5, "text": "When the light changes, they push off into the evening traffic." }
  ]
}`
}

// GetTestPCM returns a small deterministic PCM byte pattern standing in for
// synthesized speech output.
//
// Inputs:
//   - size: The number of bytes to generate.
//
// Returns:
//   - A byte slice of the requested size.
func GetTestPCM(size int) []byte {
	out := make([]byte, size)
	for i := range out {
		out[i] = byte(i % 251)
	}
	return out
}

// SetupOS configures the necessary environment variables that the configuration
// loader (`cloud.LoadConfig`) depends on. By setting these variables, we can
// direct the loader to use the test-specific configuration files (e.g.,
// `configs/.env.test.toml`) instead of production or development ones.
//
// Returns:
//   - An error if setting any environment variable fails.
func SetupOS() (err error) {
	// Set the directory where the configuration files are located.
	err = os.Setenv(cloud.EnvConfigFilePrefix, "configs")
	if err != nil {
		return err
	}
	// Set the runtime environment identifier to "test". This causes the loader
	// to look for a file named ".env.test.toml" for overrides.
	err = os.Setenv(cloud.EnvConfigRuntime, "test")
	return err
}

// GetConfig is a singleton accessor for the test configuration.
// It ensures that the configuration is loaded from TOML files only once and
// is cached in the package-level `state` variable for subsequent calls.
// This is the primary way tests should retrieve their configuration.
//
// Returns:
//   - A pointer to the loaded and cached cloud.Config struct.
func GetConfig() *cloud.Config {
	// Check if the config is already cached.
	if state.config == nil {
		// If not cached, set up the OS environment for the test configuration.
		err := SetupOS()
		if err != nil {
			log.Fatalf("failed to setup environment for test: %v\n", err)
		}
		// Create a new, empty config struct.
		config := cloud.NewConfig()
		// Load the configuration from the TOML files into the struct.
		// `LoadConfig` handles the hierarchical loading (base file + test override).
		cloud.LoadConfig(&config)
		// Cache the loaded config in our state manager.
		state.config = config
	}
	// Return the cached configuration.
	return state.config
}
