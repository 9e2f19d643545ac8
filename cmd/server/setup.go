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

// Package main contains the setup and initialization logic for the application's state.
// This file is responsible for creating and managing a centralized state manager
// that holds all shared dependencies: configuration, the Generative AI clients,
// the quota store, and the commentary orchestrator.
//
// Functions:
//   - SetupOS: Configures necessary environment variables for the application,
//     pointing to the correct configuration files.
//   - GetConfig: A singleton function that loads the application's configuration
//     from TOML files. It ensures the configuration is loaded only once.
//   - InitState: The core initialization function that creates the cloud clients,
//     the quota store, the pipelines, and the commentary service.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/jaycherian/gcp-go-video-narrator/internal/cloud"
	"github.com/jaycherian/gcp-go-video-narrator/internal/core/services"
	"github.com/jaycherian/gcp-go-video-narrator/internal/core/workflow"
)

// StateManager holds all the shared dependencies for the application, acting as a
// centralized container for service clients and configurations. This avoids the
// need for global variables and makes dependency management cleaner.
type StateManager struct {
	config     *cloud.Config
	cloud      *cloud.ServiceClients
	quota      services.QuotaStore
	commentary *services.CommentaryService
}

// state is a package-level variable that holds the single instance of StateManager.
var state = &StateManager{}

// SetupOS sets the necessary environment variables that the configuration loader
// uses to find the correct TOML files.
//
// This function sets the prefix for the configuration directory and specifies
// the runtime environment (e.g., "local", "test", "prod"), allowing for
// environment-specific overrides of the base configuration.
//
// Outputs:
//   - error: An error if setting any of the environment variables fails.
func SetupOS() (err error) {
	// Set the directory where configuration files are located.
	err = os.Setenv(cloud.EnvConfigFilePrefix, "configs")
	if err != nil {
		return err
	}
	// Set the current runtime environment to "local". The config loader will
	// look for a ".env.local.toml" file to override base settings.
	err = os.Setenv(cloud.EnvConfigRuntime, "local")
	return err
}

// GetConfig provides a singleton instance of the application configuration.
// It ensures that the configuration is loaded from the file system only once.
// On the first call, it sets up the OS environment and loads the configuration
// from the TOML files. Subsequent calls return the cached configuration.
//
// Outputs:
//   - *cloud.Config: A pointer to the loaded application configuration struct.
func GetConfig() *cloud.Config {
	// If the config has not been loaded yet...
	if state.config == nil {
		// Set up the environment variables required for config loading.
		err := SetupOS()
		if err != nil {
			log.Fatalf("failed to setup os environment: %v\n", err)
		}
		// Create a new, empty config struct.
		config := cloud.NewConfig()
		// Load the configuration from the .toml files into the struct.
		cloud.LoadConfig(&config)
		// Store the loaded config in the state manager.
		state.config = config
	}
	// Return the cached config.
	return state.config
}

// InitState initializes the entire application state.
// It orchestrates the creation of all necessary services and clients based on the
// application configuration and wires them together.
//
// Inputs:
//   - ctx: The root context.Context for the application, used for managing
//     the lifecycle of client connections and background processes.
//
// This function performs the following steps:
//  1. Loads the application configuration.
//  2. Initializes the Generative AI clients and model adapters.
//  3. Opens the SQLite quota store, falling back to an in-memory store when
//     no database path is configured or the file cannot be opened.
//  4. Builds the ingestion and finalization workflows.
//  5. Wires the commentary orchestrator over all of the above.
func InitState(ctx context.Context) {
	// Get the application configuration.
	config := GetConfig()

	// Initialize the Generative AI clients and the typed model adapters.
	cloudClients, err := cloud.NewCloudServiceClients(ctx, config)
	if err != nil {
		panic(err)
	}
	state.cloud = cloudClients

	// Open the persistent quota store. A failure here degrades to an
	// in-memory counter rather than blocking startup; the quota then just
	// does not survive restarts.
	if path := config.Narrator.QuotaDatabasePath; path != "" {
		store, err := services.NewSQLiteQuotaStore(path, config.Narrator.DailyFrameLimit)
		if err != nil {
			slog.Error("failed to open quota database, using in-memory quota", "path", path, "error", err)
			state.quota = services.NewMemoryQuotaStore(config.Narrator.DailyFrameLimit)
		} else {
			state.quota = store
		}
	} else {
		state.quota = services.NewMemoryQuotaStore(config.Narrator.DailyFrameLimit)
	}

	// Build the two pipelines.
	ingest := workflow.NewVideoIngestWorkflow(config)
	finalize := workflow.NewCommentaryWorkflow(cloudClients)

	// The frame analyzer pairs the vision model with the description prompt.
	analyzer := services.NewFrameAnalyzer(cloudClients.Vision, config.PromptTemplates.FrameAnalysis)

	// Derive the pacing interval from the configured per-minute budget.
	interval := services.IntervalForRate(
		config.Narrator.RateLimitRPM,
		time.Duration(config.Narrator.RequestPaddingMs)*time.Millisecond)

	// Wire the orchestrator.
	state.commentary = services.NewCommentaryService(
		ctx,
		state.quota,
		analyzer.Analyze,
		interval,
		ingest,
		finalize,
		services.NewSpeechSynthesizer(cloudClients.Speech),
	)
}
