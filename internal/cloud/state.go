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

// Package cloud provides components for interacting with Google Cloud services.
// This file is central to the application's architecture, as it's responsible for
// initializing and holding all the client objects needed to communicate with
// the Generative AI backend. It acts as a dependency injection container,
// creating a single, shared `ServiceClients` struct that can be passed throughout
// the application.
//
// Logic Flow:
//  1. The `NewCloudServiceClients` function is called at application startup.
//  2. It takes the application's configuration (`Config`) and a `context.Context`.
//  3. It initializes the GenAI client against Vertex AI.
//  4. It then reads the configuration to create the quota-aware model wrappers
//     and the typed model adapters the pipeline consumes.
//  5. All initialized clients and adapters are bundled into a single
//     `ServiceClients` struct used by the services and workflows.
//
// Structs:
//   - ServiceClients: A container struct holding the GenAI client, the wrapped
//     models, and the typed adapters, acting as a central state manager for
//     external connections.
//
// Functions:
//   - NewCloudServiceClients: A factory function that creates and configures all
//     necessary clients based on the application's configuration.
package cloud

import (
	"context"
	"fmt"
	"log"

	"google.golang.org/genai"
)

// ServiceClients is a struct that acts as a central container for all the clients
// that interact with the Generative AI backend. This pattern is a form of
// dependency injection, making it easy to manage and share these client connections
// across the entire application.
type ServiceClients struct {
	GenAIClient *genai.Client                           // Client for Google's Generative AI services (Vertex AI).
	AgentModels map[string]*QuotaAwareGenerativeAIModel // Configured, rate-limited models keyed by logical name.

	// Typed adapters over the entries in AgentModels. The pipeline services
	// depend on these interfaces rather than the genai types directly.
	Vision VisionModel
	Script TextModel
	Speech SpeechModel
}

// NewCloudServiceClients is a factory function that initializes the Generative AI
// client and model wrappers based on the provided configuration. It serves as the
// main entry point for setting up the application's external dependencies.
//
// Inputs:
//   - ctx: The root context.Context for the application, used to manage the lifecycle of the clients.
//   - config: A pointer to the loaded application configuration (`Config`).
//
// Outputs:
//   - *ServiceClients: A pointer to the fully initialized ServiceClients struct.
//   - error: An error if any of the clients fail to initialize.
func NewCloudServiceClients(ctx context.Context, config *Config) (cloud *ServiceClients, err error) {
	// Create a new Generative AI client against the Vertex AI backend.
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  config.Application.GoogleProjectId,
		Location: config.Application.GoogleLocation,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		log.Printf("error creating genai client: %v", err)
		return nil, err
	}

	// Iterate through the agent model configurations, create a generation config
	// for each, apply its specific settings (temperature, TopK, etc.), and wrap
	// it in our custom rate-limiting (`QuotaAware`) model.
	agentModels := make(map[string]*QuotaAwareGenerativeAIModel)
	for amKey := range config.AgentModels {
		values := config.AgentModels[amKey]

		model := &genai.GenerateContentConfig{
			Temperature:       genai.Ptr[float32](values.Temperature),
			TopP:              genai.Ptr[float32](values.TopP),
			TopK:              genai.Ptr[float32](values.TopK),
			MaxOutputTokens:   values.MaxTokens,
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: values.SystemInstructions}}},
			SafetySettings:    DefaultSafetySettings,
			ResponseMIMEType:  values.OutputFormat,
			Tools:             []*genai.Tool{},
		}
		agentModels[amKey] = NewQuotaAwareModel(model, values.Model, gc.Models, values.RateLimit)
	}

	// Every logical model role must be present; a missing entry would only
	// surface mid-pipeline otherwise.
	for _, required := range []string{ModelVision, ModelScript, ModelSpeech} {
		if _, ok := agentModels[required]; !ok {
			return nil, fmt.Errorf("missing agent model configuration: %q", required)
		}
	}

	cloud = &ServiceClients{
		GenAIClient: gc,
		AgentModels: agentModels,
		Vision:      NewGeminiVisionModel(agentModels[ModelVision]),
		Script:      NewGeminiTextModel(agentModels[ModelScript]),
		Speech:      NewGeminiSpeechModel(agentModels[ModelSpeech]),
	}

	return cloud, nil
}
