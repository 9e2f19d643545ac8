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

// Package cloud defines the data structures for application configuration,
// loaded from TOML files. It provides a structured way to manage settings
// for the narration pipeline, including Google Cloud project identity,
// AI model parameters, frame extraction tooling, and prompt templates.
//
// This file centralizes all configuration-related structs, making it easy
// to understand and manage the application's configurable parameters.
//
// Structs:
//   - PromptTemplates: Holds the text templates for prompts sent to GenAI models.
//   - VertexAiLLMModel: Configuration for a Vertex AI Large Language Model (LLM).
//   - Narrator: Quota, pacing, and persistence settings for the analysis pipeline.
//   - Extraction: Local tooling settings for video probing and frame extraction.
//   - Config: The top-level struct that aggregates all other configuration structs.
//
// Functions:
//   - NewConfig: A constructor that initializes a new Config object with empty maps.
package cloud

import "google.golang.org/genai"

// DefaultSafetySettings defines the default content safety thresholds for GenAI models.
// These settings are configured to be non-restrictive, allowing all content categories
// (Dangerous Content, Harassment, Hate Speech, Sexually Explicit) to pass through without
// being blocked. This is a common setup for internal or controlled environments where
// the input data is trusted.
var DefaultSafetySettings = []*genai.SafetySetting{
	{
		Category:  genai.HarmCategoryDangerousContent,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
	{
		Category:  genai.HarmCategoryHarassment,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
	{
		Category:  genai.HarmCategoryHateSpeech,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
	{
		Category:  genai.HarmCategorySexuallyExplicit,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
}

// PromptTemplates holds the templates for the different prompts the pipeline
// sends to the generative models.
type PromptTemplates struct {
	FrameAnalysis string `toml:"frame_analysis"` // The template for describing a single video frame.
	Script        string `toml:"script"`         // The template for assembling the commentary script prompt.
}

// VertexAiLLMModel represents the configuration for a Vertex AI large language model (LLM).
type VertexAiLLMModel struct {
	Model              string  `toml:"model"`               // The name of the Vertex AI LLM.
	SystemInstructions string  `toml:"system_instructions"` // The system instructions for the LLM.
	Temperature        float32 `toml:"temperature"`         // The temperature parameter for the LLM.
	TopP               float32 `toml:"top_p"`               // The top_p parameter for the LLM.
	TopK               float32 `toml:"top_k"`               // The top_k parameter for the LLM.
	MaxTokens          int32   `toml:"max_tokens"`          // The maximum number of tokens for the LLM output.
	OutputFormat       string  `toml:"output_format"`       // The desired output format for the LLM.
	RateLimit          int     `toml:"rate_limit"`          // The rate limit for the LLM in requests per minute.
}

// Narrator holds the quota and pacing settings for the frame analysis pipeline.
type Narrator struct {
	DailyFrameLimit   int    `toml:"daily_frame_limit"`   // The maximum number of frames analyzed per calendar day.
	RateLimitRPM      int    `toml:"rate_limit_rpm"`      // The frame analysis request budget in requests per minute.
	RequestPaddingMs  int    `toml:"request_padding_ms"`  // Extra milliseconds added between paced analysis requests.
	QuotaDatabasePath string `toml:"quota_database_path"` // The SQLite file backing the daily quota counter.
}

// Extraction holds the local tooling settings used to probe videos and
// extract candidate frames before analysis.
type Extraction struct {
	FFmpegPath  string `toml:"ffmpeg_path"`  // Path to the ffmpeg binary.
	FFprobePath string `toml:"ffprobe_path"` // Path to the ffprobe binary.
	WorkDir     string `toml:"work_dir"`     // Directory for temporary frame files; empty means the OS temp dir.
	JpegQuality int    `toml:"jpeg_quality"` // ffmpeg qscale value for extracted JPEG frames (2 is high quality).
}

// Config represents the overall configuration for the application, loaded from TOML files.
// It acts as the root container for all other configuration structs.
type Config struct {
	// Application holds general application settings.
	Application struct {
		Name            string `toml:"name"`              // The name of the application.
		GoogleProjectId string `toml:"google_project_id"` // The Google Cloud project ID.
		GoogleLocation  string `toml:"location"`          // The Google Cloud location.
	} `toml:"application"`
	Narrator        Narrator                    `toml:"narrator"`         // Quota and pacing settings.
	Extraction      Extraction                  `toml:"extraction"`       // Frame extraction tooling.
	PromptTemplates PromptTemplates             `toml:"prompt_templates"` // Prompt templates configuration.
	AgentModels     map[string]VertexAiLLMModel `toml:"agent_models"`     // A map of Vertex AI models, keyed by a logical name (e.g., "vision-flash").
}

// Logical model names used to look up entries in Config.AgentModels.
const (
	ModelVision = "vision-flash" // Frame description model.
	ModelScript = "script-pro"   // Commentary script generation model.
	ModelSpeech = "speech-tts"   // Text-to-speech synthesis model.
)

// NewConfig is a constructor function that creates a new, initialized Config instance.
// It's important to initialize the maps within the struct to avoid nil pointer panics
// when the configuration loader tries to populate them.
//
// Outputs:
//   - *Config: A pointer to a new Config struct with its map fields initialized.
func NewConfig() *Config {
	return &Config{
		AgentModels: make(map[string]VertexAiLLMModel),
	}
}
