// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
// *****************************************************************************************************//
// Package main is the entry point for the video narrator backend server.
//
// This application sets up and runs a web server using the Gin framework. It provides a REST API
// for uploading videos, tracking frame analysis progress, and retrieving the generated narration
// (script, subtitles, and synthesized audio). The server is instrumented with OpenTelemetry for
// logging, tracing, and metrics, providing observability into the application's performance.
//
// The main function initializes the application's configuration, sets up logging and telemetry,
// and initializes the application state, including the Generative AI clients and the persistent
// daily quota store. It defines API routes for video uploads, commentary retrieval and editing,
// narration settings, and quota inspection.
//
// Functions:
//   - main: The main entry point of the application. It sets up the server, configures routes,
//     initializes services, and handles graceful shutdown.
//   - VideoRouter: Sets up the routes for uploading a video and polling the state of the
//     current frame batch.
//   - CommentaryRouter: Sets up the routes for retrieving the finished narration, replacing
//     the script text, regenerating with new settings, and streaming the audio track.
//   - SettingsRouter: Sets up the routes for reading and updating the narration settings and
//     for listing the available option sets.
//   - QuotaRouter: Sets up the routes for inspecting and resetting the daily frame quota.
package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/jaycherian/gcp-go-video-narrator/internal/core/commands"
	"github.com/jaycherian/gcp-go-video-narrator/internal/core/model"
	"github.com/jaycherian/gcp-go-video-narrator/internal/core/services"
	"github.com/jaycherian/gcp-go-video-narrator/internal/telemetry"
)

// main is the primary entry point for the application.
// It orchestrates the setup of logging, telemetry, configuration, cloud services,
// the web server, and the API routes. It also handles graceful shutdown of the
// server upon receiving an interrupt signal.
func main() {
	// Initialize structured logging for the application.
	telemetry.SetupLogging()
	slog.Info("Logging initialized")

	// Create a new context that can be cancelled. This is the root context for the application.
	ctx, cancel := context.WithCancel(context.Background())
	// Defer the cancel function to be called when main exits, ensuring all child contexts are cancelled.
	defer cancel()

	// Load application configuration from TOML files.
	config := GetConfig()

	// Initialize OpenTelemetry for distributed tracing and metrics.
	_, err := telemetry.SetupOpenTelemetry(ctx, config)
	if err != nil {
		slog.Error("Failed to setup OpenTelemetry", "error", err)
		log.Fatal(err)
	}
	slog.Info("Tracing initialized")

	// Initialize the application's state, including all necessary service clients.
	InitState(ctx)
	slog.Info("Initialized State")

	// Set up the Gin web server with default middleware.
	r := gin.Default()

	// Add OpenTelemetry middleware to the Gin router to trace incoming requests.
	// This will automatically create spans for each request.
	r.Use(otelgin.Middleware("video-narrator-server"))

	// Configure Cross-Origin Resource Sharing (CORS) middleware.
	// Using cors.Default() provides a permissive configuration suitable for development,
	// allowing requests from any origin.
	r.Use(cors.Default())

	// Group routes under the "/api/v1" prefix.
	apiV1 := r.Group("/api/v1")
	{
		// Register the routes for the narration workflow within the API group.
		VideoRouter(apiV1)
		CommentaryRouter(apiV1)
		SettingsRouter(apiV1)
		QuotaRouter(apiV1)
	}

	// Configure the HTTP server with the address and handler.
	srv := &http.Server{
		Addr:         ":8080",
		Handler:      r,
		ReadTimeout:  20 * time.Second,
		WriteTimeout: 20 * time.Second,
	}

	// Start the HTTP server in a separate goroutine so it doesn't block the main thread.
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("filed to listen: ", "error", err)
		}
	}()
	slog.Info("Server Ready on port 8080")

	// Set up a channel to listen for OS interrupt signals (e.g., Ctrl+C).
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	// Block until a signal is received on the quit channel.
	<-quit
	slog.Info("Shutdown Server ...")

	// Create a context with a timeout for the graceful shutdown.
	// This gives active requests 5 seconds to complete.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	// Attempt to gracefully shut down the server.
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server Shutdown Failed:", "error", err)
	}

	log.Println("Server exiting")
}

// VideoRouter sets up the API routes for uploading a video and polling the
// state of the current frame batch.
//
// Inputs:
//   - r: A *gin.RouterGroup to which the video routes will be added. This allows
//     nesting routes under a common path prefix (e.g., "/api/v1").
//
// Outputs:
//   - This function does not return any values. It modifies the provided *gin.RouterGroup
//     by adding new route handlers.
//
// This function defines the following endpoints:
//   - POST /videos: Accepts a multipart upload under the "file" field, extracts frames
//     from the video, and begins analyzing them. Replaces any previous session.
//   - GET /videos/current: Returns the frames of the current batch together with
//     processing statistics and the finalization state.
func VideoRouter(r *gin.RouterGroup) {
	// Group all video-related routes under the "/videos" path.
	videos := r.Group("/videos")
	{
		// Handler for POST /videos
		videos.POST("", func(c *gin.Context) {
			// Get the uploaded file from the "file" form field.
			file, err := c.FormFile("file")
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "get form err: " + err.Error()})
				return
			}
			// Save the upload to a unique temporary path. The original filename is
			// untrusted, so only its extension is preserved.
			localPath := filepath.Join(os.TempDir(), uuid.NewString()+filepath.Ext(file.Filename))
			if err := c.SaveUploadedFile(file, localPath); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "upload file err: " + err.Error()})
				return
			}
			// When a work dir is configured, keep the upload on the same
			// filesystem as the extracted frames.
			if workDir := state.config.Extraction.WorkDir; workDir != "" {
				moved := filepath.Join(workDir, filepath.Base(localPath))
				if err := commands.MoveFile(localPath, moved); err != nil {
					slog.Warn("failed to move upload into work dir", "error", err)
				} else {
					localPath = moved
				}
			}
			// The extraction pipeline reads the file synchronously, so the upload
			// can be removed as soon as ingestion returns.
			defer func() {
				if err := os.Remove(localPath); err != nil {
					log.Printf("failed to remove file from server: %v\n", err)
				}
			}()

			// Extract frames and start the analysis queue.
			frameCount, err := state.commentary.LoadVideo(c.Request.Context(), localPath)
			if err != nil {
				slog.Error("video ingestion failed", "file", file.Filename, "error", err)
				c.JSON(http.StatusUnprocessableEntity, gin.H{"error": services.ClassifyFinalizationError(err)})
				return
			}
			// Respond with the batch size and the quota position after enqueueing.
			c.JSON(http.StatusAccepted, gin.H{
				"frame_count": frameCount,
				"quota":       state.commentary.Quota(),
			})
		})

		// Handler for GET /videos/current
		videos.GET("/current", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"frames":             state.commentary.Frames(),
				"stats":              state.commentary.Stats(),
				"finalization_state": state.commentary.FinalizationState().String(),
				"error":              state.commentary.Error(),
			})
		})
	}
}

// CommentaryRouter sets up the API routes for the generated narration.
//
// Inputs:
//   - r: A *gin.RouterGroup to which the commentary routes will be added.
//
// Outputs:
//   - This function does not return any values. It registers route handlers on
//     the provided router group.
//
// This function defines the following endpoints:
//   - GET /commentary: Returns the published narration (script text, SRT subtitles,
//     and base64-encoded WAV audio), or 404 while none exists.
//   - PUT /commentary/text: Replaces the script text with a manual edit and
//     re-synthesizes the audio. The subtitle track is left untouched.
//   - POST /commentary/regenerate: Discards the published narration and re-runs
//     finalization against the same frame batch with the current settings.
//   - GET /commentary/audio: Streams the audio track as a WAV file.
//   - GET /commentary/subtitles: Serves the subtitle track as an SRT file.
func CommentaryRouter(r *gin.RouterGroup) {
	// Group all narration routes under the "/commentary" path.
	commentary := r.Group("/commentary")
	{
		// Handler for GET /commentary
		commentary.GET("", func(c *gin.Context) {
			result, err := state.commentary.Result()
			if err != nil {
				// No narration yet. Surface the standing error message, if any,
				// so the client can show why finalization has not produced one.
				c.JSON(http.StatusNotFound, gin.H{"error": state.commentary.Error()})
				return
			}
			c.JSON(http.StatusOK, result)
		})

		// Handler for PUT /commentary/text
		commentary.PUT("/text", func(c *gin.Context) {
			var body struct {
				Text string `json:"text"`
			}
			if err := c.ShouldBindJSON(&body); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			result, err := state.commentary.UpdateScript(c.Request.Context(), body.Text)
			if err != nil {
				// An empty edit and a missing result are caller mistakes; a
				// synthesis failure is not.
				status := http.StatusInternalServerError
				if errors.Is(err, services.ErrEmptyScript) || errors.Is(err, services.ErrNoResult) {
					status = http.StatusBadRequest
				}
				c.JSON(status, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusOK, result)
		})

		// Handler for POST /commentary/regenerate
		commentary.POST("/regenerate", func(c *gin.Context) {
			state.commentary.Regenerate()
			c.JSON(http.StatusAccepted, gin.H{
				"finalization_state": state.commentary.FinalizationState().String(),
			})
		})

		// Handler for GET /commentary/audio
		// Serves the synthesized narration directly as a playable WAV file, so
		// clients do not have to decode the base64 payload of the JSON result.
		commentary.GET("/audio", func(c *gin.Context) {
			result, err := state.commentary.Result()
			if err != nil || len(result.Audio) == 0 {
				c.Status(http.StatusNotFound)
				return
			}
			c.Data(http.StatusOK, "audio/wav", result.Audio)
		})

		// Handler for GET /commentary/subtitles
		// Serves the SRT track directly so clients can feed it to a player
		// without unpacking the JSON result.
		commentary.GET("/subtitles", func(c *gin.Context) {
			result, err := state.commentary.Result()
			if err != nil || result.Subtitles == "" {
				c.Status(http.StatusNotFound)
				return
			}
			c.Data(http.StatusOK, "application/x-subrip", []byte(result.Subtitles))
		})
	}
}

// SettingsRouter sets up the API routes for the narration settings.
//
// Inputs:
//   - r: A *gin.RouterGroup to which the settings routes will be added.
//
// Outputs:
//   - This function does not return any values. It registers route handlers on
//     the provided router group.
//
// This function defines the following endpoints:
//   - GET /settings: Returns the settings the next finalization pass will use.
//   - PUT /settings: Replaces the settings. Unknown identifiers are rejected.
//   - GET /settings/options: Lists the supported languages, themes, tones, and
//     voice genders for populating selection controls.
func SettingsRouter(r *gin.RouterGroup) {
	settings := r.Group("/settings")
	{
		// Handler for GET /settings
		settings.GET("", func(c *gin.Context) {
			c.JSON(http.StatusOK, state.commentary.Settings())
		})

		// Handler for PUT /settings
		settings.PUT("", func(c *gin.Context) {
			var body model.CommentarySettings
			if err := c.ShouldBindJSON(&body); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			// Validate every enumerated field against its option set before
			// accepting the update.
			if _, ok := model.FindOption(model.Languages, body.Language); !ok {
				c.JSON(http.StatusBadRequest, gin.H{"error": "unknown language: " + body.Language})
				return
			}
			if _, ok := model.FindOption(model.Themes, body.Theme); !ok {
				c.JSON(http.StatusBadRequest, gin.H{"error": "unknown theme: " + body.Theme})
				return
			}
			if _, ok := model.FindOption(model.Tones, body.Tone); !ok {
				c.JSON(http.StatusBadRequest, gin.H{"error": "unknown tone: " + body.Tone})
				return
			}
			if _, ok := model.FindOption(model.VoiceGenders, body.VoiceGender); !ok {
				c.JSON(http.StatusBadRequest, gin.H{"error": "unknown voice gender: " + body.VoiceGender})
				return
			}
			state.commentary.SetSettings(body)
			c.JSON(http.StatusOK, state.commentary.Settings())
		})

		// Handler for GET /settings/options
		settings.GET("/options", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"languages":     model.Languages,
				"themes":        model.Themes,
				"tones":         model.Tones,
				"voice_genders": model.VoiceGenders,
			})
		})
	}
}

// QuotaRouter sets up the API routes for the daily frame quota.
//
// Inputs:
//   - r: A *gin.RouterGroup to which the quota routes will be added.
//
// Outputs:
//   - This function does not return any values. It registers route handlers on
//     the provided router group.
//
// This function defines the following endpoints:
//   - GET /quota: Returns today's usage, the configured limit, and when the
//     counter resets.
//   - POST /quota/reset: Zeroes today's counter and clears a standing quota
//     error so analysis can resume.
func QuotaRouter(r *gin.RouterGroup) {
	quota := r.Group("/quota")
	{
		// Handler for GET /quota
		quota.GET("", func(c *gin.Context) {
			c.JSON(http.StatusOK, state.commentary.Quota())
		})

		// Handler for POST /quota/reset
		quota.POST("/reset", func(c *gin.Context) {
			c.JSON(http.StatusOK, state.commentary.ResetQuota())
		})
	}
}
