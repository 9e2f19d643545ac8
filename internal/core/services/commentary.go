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

// Package services contains the business logic of the narration pipeline.
// This file implements the CommentaryService, the orchestrator that ties
// the whole pipeline together: it owns the current video session (frame
// batch, settings, published result, standing error), feeds extracted
// frames to the Analysis Queue, relays each completion to the Finalization
// Controller, and exposes the operations the HTTP layer calls.
//
// One session exists per process. Uploading a new video discards the
// previous batch wholesale: the queue backlog is cleared, finalization
// flags reset, and frame identifiers restart from zero.
package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/jaycherian/gcp-go-video-narrator/internal/core/model"
)

// Ingestor produces a pending frame batch from an uploaded video file.
// Implemented by workflow.VideoIngestWorkflow.
type Ingestor interface {
	Run(ctx context.Context, videoPath string) ([]*model.Frame, error)
}

// FinalizeRunner executes one finalization pass over a settled frame batch.
// Implemented by workflow.CommentaryWorkflow.
type FinalizeRunner interface {
	Run(ctx context.Context, frames []*model.Frame, settings model.CommentarySettings) (*model.CommentaryResult, error)
}

// ErrNoResult is returned by operations that need a published commentary
// when none exists.
var ErrNoResult = errors.New("no commentary result available")

// CommentaryService orchestrates the narration pipeline for the current
// video session.
type CommentaryService struct {
	mu           sync.Mutex
	frames       []*model.Frame
	settings     model.CommentarySettings
	result       *model.CommentaryResult
	errMsg       string
	synthesizing bool

	ctx       context.Context
	quota     QuotaStore
	analyze   AnalyzeFunc
	interval  time.Duration
	queue     *AnalysisQueue
	finalizer *FinalizationController
	ingest    Ingestor
	runner    FinalizeRunner
	synth     *SpeechSynthesizer
}

// NewCommentaryService wires the orchestrator.
//
// Inputs:
//   - ctx: Root context governing all remote calls for the session.
//   - quota: The daily usage counter.
//   - analyze: The frame analyzer collaborator.
//   - interval: Minimum spacing between consecutive analysis requests.
//   - ingest: The upload ingestion workflow.
//   - runner: The finalization workflow.
//   - synth: The speech synthesizer, used directly for manual script edits.
//
// Outputs:
//   - *CommentaryService: The ready-to-use orchestrator.
func NewCommentaryService(
	ctx context.Context,
	quota QuotaStore,
	analyze AnalyzeFunc,
	interval time.Duration,
	ingest Ingestor,
	runner FinalizeRunner,
	synth *SpeechSynthesizer,
) *CommentaryService {
	s := &CommentaryService{
		ctx:      ctx,
		quota:    quota,
		analyze:  analyze,
		interval: interval,
		ingest:   ingest,
		runner:   runner,
		synth:    synth,
		settings: model.DefaultSettings(),
	}
	s.queue = s.newQueue()
	s.finalizer = NewFinalizationController(s.finalize)
	return s
}

// newQueue builds a fresh analysis queue for one upload session. The queue
// shares the service lock for frame mutations, and its completion callback
// carries the queue's own identity so events from a superseded session are
// dropped instead of corrupting the current one. Each queue is a new
// lifetime, so the quota sentinel re-arms with every upload.
func (s *CommentaryService) newQueue() *AnalysisQueue {
	var q *AnalysisQueue
	q = NewAnalysisQueue(s.ctx, s.quota, s.analyze, s.interval, &s.mu, func(fc FrameCompletion) {
		s.onFrameCompleted(q, fc)
	})
	return q
}

// LoadVideo replaces the current session with a fresh batch extracted from
// the uploaded file and starts draining it through the analysis queue.
//
// Inputs:
//   - ctx: The request context for the extraction step.
//   - videoPath: Local path of the uploaded video file.
//
// Outputs:
//   - int: The number of frames extracted.
//   - error: An error if ingestion failed; the previous session is already
//     discarded at that point.
func (s *CommentaryService) LoadVideo(ctx context.Context, videoPath string) (int, error) {
	// Cancel the previous batch before extraction begins so its in-flight
	// completions cannot interleave with the new session.
	s.queue.Clear()

	s.mu.Lock()
	s.frames = nil
	s.result = nil
	s.errMsg = ""
	s.synthesizing = false
	// Replace the queue so the new session gets a fresh lifetime. The old
	// queue's remaining events are discarded by the identity check in
	// onFrameCompleted.
	queue := s.newQueue()
	s.queue = queue
	s.mu.Unlock()
	s.finalizer.Reset()

	frames, err := s.ingest.Run(ctx, videoPath)
	if err != nil {
		slog.Error("video ingestion failed", "error", err)
		return 0, err
	}

	s.mu.Lock()
	s.frames = frames
	s.mu.Unlock()

	slog.Info("video loaded", "frames", len(frames))
	queue.Enqueue(frames)
	s.observe()
	return len(frames), nil
}

// onFrameCompleted receives one completion event per processed frame, plus
// at most one quota sentinel per queue lifetime. Events arrive in backlog
// order from the single drain goroutine. Events tagged with a queue that is
// no longer current belong to a superseded upload and are dropped.
func (s *CommentaryService) onFrameCompleted(q *AnalysisQueue, fc FrameCompletion) {
	if fc.IsQuotaSentinel() {
		s.mu.Lock()
		if q != s.queue {
			s.mu.Unlock()
			return
		}
		s.errMsg = MsgQuotaExceeded
		// Frames abandoned in the backlog will never be analyzed; settle
		// them so the batch reads as terminal with a standing error.
		for _, f := range s.frames {
			if !f.IsTerminal() {
				f.Status = model.FrameStatusError
			}
		}
		s.mu.Unlock()
		s.observe()
		return
	}
	s.mu.Lock()
	stale := q != s.queue
	s.mu.Unlock()
	if stale {
		return
	}
	// The queue mutated the frame in place; the event is the notification
	// that the batch state changed.
	slog.Debug("frame analyzed", "frame", fc.FrameID)
	s.observe()
}

// observe builds a fresh snapshot and feeds it to the finalization
// controller. Called on every event that can change the transition rule's
// inputs.
func (s *CommentaryService) observe() {
	s.mu.Lock()
	snapshot := BatchSnapshot{
		HasFrames:         len(s.frames) > 0,
		AllTerminal:       model.AllTerminal(s.frames),
		CommentaryPresent: s.result != nil,
		Synthesizing:      s.synthesizing,
		ErrorPresent:      s.errMsg != "",
	}
	s.mu.Unlock()
	s.finalizer.Observe(snapshot)
}

// finalize is the controller's runner: it executes one synthesis pass and
// publishes the result or the classified error.
func (s *CommentaryService) finalize() {
	s.mu.Lock()
	s.synthesizing = true
	frames := s.frames
	settings := s.settings
	s.mu.Unlock()

	result, err := s.runner.Run(s.ctx, frames, settings)

	s.mu.Lock()
	s.synthesizing = false
	if err != nil {
		s.errMsg = ClassifyFinalizationError(err)
		slog.Error("finalization failed", "error", err, "message", s.errMsg)
	} else {
		s.result = result
		s.errMsg = ""
		slog.Info("commentary published")
	}
	s.mu.Unlock()
	s.finalizer.Complete(err)
}

// UpdateScript replaces the narration text and re-synthesizes only the
// audio, leaving the subtitle track untouched. On failure the previous
// result is left fully intact.
//
// Inputs:
//   - ctx: The request context.
//   - newText: The edited narration text; must be non-empty.
//
// Outputs:
//   - *model.CommentaryResult: The updated result.
//   - error: ErrNoResult, ErrEmptyScript, or the synthesis failure.
func (s *CommentaryService) UpdateScript(ctx context.Context, newText string) (*model.CommentaryResult, error) {
	if strings.TrimSpace(newText) == "" {
		return nil, ErrEmptyScript
	}
	s.mu.Lock()
	current := s.result
	settings := s.settings
	s.mu.Unlock()
	if current == nil {
		return nil, ErrNoResult
	}

	audio, err := s.synth.Synthesize(ctx, newText, settings)
	if err != nil {
		slog.Error("audio regeneration failed", "error", err)
		return nil, err
	}

	s.mu.Lock()
	s.result = &model.CommentaryResult{
		Text:      newText,
		Subtitles: current.Subtitles,
		Audio:     audio,
	}
	updated := s.result
	s.mu.Unlock()
	return updated, nil
}

// Regenerate discards the published result and standing error, re-arms the
// finalization controller, and lets the transition rule fire again against
// the same frame set.
func (s *CommentaryService) Regenerate() {
	s.mu.Lock()
	s.result = nil
	s.errMsg = ""
	s.mu.Unlock()
	s.finalizer.Regenerate()
	s.observe()
}

// Result returns the published commentary, or ErrNoResult.
func (s *CommentaryService) Result() (*model.CommentaryResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return nil, ErrNoResult
	}
	return s.result, nil
}

// Error returns the standing user-facing error message, if any.
func (s *CommentaryService) Error() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errMsg
}

// Settings returns the current settings snapshot.
func (s *CommentaryService) Settings() model.CommentarySettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// SetSettings replaces the settings used by the next finalization pass.
// A pass already in flight keeps its own snapshot.
func (s *CommentaryService) SetSettings(settings model.CommentarySettings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = settings
}

// Frames returns a snapshot of the current batch. Values are copies taken
// under the service lock, so callers can read them while analysis runs.
func (s *CommentaryService) Frames() []model.Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := make([]model.Frame, len(s.frames))
	for i, f := range s.frames {
		snapshot[i] = *f
	}
	return snapshot
}

// Stats summarizes the processing state of the current batch.
func (s *CommentaryService) Stats() model.ProcessingStats {
	s.mu.Lock()
	total := len(s.frames)
	analyzed := 0
	for _, f := range s.frames {
		if f.IsTerminal() {
			analyzed++
		}
	}
	synthesizing := s.synthesizing
	queue := s.queue
	s.mu.Unlock()

	return model.ProcessingStats{
		TotalFrames:    total,
		AnalyzedFrames: analyzed,
		QueuedFrames:   queue.Pending(),
		IsProcessing:   queue.Active() || synthesizing,
	}
}

// Quota returns the persisted daily usage as API-facing stats.
func (s *CommentaryService) Quota() model.UsageStats {
	usage := s.quota.Read()
	return model.UsageStats{
		UsedFrames:      usage.Used,
		DailyLimit:      usage.Limit,
		RemainingFrames: usage.Remaining,
		ResetTime:       usage.ResetsAt,
	}
}

// ResetQuota zeroes today's usage counter and clears a standing quota
// error so a retry can proceed.
func (s *CommentaryService) ResetQuota() model.UsageStats {
	s.quota.Reset()
	s.mu.Lock()
	if s.errMsg == MsgQuotaExceeded {
		s.errMsg = ""
	}
	s.mu.Unlock()
	return s.Quota()
}

// FinalizationState exposes the controller's position for the status API.
func (s *CommentaryService) FinalizationState() FinalizationState {
	return s.finalizer.State()
}
