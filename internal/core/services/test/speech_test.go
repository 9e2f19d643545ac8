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

// Package services_test contains unit tests for the narration pipeline's
// business logic. This file tests voice selection and the speech
// synthesizer's guards, and also covers the error classifier that maps
// finalization failures to user-facing messages.
package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jaycherian/gcp-go-video-narrator/internal/core/model"
	"github.com/jaycherian/gcp-go-video-narrator/internal/core/services"
	test "github.com/jaycherian/gcp-go-video-narrator/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSpeechModel is a canned cloud.SpeechModel implementation.
type fakeSpeechModel struct {
	pcm       []byte
	err       error
	lastVoice string
	lastText  string
}

func (f *fakeSpeechModel) Synthesize(_ context.Context, text string, voiceName string) ([]byte, error) {
	f.lastText = text
	f.lastVoice = voiceName
	return f.pcm, f.err
}

// TestSelectVoice verifies the full settings-to-voice mapping table,
// including the ASMR override.
func TestSelectVoice(t *testing.T) {
	cases := []struct {
		gender string
		tone   string
		voice  string
	}{
		{model.VoiceFemale, model.ToneAssertive, services.VoiceKore},
		{model.VoiceFemale, model.ToneExcited, services.VoiceKore},
		{model.VoiceFemale, model.ToneASMR, services.VoiceKore},
		{model.VoiceMale, model.ToneCalm, services.VoiceCharon},
		{model.VoiceMale, model.ToneASMR, services.VoiceCharon},
		{model.VoiceMale, model.ToneExcited, services.VoicePuck},
		{model.VoiceMale, model.ToneAssertive, services.VoiceFenrir},
		{model.VoiceMale, model.ToneDramatic, services.VoiceFenrir},
		{model.VoiceMale, model.ToneSarcastic, services.VoiceFenrir},
	}
	for _, c := range cases {
		settings := model.CommentarySettings{VoiceGender: c.gender, Tone: c.tone}
		assert.Equalf(t, c.voice, services.SelectVoice(settings), "gender=%s tone=%s", c.gender, c.tone)
	}
}

// TestSynthesizeWrapsPCM verifies that the model's raw PCM comes back as a
// playable WAV payload using the selected voice.
func TestSynthesizeWrapsPCM(t *testing.T) {
	fake := &fakeSpeechModel{pcm: test.GetTestPCM(256)}
	synth := services.NewSpeechSynthesizer(fake)

	settings := model.DefaultSettings()
	wav, err := synth.Synthesize(context.Background(), "A calm evening by the water.", settings)

	require.NoError(t, err)
	assert.Len(t, wav, 44+256)
	assert.Equal(t, "RIFF", string(wav[0:4]))
	assert.Equal(t, services.VoiceFenrir, fake.lastVoice)
	assert.Equal(t, "A calm evening by the water.", fake.lastText)
}

// TestSynthesizeEmptyText verifies that blank narration is rejected before
// any model call.
func TestSynthesizeEmptyText(t *testing.T) {
	fake := &fakeSpeechModel{pcm: test.GetTestPCM(16)}
	synth := services.NewSpeechSynthesizer(fake)

	_, err := synth.Synthesize(context.Background(), "   \n", model.DefaultSettings())

	assert.ErrorIs(t, err, services.ErrEmptyScript)
	assert.Empty(t, fake.lastText)
}

// TestSynthesizeModelError verifies that a model failure propagates.
func TestSynthesizeModelError(t *testing.T) {
	fake := &fakeSpeechModel{err: errors.New("speech backend down")}
	synth := services.NewSpeechSynthesizer(fake)

	_, err := synth.Synthesize(context.Background(), "Some narration.", model.DefaultSettings())

	assert.Error(t, err)
}

// TestClassifyFinalizationError verifies the mapping from internal failures
// to the distinguishable user-facing messages.
func TestClassifyFinalizationError(t *testing.T) {
	assert.Equal(t, "", services.ClassifyFinalizationError(nil))
	assert.Equal(t, services.MsgNoFrames, services.ClassifyFinalizationError(services.ErrNoFramesExtracted))
	assert.Equal(t, services.MsgAllFramesFailed, services.ClassifyFinalizationError(services.ErrAllFramesFailed))
	assert.Equal(t, services.MsgEmptyScript, services.ClassifyFinalizationError(services.ErrEmptyScript))
	assert.Equal(t, services.MsgCredential, services.ClassifyFinalizationError(errors.New("rpc error: code = Unauthenticated desc = API key not valid")))
	assert.Equal(t, services.MsgGeneric, services.ClassifyFinalizationError(errors.New("something else entirely")))
}
