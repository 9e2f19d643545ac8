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

// Package media_test contains unit tests for the media formatting helpers.
// This file covers the WAV container header built around the raw PCM
// samples the speech model returns.
package media_test

import (
	"encoding/binary"
	"testing"

	"github.com/jaycherian/gcp-go-video-narrator/internal/core/media"
	"github.com/stretchr/testify/assert"
)

// TestWavHeader verifies every field of the 44-byte RIFF header for the
// synthesis default format (24 kHz, mono, 16-bit PCM).
func TestWavHeader(t *testing.T) {
	dataSize := 48000
	header := media.WavHeader(dataSize, media.DefaultNumChannels, media.DefaultSampleRate, media.DefaultBitsPerSample)

	assert.Len(t, header, 44)
	assert.Equal(t, "RIFF", string(header[0:4]))
	// ChunkSize counts everything after itself: 36 header bytes plus data.
	assert.Equal(t, uint32(dataSize+36), binary.LittleEndian.Uint32(header[4:8]))
	assert.Equal(t, "WAVE", string(header[8:12]))
	assert.Equal(t, "fmt ", string(header[12:16]))
	// Subchunk1Size 16 and AudioFormat 1 identify plain PCM.
	assert.Equal(t, uint32(16), binary.LittleEndian.Uint32(header[16:20]))
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(header[20:22]))
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(header[22:24]))
	assert.Equal(t, uint32(24000), binary.LittleEndian.Uint32(header[24:28]))
	// ByteRate = SampleRate * NumChannels * BitsPerSample / 8.
	assert.Equal(t, uint32(48000), binary.LittleEndian.Uint32(header[28:32]))
	// BlockAlign = NumChannels * BitsPerSample / 8.
	assert.Equal(t, uint16(2), binary.LittleEndian.Uint16(header[32:34]))
	assert.Equal(t, uint16(16), binary.LittleEndian.Uint16(header[34:36]))
	assert.Equal(t, "data", string(header[36:40]))
	assert.Equal(t, uint32(dataSize), binary.LittleEndian.Uint32(header[40:44]))
}

// TestWrapPCM verifies that wrapping prepends exactly one header and leaves
// the sample bytes untouched.
func TestWrapPCM(t *testing.T) {
	pcm := []byte{0x01, 0x02, 0x03, 0x04}
	wav := media.WrapPCM(pcm)

	assert.Len(t, wav, 44+len(pcm))
	assert.Equal(t, "RIFF", string(wav[0:4]))
	assert.Equal(t, uint32(len(pcm)), binary.LittleEndian.Uint32(wav[40:44]))
	assert.Equal(t, pcm, wav[44:])
}
