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

package media

import "encoding/binary"

// Default PCM parameters for the speech synthesis output. The TTS models
// return raw 16-bit little-endian PCM at 24 kHz mono, so the header
// parameters are fixed unless a caller overrides them.
const (
	DefaultSampleRate    = 24000
	DefaultNumChannels   = 1
	DefaultBitsPerSample = 16
)

// WavHeader builds a 44-byte RIFF/WAVE header describing a PCM data chunk
// of dataSize bytes.
func WavHeader(dataSize, numChannels, sampleRate, bitsPerSample int) []byte {
	header := make([]byte, 44)
	byteRate := uint32(sampleRate * numChannels * bitsPerSample / 8)
	blockAlign := uint16(numChannels * bitsPerSample / 8)

	// RIFF chunk descriptor. ChunkSize counts everything after itself,
	// which is the 36 remaining header bytes plus the data chunk.
	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], uint32(dataSize+36))
	copy(header[8:12], "WAVE")

	// "fmt " subchunk, PCM layout.
	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], 16)
	binary.LittleEndian.PutUint16(header[20:22], 1)
	binary.LittleEndian.PutUint16(header[22:24], uint16(numChannels))
	binary.LittleEndian.PutUint32(header[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(header[28:32], byteRate)
	binary.LittleEndian.PutUint16(header[32:34], blockAlign)
	binary.LittleEndian.PutUint16(header[34:36], uint16(bitsPerSample))

	// "data" subchunk.
	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], uint32(dataSize))

	return header
}

// WrapPCM prepends a WAV header to raw PCM samples using the default
// synthesis parameters, producing a playable audio file.
func WrapPCM(pcm []byte) []byte {
	header := WavHeader(len(pcm), DefaultNumChannels, DefaultSampleRate, DefaultBitsPerSample)
	out := make([]byte, 0, len(header)+len(pcm))
	out = append(out, header...)
	return append(out, pcm...)
}
