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

// Package model defines the core data structures for the application.
// This file holds the user-facing narration settings and the enumerated
// option sets (languages, themes, tones, voice genders) that the prompt
// builders and the speech synthesizer consume. Each enumerated option pairs
// a stable identifier with a display label; languages additionally carry the
// model-facing prompt fragment used when instructing the script generator.
package model

// Language identifiers for the supported narration locales.
const (
	LanguageEnglish = "en-US"
	LanguageHindi   = "hi-IN"
	LanguageUrdu    = "ur-PK"
	LanguagePashto  = "ps-AF"
)

// Theme identifiers controlling the narrative framing of the script.
const (
	ThemeStandard    = "standard"
	ThemeMovie       = "movie"
	ThemeDocumentary = "documentary"
	ThemeSports      = "sports"
	ThemeHorror      = "horror"
	ThemeComedy      = "comedy"
)

// Tone identifiers controlling delivery style. ToneASMR is special: it forces
// a slower pacing target and a fixed soft voice regardless of the other
// tone-derived choices.
const (
	ToneAssertive = "assertive"
	ToneExcited   = "excited"
	ToneCalm      = "calm"
	ToneSarcastic = "sarcastic"
	ToneDramatic  = "dramatic"
	ToneASMR      = "asmr"
)

// Voice gender identifiers.
const (
	VoiceMale   = "male"
	VoiceFemale = "female"
)

// Option is a single enumerated settings choice. Prompt is only populated
// for languages, where it names the output language the way the generative
// model expects it.
type Option struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Prompt string `json:"prompt,omitempty"`
}

// Languages enumerates the supported narration locales.
var Languages = []Option{
	{ID: LanguageEnglish, Label: "English (US)", Prompt: "English"},
	{ID: LanguageHindi, Label: "Hindi (हिंदी)", Prompt: "Hindi (Devanagari script)"},
	{ID: LanguageUrdu, Label: "Urdu (اردو)", Prompt: "Urdu"},
	{ID: LanguagePashto, Label: "Pashto (پښتو)", Prompt: "Pashto"},
}

// Themes enumerates the narrative framings.
var Themes = []Option{
	{ID: ThemeStandard, Label: "Standard Narration"},
	{ID: ThemeMovie, Label: "Movie / Cinematic"},
	{ID: ThemeDocumentary, Label: "Nature Documentary"},
	{ID: ThemeSports, Label: "Sports Commentary"},
	{ID: ThemeHorror, Label: "Horror / Thriller"},
	{ID: ThemeComedy, Label: "Comedy / Roasting"},
}

// Tones enumerates the delivery styles.
var Tones = []Option{
	{ID: ToneAssertive, Label: "Assertive & Deep"},
	{ID: ToneExcited, Label: "Excited & High Energy"},
	{ID: ToneCalm, Label: "Calm & Soothing"},
	{ID: ToneSarcastic, Label: "Sarcastic & Witty"},
	{ID: ToneDramatic, Label: "Dramatic & Intense"},
	{ID: ToneASMR, Label: "ASMR / Soft Whisper"},
}

// VoiceGenders enumerates the voice selection options.
var VoiceGenders = []Option{
	{ID: VoiceMale, Label: "Male"},
	{ID: VoiceFemale, Label: "Female"},
}

// FindOption looks up an option by identifier. The boolean reports whether
// the identifier was present; callers fall back to their own defaults when
// it was not.
func FindOption(options []Option, id string) (Option, bool) {
	for _, o := range options {
		if o.ID == id {
			return o, true
		}
	}
	return Option{}, false
}

// MovieConfig carries the extra context used when the theme is "movie".
type MovieConfig struct {
	Title         string `json:"title"`
	CharacterName string `json:"character_name"`
}

// CommentarySettings is the user-chosen configuration snapshot for one
// narration pass. Callers copy it before starting a finalization so that
// concurrent edits in the options panel cannot change a run in flight.
type CommentarySettings struct {
	Language     string       `json:"language" toml:"language"`
	Theme        string       `json:"theme" toml:"theme"`
	Tone         string       `json:"tone" toml:"tone"`
	VoiceGender  string       `json:"voice_gender" toml:"voice_gender"`
	VideoContext string       `json:"video_context" toml:"video_context"` // Free text, e.g. "A vlog", "CCTV footage".
	Movie        *MovieConfig `json:"movie,omitempty" toml:"movie"`       // Only consulted when Theme == ThemeMovie.
}

// DefaultSettings returns the settings a fresh session starts with.
func DefaultSettings() CommentarySettings {
	return CommentarySettings{
		Language:    LanguageEnglish,
		Theme:       ThemeStandard,
		Tone:        ToneAssertive,
		VoiceGender: VoiceMale,
		Movie:       &MovieConfig{},
	}
}
