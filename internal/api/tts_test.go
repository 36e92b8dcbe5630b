package api

import (
	"errors"
	"testing"

	"github.com/droidbridge/droidbridge/internal/bridge"
	"github.com/droidbridge/droidbridge/internal/security"
)

func TestTtsSpeak(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)

	got := f.mustCall(t, "ankiTtsSpeak", named(map[string]any{"text": "hello world"}))
	if got != true {
		t.Fatalf("speak = %v, want true", got)
	}

	// Nothing speakable left after sanitization.
	got = f.mustCall(t, "ankiTtsSpeak", named(map[string]any{"text": "<><>"}))
	if got != false {
		t.Fatalf("markup-only speak = %v, want false", got)
	}
}

func TestTtsSpeak_Disabled(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	f.api.ttsEnabled = false

	got := f.mustCall(t, "ankiTtsSpeak", named(map[string]any{"text": "hello"}))
	if got != false {
		t.Fatalf("disabled speak = %v, want false", got)
	}
}

func TestTtsSpeak_BadText(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	_, err := f.call(t, "ankiTtsSpeak", named(map[string]any{"text": float64(1)}))
	if bridge.KindOf(err) != bridge.KindTypeError {
		t.Fatalf("numeric text: kind = %v, want TypeError", bridge.KindOf(err))
	}
}

func TestTtsParameters(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)

	if got := f.mustCall(t, "ankiTtsSetLanguage", named(map[string]any{"language_code": "ja-JP"})); got != true {
		t.Fatalf("set language = %v, want true", got)
	}
	if got := f.mustCall(t, "ankiTtsSetPitch", named(map[string]any{"pitch": 1.2})); got != true {
		t.Fatalf("set pitch = %v, want true", got)
	}
	if got := f.mustCall(t, "ankiTtsSetSpeechRate", named(map[string]any{"rate": 1.5})); got != true {
		t.Fatalf("set rate = %v, want true", got)
	}

	_, err := f.call(t, "ankiTtsSetPitch", named(map[string]any{"pitch": 5.0}))
	if !errors.Is(err, security.ErrInvalidValue) {
		t.Fatalf("pitch 5.0: error = %v, want invalid value", err)
	}
	_, err = f.call(t, "ankiTtsSetSpeechRate", named(map[string]any{"rate": "fast"}))
	if !errors.Is(err, security.ErrWrongType) {
		t.Fatalf("string rate: error = %v, want wrong type", err)
	}
}

func TestTtsStopAndStatus(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)

	if got := f.mustCall(t, "ankiTtsStop", bridge.Args{}); got != true {
		t.Fatalf("stop = %v, want true", got)
	}
	if got := f.mustCall(t, "ankiTtsIsSpeaking", bridge.Args{}); got != false {
		t.Fatalf("is speaking = %v, want false", got)
	}
	if got := f.mustCall(t, "ankiTtsFieldModifierIsAvailable", bridge.Args{}); got != true {
		t.Fatalf("field modifier = %v, want true", got)
	}
}

func TestTts_NoEngine(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	f.api.tts = nil

	if got := f.mustCall(t, "ankiTtsSpeak", named(map[string]any{"text": "hello"})); got != false {
		t.Fatalf("speak without engine = %v, want false", got)
	}
	if got := f.mustCall(t, "ankiTtsSetLanguage", named(map[string]any{"language_code": "en"})); got != false {
		t.Fatalf("set language without engine = %v, want false", got)
	}
	if got := f.mustCall(t, "ankiTtsStop", bridge.Args{}); got != true {
		t.Fatalf("stop without engine = %v, want true", got)
	}
}
