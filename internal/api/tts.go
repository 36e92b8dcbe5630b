package api

import (
	"context"
	"errors"
	"log/slog"

	"github.com/droidbridge/droidbridge/internal/bridge"
	"github.com/droidbridge/droidbridge/internal/security"
	"github.com/droidbridge/droidbridge/internal/tts"
)

func (a *API) ttsOperations() []bridge.Operation {
	return []bridge.Operation{
		{Name: "ankiTtsSpeak", Params: []string{"text", "queue_mode"}, Handler: a.ttsSpeak},
		{Name: "ankiTtsSetLanguage", Params: []string{"language_code"}, Handler: a.ttsSetLanguage},
		{Name: "ankiTtsSetPitch", Params: []string{"pitch"}, Handler: a.ttsSetPitch},
		{Name: "ankiTtsSetSpeechRate", Params: []string{"rate"}, Handler: a.ttsSetSpeechRate},
		{Name: "ankiTtsIsSpeaking", Handler: a.ttsIsSpeaking},
		{Name: "ankiTtsStop", Handler: a.ttsStop},
		// The desktop host ships its own field modifier.
		{Name: "ankiTtsFieldModifierIsAvailable", Handler: constHandler(true)},
	}
}

// ttsSpeak speaks sanitized card text. Oversized text is a caller error;
// a missing synthesizer or nothing speakable just reports false. queue_mode
// is accepted for mobile API compatibility but every call interrupts.
func (a *API) ttsSpeak(_ context.Context, args bridge.Args) (any, error) {
	v, err := requireArg("ankiTtsSpeak", args, "text")
	if err != nil {
		return nil, err
	}
	text, ok := v.(string)
	if !ok {
		return nil, bridge.Errorf(bridge.KindTypeError, "ankiTtsSpeak: text must be a string, got %T", v)
	}

	if !a.ttsEnabled || a.tts == nil {
		return false, nil
	}

	switch err := a.tts.Speak(text); {
	case err == nil:
		return true, nil
	case errors.Is(err, tts.ErrNoSynthesizer), errors.Is(err, tts.ErrNothingSpeakable):
		return false, nil
	case errors.Is(err, security.ErrInvalidValue):
		return nil, err
	default:
		a.logger.Warn("tts speak failed", slog.Any("error", err))
		return false, nil
	}
}

func (a *API) ttsSetLanguage(_ context.Context, args bridge.Args) (any, error) {
	v, err := requireArg("ankiTtsSetLanguage", args, "language_code")
	if err != nil {
		return nil, err
	}
	lang, ok := v.(string)
	if !ok {
		return nil, bridge.Errorf(bridge.KindTypeError, "ankiTtsSetLanguage: language_code must be a string, got %T", v)
	}
	if a.tts == nil {
		return false, nil
	}
	if err := a.tts.SetLanguage(lang); err != nil {
		return nil, err
	}
	return true, nil
}

func (a *API) ttsSetPitch(_ context.Context, args bridge.Args) (any, error) {
	v, err := requireArg("ankiTtsSetPitch", args, "pitch")
	if err != nil {
		return nil, err
	}
	if a.tts == nil {
		return false, nil
	}
	if err := a.tts.SetPitch(v); err != nil {
		return nil, err
	}
	return true, nil
}

func (a *API) ttsSetSpeechRate(_ context.Context, args bridge.Args) (any, error) {
	v, err := requireArg("ankiTtsSetSpeechRate", args, "rate")
	if err != nil {
		return nil, err
	}
	if a.tts == nil {
		return false, nil
	}
	if err := a.tts.SetRate(v); err != nil {
		return nil, err
	}
	return true, nil
}

func (a *API) ttsIsSpeaking(context.Context, bridge.Args) (any, error) {
	if a.tts == nil {
		return false, nil
	}
	return a.tts.IsSpeaking(), nil
}

func (a *API) ttsStop(context.Context, bridge.Args) (any, error) {
	if a.tts != nil {
		a.tts.Stop()
	}
	return true, nil
}
