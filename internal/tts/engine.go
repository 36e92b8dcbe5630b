package tts

import (
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"regexp"
	"runtime"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/droidbridge/droidbridge/internal/security"
)

// Speak failure modes callers branch on. Neither is a caller mistake, so
// neither wraps a validation sentinel.
var (
	ErrNoSynthesizer    = errors.New("tts: no synthesizer available")
	ErrNothingSpeakable = errors.New("tts: nothing speakable in text")
)

// speakablePattern keeps letters, digits, whitespace, and the punctuation the
// synthesizers render sensibly. Everything else is stripped, not rejected, so
// leftover card markup cannot block playback of the surrounding text.
var speakablePattern = regexp.MustCompile(`[^\p{L}\p{N}_\s.,!?;:\-'"()]+`)

var languagePattern = regexp.MustCompile(`^[a-zA-Z]{2,3}([-_][a-zA-Z0-9]{2,8})*$`)

// process is the part of a running synthesizer the engine manages.
type process interface {
	Kill() error
	Wait() error
}

type execProcess struct{ cmd *exec.Cmd }

func (p execProcess) Kill() error { return p.cmd.Process.Kill() }
func (p execProcess) Wait() error { return p.cmd.Wait() }

func startCommand(name string, args []string) (process, error) {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return execProcess{cmd: cmd}, nil
}

// Engine holds the speech state (language, pitch, rate) and at most one
// running synthesizer process. Starting a new utterance stops the previous
// one first.
type Engine struct {
	logger *slog.Logger

	mu       sync.Mutex
	strategy Strategy
	start    func(name string, args []string) (process, error)
	current  process
	language string
	pitch    float64
	rate     float64
}

// Config configures an Engine. Zero values select the platform strategy and
// real process execution.
type Config struct {
	Strategy Strategy
	Logger   *slog.Logger
}

// New returns an engine with default pitch and rate of 1.0.
func New(cfg Config) *Engine {
	strategy := cfg.Strategy
	if strategy == nil {
		strategy = StrategyFor(runtime.GOOS)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		logger:   logger,
		strategy: strategy,
		start:    startCommand,
		language: "en",
		pitch:    1.0,
		rate:     1.0,
	}
}

// SetLanguage sets the synthesis language tag, e.g. "en" or "ja-JP".
func (e *Engine) SetLanguage(lang string) error {
	lang = strings.TrimSpace(lang)
	if !languagePattern.MatchString(lang) {
		return fmt.Errorf("tts: %w: invalid language tag %q", security.ErrInvalidValue, lang)
	}
	e.mu.Lock()
	e.language = lang
	e.mu.Unlock()
	return nil
}

// SetPitch sets the pitch multiplier, 0.5 to 2.0.
func (e *Engine) SetPitch(value any) error {
	pitch, err := security.ValidateFloat(value, MinPitch, MaxPitch)
	if err != nil {
		return fmt.Errorf("tts: pitch: %w", err)
	}
	e.mu.Lock()
	e.pitch = pitch
	e.mu.Unlock()
	return nil
}

// SetRate sets the speaking rate multiplier, 0.5 to 2.0.
func (e *Engine) SetRate(value any) error {
	rate, err := security.ValidateFloat(value, MinRate, MaxRate)
	if err != nil {
		return fmt.Errorf("tts: rate: %w", err)
	}
	e.mu.Lock()
	e.rate = rate
	e.mu.Unlock()
	return nil
}

// Language returns the current language tag.
func (e *Engine) Language() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.language
}

// Speak sanitizes text and starts the platform synthesizer on it. A previous
// utterance still playing is stopped first. The process is not waited on
// inline; playback proceeds in the background.
func (e *Engine) Speak(text string) error {
	text, err := Sanitize(text)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.strategy == nil || !e.strategy.Available() {
		return ErrNoSynthesizer
	}

	if e.current != nil {
		_ = e.current.Kill()
		e.current = nil
	}

	name, args := e.strategy.Command(text, e.rate, e.pitch)
	proc, err := e.start(name, args)
	if err != nil {
		return fmt.Errorf("tts: start %s: %w", name, err)
	}
	e.current = proc

	go e.reap(proc)

	e.logger.Debug("tts speaking",
		slog.String("engine", name),
		slog.Int("text_length", utf8.RuneCountInString(text)))
	return nil
}

// reap waits for the process and clears it, unless a newer utterance already
// replaced it.
func (e *Engine) reap(proc process) {
	_ = proc.Wait()
	e.mu.Lock()
	if e.current == proc {
		e.current = nil
	}
	e.mu.Unlock()
}

// Stop kills the current utterance, if any.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.current != nil {
		_ = e.current.Kill()
		e.current = nil
	}
}

// IsSpeaking reports whether an utterance is still playing.
func (e *Engine) IsSpeaking() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current != nil
}

// Available reports whether a synthesizer exists for this platform.
func (e *Engine) Available() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.strategy != nil && e.strategy.Available()
}

// Sanitize bounds the text length and strips characters outside the speakable
// set. Empty results (after stripping) are an error: there is nothing to say.
func Sanitize(text string) (string, error) {
	if n := utf8.RuneCountInString(text); n > security.MaxTextLengthTTS {
		return "", fmt.Errorf("tts: %w: text too long: %d > %d",
			security.ErrInvalidValue, n, security.MaxTextLengthTTS)
	}

	text = speakablePattern.ReplaceAllString(text, " ")
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return "", ErrNothingSpeakable
	}
	return text, nil
}
