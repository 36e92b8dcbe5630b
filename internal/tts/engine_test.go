package tts

import (
	"errors"
	"strings"
	"sync"
	"testing"
)

type fakeProcess struct {
	mu     sync.Mutex
	killed bool
	done   chan struct{}
}

func newFakeProcess() *fakeProcess {
	return &fakeProcess{done: make(chan struct{})}
}

func (p *fakeProcess) Kill() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.killed {
		p.killed = true
		close(p.done)
	}
	return nil
}

func (p *fakeProcess) Wait() error {
	<-p.done
	return nil
}

func (p *fakeProcess) finish() {
	p.Kill()
}

type fakeStrategy struct {
	mu    sync.Mutex
	calls [][]string
}

func (*fakeStrategy) Available() bool { return true }

func (s *fakeStrategy) Command(text string, rate, pitch float64) (string, []string) {
	s.mu.Lock()
	s.calls = append(s.calls, []string{text})
	s.mu.Unlock()
	return "fake-synth", []string{text}
}

func newTestEngine(t *testing.T) (*Engine, *[]*fakeProcess) {
	t.Helper()

	e := New(Config{Strategy: &fakeStrategy{}})
	var procs []*fakeProcess
	e.start = func(name string, args []string) (process, error) {
		p := newFakeProcess()
		procs = append(procs, p)
		return p, nil
	}
	return e, &procs
}

func TestEngine_SpeakAndStop(t *testing.T) {
	t.Parallel()

	e, procs := newTestEngine(t)

	if err := e.Speak("hello world"); err != nil {
		t.Fatalf("Speak returned error: %v", err)
	}
	if !e.IsSpeaking() {
		t.Fatal("IsSpeaking = false while process runs")
	}

	e.Stop()
	if e.IsSpeaking() {
		t.Fatal("IsSpeaking = true after Stop")
	}
	if !(*procs)[0].killed {
		t.Fatal("Stop did not kill the process")
	}
}

func TestEngine_SpeakStopsPrevious(t *testing.T) {
	t.Parallel()

	e, procs := newTestEngine(t)

	if err := e.Speak("first"); err != nil {
		t.Fatalf("first Speak returned error: %v", err)
	}
	if err := e.Speak("second"); err != nil {
		t.Fatalf("second Speak returned error: %v", err)
	}

	if !(*procs)[0].killed {
		t.Fatal("first utterance should have been stopped")
	}
	if !e.IsSpeaking() {
		t.Fatal("second utterance should be playing")
	}
	(*procs)[1].finish()
}

func TestEngine_ParameterValidation(t *testing.T) {
	t.Parallel()

	e := New(Config{Strategy: &fakeStrategy{}})

	if err := e.SetRate(1.5); err != nil {
		t.Fatalf("SetRate(1.5) returned error: %v", err)
	}
	if err := e.SetRate(3.0); err == nil {
		t.Fatal("SetRate(3.0) should fail")
	}
	if err := e.SetPitch(0.1); err == nil {
		t.Fatal("SetPitch(0.1) should fail")
	}
	if err := e.SetLanguage("ja-JP"); err != nil {
		t.Fatalf("SetLanguage(ja-JP) returned error: %v", err)
	}
	if err := e.SetLanguage("not a language!"); err == nil {
		t.Fatal("SetLanguage with spaces should fail")
	}
	if e.Language() != "ja-JP" {
		t.Fatalf("Language = %q, want ja-JP", e.Language())
	}
}

func TestSanitize(t *testing.T) {
	t.Parallel()

	got, err := Sanitize("Hello, <b>world</b>!")
	if err != nil {
		t.Fatalf("Sanitize returned error: %v", err)
	}
	if got != "Hello, b world b !" {
		t.Fatalf("Sanitize = %q", got)
	}

	if _, err := Sanitize("<><><>"); err == nil {
		t.Fatal("all-markup text should not be speakable")
	}

	if _, err := Sanitize(strings.Repeat("a", 10001)); err == nil {
		t.Fatal("oversized text should be rejected")
	}
}

func TestEngine_StartFailure(t *testing.T) {
	t.Parallel()

	e := New(Config{Strategy: &fakeStrategy{}})
	e.start = func(string, []string) (process, error) {
		return nil, errors.New("exec format error")
	}

	if err := e.Speak("hello"); err == nil {
		t.Fatal("Speak should surface the start error")
	}
	if e.IsSpeaking() {
		t.Fatal("failed start should not leave the engine speaking")
	}
}
