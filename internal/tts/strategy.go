// Package tts speaks card text through the platform speech synthesizer.
// Processes are spawned fire-and-forget: playback never blocks dispatch.
package tts

import (
	"encoding/base64"
	"fmt"
	"os/exec"
	"unicode/utf16"
)

// Speech parameter bounds.
const (
	MinRate  = 0.5
	MaxRate  = 2.0
	MinPitch = 0.5
	MaxPitch = 2.0

	// defaultWPM is the baseline speaking rate for engines that take words
	// per minute.
	defaultWPM = 175

	// Windows SAPI rate range.
	minSAPIRate = -10
	maxSAPIRate = 10
)

// Strategy builds the synthesizer invocation for one platform.
type Strategy interface {
	// Available reports whether the platform synthesizer can be used.
	Available() bool

	// Command returns the executable and arguments that speak text with the
	// given rate and pitch multipliers (both 0.5 to 2.0).
	Command(text string, rate, pitch float64) (name string, args []string)
}

// StrategyFor returns the synthesizer strategy for a GOOS value, or nil when
// the platform has none.
func StrategyFor(goos string) Strategy {
	switch goos {
	case "darwin":
		return sayStrategy{}
	case "linux":
		return newLinuxStrategy()
	case "windows":
		return sapiStrategy{}
	default:
		return nil
	}
}

// sayStrategy uses the macOS say command. Pitch is not adjustable there.
type sayStrategy struct{}

func (sayStrategy) Available() bool {
	_, err := exec.LookPath("say")
	return err == nil
}

func (sayStrategy) Command(text string, rate, _ float64) (string, []string) {
	wpm := int(defaultWPM * rate)
	return "say", []string{"-r", fmt.Sprint(wpm), text}
}

// linuxStrategy prefers spd-say and falls back to espeak.
type linuxStrategy struct {
	engine string
}

func newLinuxStrategy() linuxStrategy {
	for _, engine := range []string{"spd-say", "espeak"} {
		if _, err := exec.LookPath(engine); err == nil {
			return linuxStrategy{engine: engine}
		}
	}
	return linuxStrategy{}
}

func (s linuxStrategy) Available() bool { return s.engine != "" }

func (s linuxStrategy) Command(text string, rate, pitch float64) (string, []string) {
	if s.engine == "spd-say" {
		// Rate and pitch map to the -100..100 percentage ranges.
		spdRate := clampInt(int((rate-1)*100), -100, 100)
		spdPitch := clampInt(int((pitch-1)*100), -100, 100)
		return "spd-say", []string{"-r", fmt.Sprint(spdRate), "-i", fmt.Sprint(spdPitch), text}
	}

	wpm := int(defaultWPM * rate)
	espeakPitch := clampInt(int(50*pitch), 0, 99)
	return "espeak", []string{"-s", fmt.Sprint(wpm), "-p", fmt.Sprint(espeakPitch), text}
}

// sapiStrategy drives Windows SAPI through PowerShell. The text travels
// base64-encoded so no character can escape the script string.
type sapiStrategy struct{}

func (sapiStrategy) Available() bool {
	_, err := exec.LookPath("powershell")
	return err == nil
}

func (sapiStrategy) Command(text string, rate, _ float64) (string, []string) {
	sapiRate := clampInt(int((rate-1)*10), minSAPIRate, maxSAPIRate)
	encoded := base64.StdEncoding.EncodeToString(utf16LEBytes(text))

	script := fmt.Sprintf(`Add-Type -AssemblyName System.Speech
$synth = New-Object System.Speech.Synthesis.SpeechSynthesizer
$synth.Rate = %d
$text = [System.Text.Encoding]::Unicode.GetString([System.Convert]::FromBase64String('%s'))
$synth.Speak($text)`, sapiRate, encoded)

	return "powershell", []string{"-Command", script}
}

func utf16LEBytes(s string) []byte {
	units := utf16.Encode([]rune(s))
	out := make([]byte, 0, len(units)*2)
	for _, u := range units {
		out = append(out, byte(u), byte(u>>8))
	}
	return out
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
