package tts

import (
	"slices"
	"strings"
	"testing"
)

func TestSayStrategy_Command(t *testing.T) {
	t.Parallel()

	name, args := sayStrategy{}.Command("hello", 2.0, 1.0)
	if name != "say" {
		t.Fatalf("name = %q, want say", name)
	}
	if !slices.Equal(args, []string{"-r", "350", "hello"}) {
		t.Fatalf("args = %v", args)
	}
}

func TestLinuxStrategy_Espeak(t *testing.T) {
	t.Parallel()

	s := linuxStrategy{engine: "espeak"}
	name, args := s.Command("hello", 1.0, 2.0)
	if name != "espeak" {
		t.Fatalf("name = %q, want espeak", name)
	}
	// Pitch 2.0 maps to 99 after clamping from 100.
	if !slices.Equal(args, []string{"-s", "175", "-p", "99", "hello"}) {
		t.Fatalf("args = %v", args)
	}
}

func TestLinuxStrategy_SpdSay(t *testing.T) {
	t.Parallel()

	s := linuxStrategy{engine: "spd-say"}
	name, args := s.Command("hello", 0.5, 1.5)
	if name != "spd-say" {
		t.Fatalf("name = %q, want spd-say", name)
	}
	if !slices.Equal(args, []string{"-r", "-50", "-i", "50", "hello"}) {
		t.Fatalf("args = %v", args)
	}
}

func TestSAPIStrategy_Command(t *testing.T) {
	t.Parallel()

	name, args := sapiStrategy{}.Command("hello", 2.0, 1.0)
	if name != "powershell" {
		t.Fatalf("name = %q, want powershell", name)
	}
	if len(args) != 2 || args[0] != "-Command" {
		t.Fatalf("args = %v", args)
	}
	if !strings.Contains(args[1], "$synth.Rate = 10") {
		t.Fatalf("script missing clamped rate: %s", args[1])
	}
	// "hello" in UTF-16LE, base64: text never appears raw in the script.
	if strings.Contains(args[1], "hello") {
		t.Fatalf("script leaks raw text: %s", args[1])
	}
	if !strings.Contains(args[1], "aABlAGwAbABvAA==") {
		t.Fatalf("script missing encoded text: %s", args[1])
	}
}

func TestStrategyFor_UnknownPlatform(t *testing.T) {
	t.Parallel()

	if StrategyFor("plan9") != nil {
		t.Fatal("unknown platform should have no strategy")
	}
}
