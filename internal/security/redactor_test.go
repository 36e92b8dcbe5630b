package security

import (
	"fmt"
	"math/rand"
	"regexp"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSanitizeForLogging_RedactsTextField(t *testing.T) {
	t.Parallel()

	in := `{"text": "my secret note", "other": 1}`
	got := SanitizeForLogging(in, 0)

	if strings.Contains(got, "my secret note") {
		t.Fatalf("output still contains the field value: %q", got)
	}
	if !strings.Contains(got, RedactPlaceholder) {
		t.Fatalf("output missing redaction placeholder: %q", got)
	}
}

func TestSanitizeForLogging_RedactsQueryAndTags(t *testing.T) {
	t.Parallel()

	in := `{"query": "deck:Personal embarrassing", "tags": ["secret", "private"]}`
	got := SanitizeForLogging(in, 200)

	for _, leaked := range []string{"embarrassing", "secret", "private"} {
		if strings.Contains(got, leaked) {
			t.Errorf("output leaks %q: %q", leaked, got)
		}
	}
}

func TestSanitizeForLogging_StripsFilePaths(t *testing.T) {
	t.Parallel()

	in := `File "/home/alice/decks/bridge.go", line 10`
	got := SanitizeForLogging(in, 200)

	if strings.Contains(got, "/home/alice") {
		t.Fatalf("output still contains the directory: %q", got)
	}
	if !strings.Contains(got, `File "bridge.go"`) {
		t.Fatalf("output missing trailing filename: %q", got)
	}
}

func TestSanitizeForLogging_TruncationBound(t *testing.T) {
	t.Parallel()

	inputs := []string{
		strings.Repeat("a", 5000),
		strings.Repeat("日", 500),
		"short",
		"",
	}
	for _, in := range inputs {
		for _, max := range []int{10, 100} {
			got := SanitizeForLogging(in, max)
			if n := utf8.RuneCountInString(got); n > max+3 {
				t.Errorf("len(SanitizeForLogging(%d runes, %d)) = %d, want <= %d",
					utf8.RuneCountInString(in), max, n, max+3)
			}
		}
	}
}

func TestSanitizeForLogging_TruncationMarker(t *testing.T) {
	t.Parallel()

	got := SanitizeForLogging(strings.Repeat("x", 200), 100)
	if !strings.HasSuffix(got, "...") {
		t.Fatalf("truncated output missing marker: %q", got)
	}

	got = SanitizeForLogging("fits", 100)
	if strings.HasSuffix(got, "...") {
		t.Fatalf("untruncated output has marker: %q", got)
	}
}

func TestSanitizeForLogging_NonString(t *testing.T) {
	t.Parallel()

	got := SanitizeForLogging(map[string]any{"count": 3}, 100)
	if got == "" {
		t.Fatal("expected stringified output for non-string input")
	}
}

func TestTemplateHash_Deterministic(t *testing.T) {
	t.Parallel()

	const content = "<div>{{Front}}</div>"
	if TemplateHash(content) != TemplateHash(content) {
		t.Fatal("hash is not deterministic")
	}
}

func TestTemplateHash_Format(t *testing.T) {
	t.Parallel()

	hexPattern := regexp.MustCompile(`^[0-9a-f]{64}$`)
	for _, content := range []string{"", "a", "{{Front}}", "日本語"} {
		got := TemplateHash(content)
		if !hexPattern.MatchString(got) {
			t.Errorf("TemplateHash(%q) = %q, want 64 lowercase hex chars", content, got)
		}
	}
}

func TestTemplateHash_Sensitivity(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(1))
	seen := make(map[string]string)
	for range 200 {
		content := fmt.Sprintf("<div>%d</div>", rng.Int63())
		h := TemplateHash(content)
		if prev, ok := seen[h]; ok && prev != content {
			t.Fatalf("collision between %q and %q", prev, content)
		}
		seen[h] = content
	}
}

func TestTemplateHash_KnownVector(t *testing.T) {
	t.Parallel()

	// SHA-256 of the empty string.
	const want = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if got := TemplateHash(""); got != want {
		t.Fatalf("TemplateHash(\"\") = %q, want %q", got, want)
	}
}
