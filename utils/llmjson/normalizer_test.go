package llmjson

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestNormalizeStrictJSON(t *testing.T) {
	obj, err := Normalize(`{"questions": [{"text": "What is 2+2?"}]}`)
	if err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}
	questions, ok := obj["questions"].([]any)
	if !ok || len(questions) != 1 {
		t.Fatalf("expected one question, got %#v", obj["questions"])
	}
}

func TestNormalizeFencedWithTrailingComma(t *testing.T) {
	raw := "```json\n{\"questions\": [{\"text\": \"Q1\"},]}\n```"
	obj, err := Normalize(raw)
	if err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}
	if _, ok := obj["questions"]; !ok {
		t.Fatalf("expected questions key, got %#v", obj)
	}
}

func TestNormalizeLeadingCommentary(t *testing.T) {
	raw := "Here is the extraction you asked for:\n{\"total\": 3}\nLet me know if you need anything else."
	obj, err := Normalize(raw)
	if err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}
	if _, ok := obj["total"]; !ok {
		t.Fatalf("expected total key, got %#v", obj)
	}
}

func TestNormalizeCurlyQuotesAndBOM(t *testing.T) {
	raw := "\uFEFF{“questions”: []}"
	obj, err := Normalize(raw)
	if err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}
	if _, ok := obj["questions"]; !ok {
		t.Fatalf("expected questions key, got %#v", obj)
	}
}

func TestNormalizeSingleQuotedStrings(t *testing.T) {
	obj, err := Normalize(`{'answer_type': 'single'}`)
	if err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}
	if obj["answer_type"] != "single" {
		t.Fatalf("expected answer_type=single, got %#v", obj["answer_type"])
	}
}

func TestNormalizeUnquotedKeys(t *testing.T) {
	obj, err := Normalize(`{confidence: 0.5, text: "Q"}`)
	if err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}
	if obj["text"] != "Q" {
		t.Fatalf("expected text=Q, got %#v", obj["text"])
	}
}

func TestNormalizeNoJSONFails(t *testing.T) {
	long := strings.Repeat("the model rambled on without any JSON at all ", 50)
	_, err := Normalize(long)
	if err == nil {
		t.Fatal("expected error for non-JSON text")
	}

	var formatErr *FormatError
	if !errors.As(err, &formatErr) {
		t.Fatalf("expected *FormatError, got %T", err)
	}
	if len(formatErr.Preview) > PreviewLimit {
		t.Fatalf("preview exceeds limit: %d chars", len(formatErr.Preview))
	}
	if len(formatErr.Attempts) != 4 {
		t.Fatalf("expected 4 attempts, got %v", formatErr.Attempts)
	}
}

func TestPreviewKeepsRuneBoundaries(t *testing.T) {
	// Fill up to just under the limit, then straddle it with multi-byte runes.
	long := strings.Repeat("x", PreviewLimit-1) + strings.Repeat("é", 10)

	got := preview(long)
	if len(got) > PreviewLimit {
		t.Fatalf("preview exceeds limit: %d bytes", len(got))
	}
	if !utf8.ValidString(got) {
		t.Fatalf("preview is not valid UTF-8: %q", got[len(got)-4:])
	}

	short := "entirely within the limit"
	if preview(short) != short {
		t.Fatal("short input should pass through unchanged")
	}
}

func TestNormalizeTruncatedArrayFails(t *testing.T) {
	if _, err := Normalize(`{"questions": [{"text": "Q1"}, {"text":`); err == nil {
		t.Fatal("expected truncated JSON to fail")
	}
}

func TestNormalizeWithStrategies(t *testing.T) {
	tests := []struct {
		name     string
		strategy string
		input    string
		wantErr  bool
	}{
		{"strict accepts valid object", "strict", `{"a": 1}`, false},
		{"strict rejects commentary", "strict", `note {"a": 1}`, true},
		{"strict-sliced recovers wrapped object", "strict-sliced", `note {"a": 1} end`, false},
		{"strict-sliced rejects single quotes", "strict-sliced", `note {'a': 1} end`, true},
		{"lenient-sliced accepts single quotes", "lenient-sliced", `note {'a': 1} end`, false},
		{"lenient accepts bare keys", "lenient", `{a: 1}`, false},
		{"lenient rejects garbage", "lenient", `no braces here`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NormalizeWith(tt.strategy, tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NormalizeWith(%q, %q) error = %v, wantErr %v", tt.strategy, tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestCleanStripTrailingCommasKeepsStrings(t *testing.T) {
	// A comma-brace sequence inside a string literal must survive cleanup.
	in := `{"text": "choose a, }", "n": 1,}`
	obj, err := Normalize(in)
	if err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}
	if obj["text"] != "choose a, }" {
		t.Fatalf("string content mangled: %#v", obj["text"])
	}
}
