package services

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/prepstack/mockexam-api/services/genai"
)

func TestNormalizeModelOutputPrefersFunctionCall(t *testing.T) {
	raw := RawModelOutput{Parts: []genai.Part{
		{Text: `{"questions": [{"text": "from text, should be ignored"}]}`},
		{FunctionCall: &genai.FunctionCall{
			Name: genai.ExtractionFunctionName,
			Args: json.RawMessage(`{"questions": [{"text": "from function call"}]}`),
		}},
	}}

	obj, err := NormalizeModelOutput(raw)
	if err != nil {
		t.Fatalf("NormalizeModelOutput returned error: %v", err)
	}
	questions := obj["questions"].([]any)
	first := questions[0].(map[string]any)
	if first["text"] != "from function call" {
		t.Fatalf("expected function-call payload to win, got %v", first["text"])
	}
}

func TestNormalizeModelOutputConcatenatesTextParts(t *testing.T) {
	raw := RawModelOutput{Parts: []genai.Part{
		{Text: `{"questions": `},
		{Text: `[]}`},
	}}

	obj, err := NormalizeModelOutput(raw)
	if err != nil {
		t.Fatalf("NormalizeModelOutput returned error: %v", err)
	}
	if _, ok := obj["questions"]; !ok {
		t.Fatalf("split text parts not reassembled: %#v", obj)
	}
}

func TestNormalizeModelOutputMalformedFunctionArgs(t *testing.T) {
	// Single-quoted args fail strict decoding but survive the repair chain.
	raw := RawModelOutput{Parts: []genai.Part{
		{FunctionCall: &genai.FunctionCall{
			Name: genai.ExtractionFunctionName,
			Args: json.RawMessage(`{'questions': []}`),
		}},
	}}

	obj, err := NormalizeModelOutput(raw)
	if err != nil {
		t.Fatalf("NormalizeModelOutput returned error: %v", err)
	}
	if _, ok := obj["questions"]; !ok {
		t.Fatalf("repaired args missing questions: %#v", obj)
	}
}

func TestNormalizeModelOutputBrokenArgsFallBackToText(t *testing.T) {
	// Args that not even the repair chain can parse; a clean text part
	// alongside them still carries the extraction.
	raw := RawModelOutput{Parts: []genai.Part{
		{FunctionCall: &genai.FunctionCall{
			Name: genai.ExtractionFunctionName,
			Args: json.RawMessage(`not json at all`),
		}},
		{Text: `{"questions": [{"text": "from text"}]}`},
	}}

	obj, err := NormalizeModelOutput(raw)
	if err != nil {
		t.Fatalf("NormalizeModelOutput returned error: %v", err)
	}
	questions := obj["questions"].([]any)
	first := questions[0].(map[string]any)
	if first["text"] != "from text" {
		t.Fatalf("expected text fallback payload, got %v", first["text"])
	}
}

func TestNormalizeModelOutputNothingUsable(t *testing.T) {
	raw := RawModelOutput{Parts: []genai.Part{{Text: "no json here"}}}

	_, err := NormalizeModelOutput(raw)
	var formatErr *ExtractionFormatError
	if !errors.As(err, &formatErr) {
		t.Fatalf("expected ExtractionFormatError, got %v", err)
	}
}
