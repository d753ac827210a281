package services

import (
	"bytes"
	"encoding/json"
	"log"
	"strings"

	"github.com/prepstack/mockexam-api/services/genai"
	"github.com/prepstack/mockexam-api/utils/llmjson"
)

// RawModelOutput is what the extraction requester hands to the normalizer:
// the parts of the first candidate, in order.
type RawModelOutput struct {
	Parts []genai.Part
}

// NormalizeModelOutput turns raw model output into a question payload map.
// Structured function-call arguments are preferred; free-form text parts are
// the fallback and go through the repair chain in utils/llmjson.
func NormalizeModelOutput(raw RawModelOutput) (map[string]any, error) {
	for _, part := range raw.Parts {
		if part.FunctionCall == nil {
			continue
		}
		payload, err := decodeFunctionArgs(part.FunctionCall.Args)
		if err == nil {
			return payload, nil
		}
		// Malformed args still carry the extraction somewhere in the
		// bytes more often than not; let the text chain try them.
		log.Printf("[EXTRACT] Function call %s had malformed args, retrying as text: %v",
			part.FunctionCall.Name, err)
		if payload, err := llmjson.Normalize(string(part.FunctionCall.Args)); err == nil {
			return payload, nil
		}
		// Args are beyond repair; any text parts are the last resort.
		break
	}

	var text strings.Builder
	for _, part := range raw.Parts {
		if part.Text != "" {
			text.WriteString(part.Text)
		}
	}
	return llmjson.Normalize(text.String())
}

func decodeFunctionArgs(args json.RawMessage) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(args))
	dec.UseNumber()
	var payload map[string]any
	if err := dec.Decode(&payload); err != nil {
		return nil, err
	}
	return payload, nil
}
