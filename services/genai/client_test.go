package genai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGenerateContentRequestShape(t *testing.T) {
	var gotPath, gotKey string
	var gotBody map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("request body did not decode: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates": [{"content": {"parts": [{"text": "ok"}]}}]}`))
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL), WithModel("test-model"))
	resp, err := client.GenerateContent(context.Background(), &GenerateRequest{
		Contents: []Content{{Role: "user", Parts: []Part{{Text: "hello"}}}},
		Tools:    []Tool{{FunctionDeclarations: []FunctionDeclaration{ExtractionDeclaration()}}},
		ToolConfig: &ToolConfig{FunctionCallingConfig: FunctionCallingConfig{
			Mode:                 "ANY",
			AllowedFunctionNames: []string{ExtractionFunctionName},
		}},
		GenerationConfig: &GenerationConfig{Temperature: 0, MaxOutputTokens: 8192},
	})
	if err != nil {
		t.Fatalf("GenerateContent returned error: %v", err)
	}

	if gotPath != "/v1beta/models/test-model:generateContent" {
		t.Errorf("path = %q", gotPath)
	}
	if gotKey != "test-key" {
		t.Errorf("api key header = %q", gotKey)
	}

	toolConfig, ok := gotBody["tool_config"].(map[string]any)
	if !ok {
		t.Fatalf("tool_config missing from body: %v", gotBody)
	}
	fcc, _ := toolConfig["function_calling_config"].(map[string]any)
	if fcc["mode"] != "ANY" {
		t.Errorf("function calling mode = %v, want ANY", fcc["mode"])
	}
	if _, ok := gotBody["generationConfig"]; !ok {
		t.Error("generationConfig missing from body")
	}
	if _, ok := gotBody["tools"]; !ok {
		t.Error("tools missing from body")
	}

	if len(resp.Candidates) != 1 || resp.Candidates[0].Content.Parts[0].Text != "ok" {
		t.Errorf("response did not decode: %+v", resp)
	}
}

func TestGenerateContentFunctionCallResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates": [{"content": {"parts": [
			{"functionCall": {"name": "record_exam_questions", "args": {"questions": []}}}
		]}}]}`))
	}))
	defer server.Close()

	client := NewClient("k", WithBaseURL(server.URL))
	resp, err := client.GenerateContent(context.Background(), &GenerateRequest{})
	if err != nil {
		t.Fatalf("GenerateContent returned error: %v", err)
	}

	part := resp.Candidates[0].Content.Parts[0]
	if part.FunctionCall == nil {
		t.Fatal("functionCall part not decoded")
	}
	if part.FunctionCall.Name != ExtractionFunctionName {
		t.Errorf("function name = %q", part.FunctionCall.Name)
	}
	if len(part.FunctionCall.Args) == 0 {
		t.Error("args not captured as raw JSON")
	}
}

func TestGenerateContentNonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error": {"message": "model overloaded"}}`))
	}))
	defer server.Close()

	client := NewClient("k", WithBaseURL(server.URL))
	_, err := client.GenerateContent(context.Background(), &GenerateRequest{})

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", apiErr.StatusCode)
	}
	if apiErr.Body == "" {
		t.Error("error body not captured")
	}
}

func TestGenerateContentTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // refuse connections

	client := NewClient("k", WithBaseURL(server.URL))
	_, err := client.GenerateContent(context.Background(), &GenerateRequest{})
	if err == nil {
		t.Fatal("expected transport error")
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		t.Fatal("transport failure should not be an APIError")
	}
}
