package extraction

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/prepstack/mockexam-api/services"
)

type fakeRunner struct {
	summary *services.ExtractionSummary
	err     error

	gotSectionID uint
	gotPDFURL    string
}

func (f *fakeRunner) Run(_ context.Context, sectionID uint, pdfURL string) (*services.ExtractionSummary, error) {
	f.gotSectionID = sectionID
	f.gotPDFURL = pdfURL
	if f.err != nil {
		return nil, f.err
	}
	return f.summary, nil
}

func newTestApp(runner Runner) *fiber.App {
	app := fiber.New()
	handler := NewExtractionHandler(runner)
	app.Post("/api/v1/extraction/sections", handler.Extract)
	return app
}

func postExtract(t *testing.T, app *fiber.App, body string) (int, map[string]any) {
	t.Helper()

	req := httptest.NewRequest("POST", "/api/v1/extraction/sections", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test returned error: %v", err)
	}
	defer resp.Body.Close()

	var decoded map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("response did not decode: %v", err)
	}
	return resp.StatusCode, decoded
}

func TestExtractSuccessContract(t *testing.T) {
	runner := &fakeRunner{summary: &services.ExtractionSummary{
		TotalQuestions:           14,
		QuestionsRequiringReview: 3,
	}}
	app := newTestApp(runner)

	status, body := postExtract(t, app,
		`{"sectionId": "42", "pdfUrl": "https://cdn.example.com/papers/a.pdf"}`)

	if status != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	if body["success"] != true {
		t.Errorf("success = %v, want true", body["success"])
	}
	if body["totalQuestions"] != float64(14) {
		t.Errorf("totalQuestions = %v, want 14", body["totalQuestions"])
	}
	if body["questionsRequiringReview"] != float64(3) {
		t.Errorf("questionsRequiringReview = %v, want 3", body["questionsRequiringReview"])
	}
	if runner.gotSectionID != 42 {
		t.Errorf("section id passed to runner = %d, want 42", runner.gotSectionID)
	}
	if runner.gotPDFURL != "https://cdn.example.com/papers/a.pdf" {
		t.Errorf("pdf url passed to runner = %q", runner.gotPDFURL)
	}
}

func TestExtractPipelineFailureContract(t *testing.T) {
	runner := &fakeRunner{err: fmt.Errorf("generation service failed: status 503")}
	app := newTestApp(runner)

	status, body := postExtract(t, app,
		`{"sectionId": "42", "pdfUrl": "https://cdn.example.com/papers/a.pdf"}`)

	if status != fiber.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", status)
	}
	errMsg, ok := body["error"].(string)
	if !ok || errMsg == "" {
		t.Fatalf("error message missing from body: %v", body)
	}
	if _, hasSuccess := body["success"]; hasSuccess {
		t.Error("failure body must only carry the error field")
	}
}

func TestExtractConflictWhenAlreadyRunning(t *testing.T) {
	runner := &fakeRunner{err: services.ErrExtractionInProgress}
	app := newTestApp(runner)

	status, _ := postExtract(t, app,
		`{"sectionId": "42", "pdfUrl": "https://cdn.example.com/papers/a.pdf"}`)

	if status != fiber.StatusConflict {
		t.Fatalf("status = %d, want 409", status)
	}
}

func TestExtractInvalidRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `this is not json`},
		{"missing section id", `{"pdfUrl": "https://cdn.example.com/a.pdf"}`},
		{"non-numeric section id", `{"sectionId": "abc", "pdfUrl": "https://cdn.example.com/a.pdf"}`},
		{"zero section id", `{"sectionId": "0", "pdfUrl": "https://cdn.example.com/a.pdf"}`},
		{"missing pdf url", `{"sectionId": "42"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &fakeRunner{}
			app := newTestApp(runner)

			status, body := postExtract(t, app, tt.body)
			if status != fiber.StatusBadRequest {
				t.Fatalf("status = %d, want 400", status)
			}
			if _, ok := body["error"]; !ok {
				t.Fatalf("error missing from body: %v", body)
			}
			if runner.gotSectionID != 0 && runner.gotPDFURL != "" {
				t.Error("runner should not be invoked for invalid input")
			}
		})
	}
}
