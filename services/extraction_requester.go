package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"

	"github.com/prepstack/mockexam-api/services/genai"
)

// extractionTemperature pins sampling for deterministic output
const extractionTemperature = 0

// extractionMaxTokens bounds the structured response size
const extractionMaxTokens = 8192

// Requester performs one structured extraction call against the generation
// API for a single PDF
type Requester interface {
	RequestExtraction(ctx context.Context, pdfContent []byte) (RawModelOutput, error)
}

// GenAIRequester implements Requester on top of the generation API client
type GenAIRequester struct {
	client *genai.Client
}

// NewGenAIRequester creates a requester backed by the given client
func NewGenAIRequester(client *genai.Client) *GenAIRequester {
	return &GenAIRequester{client: client}
}

// RequestExtraction sends the PDF inline with the extraction instruction and
// a forced call to the extraction function. One document, one call.
func (r *GenAIRequester) RequestExtraction(ctx context.Context, pdfContent []byte) (RawModelOutput, error) {
	log.Printf("[EXTRACT] Requesting extraction from %s (%d bytes of PDF)", r.client.Model(), len(pdfContent))

	req := &genai.GenerateRequest{
		Contents: []genai.Content{
			{
				Role: "user",
				Parts: []genai.Part{
					{
						InlineData: &genai.InlineData{
							MimeType: "application/pdf",
							Data:     base64.StdEncoding.EncodeToString(pdfContent),
						},
					},
					{Text: genai.ExtractionInstruction},
				},
			},
		},
		Tools: []genai.Tool{
			{FunctionDeclarations: []genai.FunctionDeclaration{genai.ExtractionDeclaration()}},
		},
		ToolConfig: &genai.ToolConfig{
			FunctionCallingConfig: genai.FunctionCallingConfig{
				Mode:                 "ANY",
				AllowedFunctionNames: []string{genai.ExtractionFunctionName},
			},
		},
		GenerationConfig: &genai.GenerationConfig{
			Temperature:     extractionTemperature,
			MaxOutputTokens: extractionMaxTokens,
		},
	}

	resp, err := r.client.GenerateContent(ctx, req)
	if err != nil {
		return RawModelOutput{}, &UpstreamServiceError{Err: err}
	}
	if len(resp.Candidates) == 0 {
		return RawModelOutput{}, &UpstreamServiceError{Err: fmt.Errorf("response contained no candidates")}
	}

	return RawModelOutput{Parts: resp.Candidates[0].Content.Parts}, nil
}
