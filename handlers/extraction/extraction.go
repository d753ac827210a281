package extraction

import (
	"context"
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/prepstack/mockexam-api/services"
)

// Runner executes the ingestion pipeline for one section
type Runner interface {
	Run(ctx context.Context, sectionID uint, pdfURL string) (*services.ExtractionSummary, error)
}

// ExtractionHandler exposes the ingestion pipeline over HTTP
type ExtractionHandler struct {
	runner Runner
}

// NewExtractionHandler creates a new extraction handler
func NewExtractionHandler(runner Runner) *ExtractionHandler {
	return &ExtractionHandler{runner: runner}
}

// ExtractRequest is the invocation payload. sectionId arrives as a string
// for compatibility with existing clients.
type ExtractRequest struct {
	SectionID string `json:"sectionId"`
	PDFURL    string `json:"pdfUrl"`
}

// Extract handles POST /api/v1/extraction/sections.
//
// The response shape is a fixed contract with the upload UI: 200 with
// {success, totalQuestions, questionsRequiringReview} on success, 500 with
// {error} on any pipeline failure.
func (h *ExtractionHandler) Extract(c *fiber.Ctx) error {
	var req ExtractRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	sectionID, err := strconv.ParseUint(req.SectionID, 10, 32)
	if err != nil || sectionID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "sectionId must be a positive integer",
		})
	}
	if req.PDFURL == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "pdfUrl is required",
		})
	}

	summary, err := h.runner.Run(c.Context(), uint(sectionID), req.PDFURL)
	if err != nil {
		if errors.Is(err, services.ErrExtractionInProgress) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success":                  true,
		"totalQuestions":           summary.TotalQuestions,
		"questionsRequiringReview": summary.QuestionsRequiringReview,
	})
}
