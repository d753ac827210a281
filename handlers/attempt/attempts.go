package attempt

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/prepstack/mockexam-api/services"
	"github.com/prepstack/mockexam-api/utils/response"
	"github.com/prepstack/mockexam-api/utils/validation"
)

// AttemptHandler handles mock-exam attempt submission and listing
type AttemptHandler struct {
	attempts  *services.AttemptService
	validator *validation.Validator
}

// NewAttemptHandler creates a new attempt handler
func NewAttemptHandler(attempts *services.AttemptService) *AttemptHandler {
	return &AttemptHandler{
		attempts:  attempts,
		validator: validation.NewValidator(),
	}
}

// SubmitAttemptRequest represents the request body for submitting an attempt
type SubmitAttemptRequest struct {
	CandidateName string            `json:"candidate_name" validate:"required,min=1,max=255"`
	Answers       map[string]string `json:"answers" validate:"required"`
}

// SubmitAttempt handles POST /api/v1/exams/:id/attempts
func (h *AttemptHandler) SubmitAttempt(c *fiber.Ctx) error {
	examID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid exam id")
	}

	var req SubmitAttemptRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(&req); err != nil {
		return response.ValidationError(c, err)
	}

	attempt, err := h.attempts.SubmitAttempt(c.Context(), uint(examID),
		validation.SanitizeString(req.CandidateName), req.Answers)
	if err != nil {
		return response.InternalServerError(c, "Failed to submit attempt")
	}

	return response.Created(c, attempt)
}

// GetAttempt handles GET /api/v1/exams/:id/attempts/:attempt_id
func (h *AttemptHandler) GetAttempt(c *fiber.Ctx) error {
	examID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid exam id")
	}

	attemptID, err := strconv.ParseUint(c.Params("attempt_id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid attempt id")
	}

	attempt, err := h.attempts.GetAttempt(c.Context(), uint(examID), uint(attemptID))
	if err != nil {
		return response.NotFound(c, "Attempt not found")
	}

	return response.Success(c, attempt)
}

// ListAttempts handles GET /api/v1/exams/:id/attempts
func (h *AttemptHandler) ListAttempts(c *fiber.Ctx) error {
	examID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid exam id")
	}

	attempts, err := h.attempts.ListAttempts(c.Context(), uint(examID))
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch attempts")
	}

	return response.Success(c, attempts)
}
