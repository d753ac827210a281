package question

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/prepstack/mockexam-api/model"
	"github.com/prepstack/mockexam-api/utils/response"
	"github.com/prepstack/mockexam-api/utils/validation"
)

// QuestionHandler handles the manual review/editing workflow for extracted
// questions. The ingestion pipeline never updates questions; this is the
// only write path after the batch insert.
type QuestionHandler struct {
	db        *gorm.DB
	validator *validation.Validator
}

// NewQuestionHandler creates a new question handler
func NewQuestionHandler(db *gorm.DB) *QuestionHandler {
	return &QuestionHandler{
		db:        db,
		validator: validation.NewValidator(),
	}
}

// UpdateQuestionRequest represents the request body for editing a question
type UpdateQuestionRequest struct {
	Text       string    `json:"text" validate:"omitempty,min=1"`
	Options    *[]string `json:"options"`
	AnswerType string    `json:"answer_type" validate:"omitempty,max=20"`
	AnswerHint *string   `json:"answer_hint"`
	Reviewed   *bool     `json:"reviewed"`
}

// ListSectionQuestions handles GET /api/v1/sections/:id/questions
func (h *QuestionHandler) ListSectionQuestions(c *fiber.Ctx) error {
	sectionID := c.Params("id")

	var questions []model.ExtractedQuestion
	query := h.db.Where("section_id = ?", sectionID).Order("question_number ASC")
	if c.Query("requires_review") == "true" {
		query = query.Where("requires_review = ?", true)
	}
	if err := query.Find(&questions).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch questions")
	}

	return response.Success(c, questions)
}

// UpdateQuestion handles PUT /api/v1/questions/:id
func (h *QuestionHandler) UpdateQuestion(c *fiber.Ctx) error {
	id := c.Params("id")

	var question model.ExtractedQuestion
	if err := h.db.First(&question, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Question not found")
		}
		return response.InternalServerError(c, "Failed to fetch question")
	}

	var req UpdateQuestionRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(&req); err != nil {
		return response.ValidationError(c, err)
	}

	if req.AnswerType != "" && !model.KnownAnswerType(req.AnswerType) {
		return response.BadRequest(c, "Unknown answer_type")
	}

	updates := map[string]interface{}{}
	if req.Text != "" {
		updates["text"] = req.Text
	}
	if req.AnswerType != "" {
		updates["answer_type"] = req.AnswerType
	}
	if req.AnswerHint != nil {
		updates["answer_hint"] = *req.AnswerHint
	}
	if req.Options != nil {
		if len(*req.Options) == 0 {
			updates["options"] = nil
		} else {
			encoded, err := json.Marshal(*req.Options)
			if err != nil {
				return response.BadRequest(c, "Invalid options")
			}
			updates["options"] = datatypes.JSON(encoded)
		}
	}
	// Marking a question reviewed clears its review flag; confidence stays
	// as the model reported it.
	if req.Reviewed != nil && *req.Reviewed {
		updates["requires_review"] = false
	}

	if len(updates) > 0 {
		if err := h.db.Model(&question).Updates(updates).Error; err != nil {
			return response.InternalServerError(c, "Failed to update question")
		}
	}

	return response.Success(c, question)
}

// DeleteQuestion handles DELETE /api/v1/questions/:id
func (h *QuestionHandler) DeleteQuestion(c *fiber.Ctx) error {
	id := c.Params("id")

	var question model.ExtractedQuestion
	if err := h.db.First(&question, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Question not found")
		}
		return response.InternalServerError(c, "Failed to fetch question")
	}

	if err := h.db.Delete(&question).Error; err != nil {
		return response.InternalServerError(c, "Failed to delete question")
	}

	return response.NoContent(c)
}
