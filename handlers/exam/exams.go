package exam

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/prepstack/mockexam-api/model"
	"github.com/prepstack/mockexam-api/utils/response"
	"github.com/prepstack/mockexam-api/utils/validation"
)

// ExamHandler handles exam-related requests
type ExamHandler struct {
	db        *gorm.DB
	validator *validation.Validator
}

// NewExamHandler creates a new exam handler
func NewExamHandler(db *gorm.DB) *ExamHandler {
	return &ExamHandler{
		db:        db,
		validator: validation.NewValidator(),
	}
}

// CreateExamRequest represents the request body for creating an exam
type CreateExamRequest struct {
	Title           string `json:"title" validate:"required,min=3,max=255"`
	Description     string `json:"description" validate:"omitempty,max=2000"`
	DurationMinutes int    `json:"duration_minutes" validate:"omitempty,min=1,max=600"`
}

// UpdateExamRequest represents the request body for updating an exam
type UpdateExamRequest struct {
	Title           string `json:"title" validate:"omitempty,min=3,max=255"`
	Description     string `json:"description" validate:"omitempty,max=2000"`
	DurationMinutes *int   `json:"duration_minutes" validate:"omitempty,min=1,max=600"`
	Published       *bool  `json:"published"`
}

// ListExams handles GET /api/v1/exams
func (h *ExamHandler) ListExams(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "10"))
	search := c.Query("search", "")

	query := h.db.Model(&model.Exam{})

	if search != "" {
		query = query.Where("title ILIKE ? OR description ILIKE ?",
			"%"+search+"%", "%"+search+"%")
	}

	// Public listing only shows published exams; admins see everything
	if c.Locals("role") != "admin" {
		query = query.Where("published = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return response.InternalServerError(c, "Failed to count exams")
	}

	pagination := response.CalculatePagination(page, limit, total)
	offset := (pagination.CurrentPage - 1) * pagination.PerPage

	var exams []model.Exam
	if err := query.Preload("Sections").
		Order("created_at DESC").
		Limit(pagination.PerPage).
		Offset(offset).
		Find(&exams).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch exams")
	}

	summaries := make([]model.ExamSummary, 0, len(exams))
	for i := range exams {
		summaries = append(summaries, exams[i].ToSummary())
	}

	return response.Paginated(c, summaries, pagination)
}

// GetExam handles GET /api/v1/exams/:id
func (h *ExamHandler) GetExam(c *fiber.Ctx) error {
	id := c.Params("id")

	var exam model.Exam
	if err := h.db.Preload("Sections", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).Preload("Sections.Questions").
		First(&exam, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Exam not found")
		}
		return response.InternalServerError(c, "Failed to fetch exam")
	}

	return response.Success(c, exam)
}

// CreateExam handles POST /api/v1/exams
func (h *ExamHandler) CreateExam(c *fiber.Ctx) error {
	var req CreateExamRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(&req); err != nil {
		return response.ValidationError(c, err)
	}

	createdBy, _ := c.Locals("subject").(string)
	exam := model.Exam{
		Title:           validation.SanitizeString(req.Title),
		Description:     validation.SanitizeString(req.Description),
		DurationMinutes: req.DurationMinutes,
		CreatedBy:       createdBy,
	}

	if err := h.db.Create(&exam).Error; err != nil {
		return response.InternalServerError(c, "Failed to create exam")
	}

	return response.Created(c, exam)
}

// UpdateExam handles PUT /api/v1/exams/:id
func (h *ExamHandler) UpdateExam(c *fiber.Ctx) error {
	id := c.Params("id")

	var exam model.Exam
	if err := h.db.First(&exam, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Exam not found")
		}
		return response.InternalServerError(c, "Failed to fetch exam")
	}

	var req UpdateExamRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(&req); err != nil {
		return response.ValidationError(c, err)
	}

	updates := map[string]interface{}{}
	if req.Title != "" {
		updates["title"] = validation.SanitizeString(req.Title)
	}
	if req.Description != "" {
		updates["description"] = validation.SanitizeString(req.Description)
	}
	if req.DurationMinutes != nil {
		updates["duration_minutes"] = *req.DurationMinutes
	}
	if req.Published != nil {
		updates["published"] = *req.Published
	}

	if len(updates) > 0 {
		if err := h.db.Model(&exam).Updates(updates).Error; err != nil {
			return response.InternalServerError(c, "Failed to update exam")
		}
	}

	return response.Success(c, exam)
}

// DeleteExam handles DELETE /api/v1/exams/:id
func (h *ExamHandler) DeleteExam(c *fiber.Ctx) error {
	id := c.Params("id")

	var exam model.Exam
	if err := h.db.First(&exam, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Exam not found")
		}
		return response.InternalServerError(c, "Failed to fetch exam")
	}

	if err := h.db.Delete(&exam).Error; err != nil {
		return response.InternalServerError(c, "Failed to delete exam")
	}

	return response.NoContent(c)
}
