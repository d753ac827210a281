package section

import (
	"fmt"
	"io"
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/prepstack/mockexam-api/model"
	"github.com/prepstack/mockexam-api/services/storage"
	"github.com/prepstack/mockexam-api/utils/pdfvalidation"
	"github.com/prepstack/mockexam-api/utils/response"
	"github.com/prepstack/mockexam-api/utils/validation"
)

// SectionHandler handles exam section requests, including PDF upload
type SectionHandler struct {
	db        *gorm.DB
	storage   *storage.SpacesClient
	validator *validation.Validator
}

// NewSectionHandler creates a new section handler. Storage may be nil when
// object storage is not configured; PDF upload then returns 503.
func NewSectionHandler(db *gorm.DB, spaces *storage.SpacesClient) *SectionHandler {
	return &SectionHandler{
		db:        db,
		storage:   spaces,
		validator: validation.NewValidator(),
	}
}

// CreateSectionRequest represents the request body for creating a section
type CreateSectionRequest struct {
	ExamID   uint   `json:"exam_id" validate:"required,min=1"`
	Title    string `json:"title" validate:"required,min=1,max=255"`
	Position int    `json:"position" validate:"omitempty,min=0"`
}

// UpdateSectionRequest represents the request body for updating a section
type UpdateSectionRequest struct {
	Title    string `json:"title" validate:"omitempty,min=1,max=255"`
	Position *int   `json:"position" validate:"omitempty,min=0"`
}

// CreateSection handles POST /api/v1/sections
func (h *SectionHandler) CreateSection(c *fiber.Ctx) error {
	var req CreateSectionRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(&req); err != nil {
		return response.ValidationError(c, err)
	}

	var exam model.Exam
	if err := h.db.First(&exam, req.ExamID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Exam not found")
		}
		return response.InternalServerError(c, "Failed to fetch exam")
	}

	section := model.ExamSection{
		ExamID:           req.ExamID,
		Title:            validation.SanitizeString(req.Title),
		Position:         req.Position,
		ExtractionStatus: model.ExtractionPending,
	}

	if err := h.db.Create(&section).Error; err != nil {
		return response.InternalServerError(c, "Failed to create section")
	}

	return response.Created(c, section)
}

// GetSection handles GET /api/v1/sections/:id
func (h *SectionHandler) GetSection(c *fiber.Ctx) error {
	id := c.Params("id")

	var section model.ExamSection
	if err := h.db.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("question_number ASC")
	}).First(&section, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Section not found")
		}
		return response.InternalServerError(c, "Failed to fetch section")
	}

	return response.Success(c, section)
}

// GetSectionStatus handles GET /api/v1/sections/:id/status — the polling
// endpoint UIs hit while an extraction runs
func (h *SectionHandler) GetSectionStatus(c *fiber.Ctx) error {
	id := c.Params("id")

	var section model.ExamSection
	if err := h.db.First(&section, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Section not found")
		}
		return response.InternalServerError(c, "Failed to fetch section")
	}

	return response.Success(c, section.ToStatusResponse())
}

// UpdateSection handles PUT /api/v1/sections/:id
func (h *SectionHandler) UpdateSection(c *fiber.Ctx) error {
	id := c.Params("id")

	var section model.ExamSection
	if err := h.db.First(&section, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Section not found")
		}
		return response.InternalServerError(c, "Failed to fetch section")
	}

	var req UpdateSectionRequest
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
	if req.Position != nil {
		updates["position"] = *req.Position
	}

	if len(updates) > 0 {
		if err := h.db.Model(&section).Updates(updates).Error; err != nil {
			return response.InternalServerError(c, "Failed to update section")
		}
	}

	return response.Success(c, section)
}

// DeleteSection handles DELETE /api/v1/sections/:id
func (h *SectionHandler) DeleteSection(c *fiber.Ctx) error {
	id := c.Params("id")

	var section model.ExamSection
	if err := h.db.First(&section, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Section not found")
		}
		return response.InternalServerError(c, "Failed to fetch section")
	}

	if err := h.db.Delete(&section).Error; err != nil {
		return response.InternalServerError(c, "Failed to delete section")
	}

	return response.NoContent(c)
}

// UploadPDF handles POST /api/v1/sections/:id/pdf. A new upload resets the
// section's extraction state back to pending; the previous extraction output
// stays until the next run replaces it.
func (h *SectionHandler) UploadPDF(c *fiber.Ctx) error {
	if h.storage == nil {
		return response.Error(c, fiber.StatusServiceUnavailable,
			"Object storage is not configured", "STORAGE_UNAVAILABLE")
	}

	id := c.Params("id")

	var section model.ExamSection
	if err := h.db.First(&section, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Section not found")
		}
		return response.InternalServerError(c, "Failed to fetch section")
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return response.BadRequest(c, "Missing 'file' in multipart form")
	}

	result, err := pdfvalidation.ValidatePDFFile(fileHeader, pdfvalidation.ExamPaperLimits)
	if err != nil || !result.Valid {
		msg := "Invalid PDF file"
		if result != nil && result.Error != "" {
			msg = result.Error
		}
		return response.BadRequest(c, msg)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return response.InternalServerError(c, "Failed to read uploaded file")
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return response.InternalServerError(c, "Failed to read uploaded file")
	}

	key := storage.GenerateKey(fmt.Sprintf("exams/%d/sections/%d", section.ExamID, section.ID), fileHeader.Filename)
	publicURL, err := h.storage.UploadBytes(c.Context(), key, content, "application/pdf")
	if err != nil {
		log.Printf("[UPLOAD] Failed to store PDF for section %d: %v", section.ID, err)
		return response.InternalServerError(c, "Failed to store PDF")
	}

	updates := map[string]interface{}{
		"pdf_url":                    publicURL,
		"storage_key":                key,
		"page_count":                 result.PageCount,
		"extraction_status":          model.ExtractionPending,
		"extraction_error":           "",
		"extraction_started_at":      nil,
		"extraction_completed_at":    nil,
		"total_questions":            0,
		"questions_requiring_review": 0,
	}
	if err := h.db.Model(&section).Updates(updates).Error; err != nil {
		return response.InternalServerError(c, "Failed to update section")
	}

	log.Printf("[UPLOAD] Section %d: stored %s (%d pages, %d bytes)",
		section.ID, key, result.PageCount, len(content))
	return response.Success(c, fiber.Map{
		"pdf_url":     publicURL,
		"storage_key": key,
		"page_count":  result.PageCount,
	})
}
