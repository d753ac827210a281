package services

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/prepstack/mockexam-api/database"
	"github.com/prepstack/mockexam-api/model"
)

// newTestDB opens an in-memory sqlite database with the full schema
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}

	// :memory: gives every connection its own database; pin the pool to one
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to access sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}
	return db
}

// seedSection creates an exam with one section and returns the section id
func seedSection(t *testing.T, db *gorm.DB) uint {
	t.Helper()

	exam := model.Exam{Title: "Algorithms Midterm"}
	if err := db.Create(&exam).Error; err != nil {
		t.Fatalf("failed to seed exam: %v", err)
	}
	section := model.ExamSection{
		ExamID:           exam.ID,
		Title:            "Section A",
		ExtractionStatus: model.ExtractionPending,
		PDFURL:           "https://cdn.example.com/papers/section-a.pdf",
		StorageKey:       "papers/section-a.pdf",
	}
	if err := db.Create(&section).Error; err != nil {
		t.Fatalf("failed to seed section: %v", err)
	}
	return section.ID
}
