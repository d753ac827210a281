package router

import (
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"gorm.io/gorm"

	"github.com/prepstack/mockexam-api/config"
	"github.com/prepstack/mockexam-api/database"
	"github.com/prepstack/mockexam-api/handlers"
	attempt_handlers "github.com/prepstack/mockexam-api/handlers/attempt"
	exam_handlers "github.com/prepstack/mockexam-api/handlers/exam"
	extraction_handlers "github.com/prepstack/mockexam-api/handlers/extraction"
	question_handlers "github.com/prepstack/mockexam-api/handlers/question"
	section_handlers "github.com/prepstack/mockexam-api/handlers/section"
	"github.com/prepstack/mockexam-api/services"
	"github.com/prepstack/mockexam-api/services/genai"
	"github.com/prepstack/mockexam-api/services/storage"
	"github.com/prepstack/mockexam-api/utils/auth"
	"github.com/prepstack/mockexam-api/utils/cache"
	"github.com/prepstack/mockexam-api/utils/middleware"
)

// SetupRoutes wires handlers, services, and middleware onto the app
func SetupRoutes(app *fiber.App, store database.Storage, redisCache *cache.RedisCache) {
	env, err := config.Get()
	if err != nil {
		log.Fatal(err)
	}

	if env.JWT_SECRET == "" {
		log.Fatal("JWT_SECRET environment variable is not set")
	}
	jwtIssuer := env.JWT_ISSUER
	if jwtIssuer == "" {
		jwtIssuer = "mockexam-api"
	}

	// Initialize JWT manager for service tokens
	jwtManager := auth.NewJWTManager(auth.JWTConfig{
		Secret: env.JWT_SECRET,
		Expiry: 24 * time.Hour,
		Issuer: jwtIssuer,
	})

	// Get DB instance (type assert from interface)
	db, ok := store.GetDB().(*gorm.DB)
	if !ok {
		log.Fatal("Failed to get GORM DB instance")
	}

	authMiddleware := middleware.NewAuthMiddleware(jwtManager)

	// Object storage (optional: PDF upload is disabled without it)
	var spaces *storage.SpacesClient
	if env.SPACES_ACCESS_KEY != "" {
		spaces, err = storage.NewSpacesClient(storage.SpacesConfig{
			AccessKey: env.SPACES_ACCESS_KEY,
			SecretKey: env.SPACES_SECRET_KEY,
			Bucket:    env.SPACES_BUCKET,
			Region:    env.SPACES_REGION,
			Endpoint:  env.SPACES_ENDPOINT,
			PublicURL: env.SPACES_PUBLIC_URL,
		})
		if err != nil {
			log.Printf("Warning: Failed to initialize object storage: %v. PDF upload will be disabled.", err)
		}
	}

	// Generation API client and the ingestion pipeline
	genaiClient := genai.NewClient(env.GENAI_API_KEY,
		genai.WithBaseURL(env.GENAI_BASE_URL),
		genai.WithModel(env.GENAI_MODEL),
	)
	requester := services.NewGenAIRequester(genaiClient)
	jobTracker := services.NewJobTracker(redisCache)

	var downloader services.ObjectDownloader
	publicBaseURL := ""
	if spaces != nil {
		downloader = spaces
		publicBaseURL = spaces.PublicBaseURL()
	}
	extractionService := services.NewExtractionService(db, requester, downloader, jobTracker, publicBaseURL)
	attemptService := services.NewAttemptService(db)

	// Initialize handlers
	examHandler := exam_handlers.NewExamHandler(db)
	sectionHandler := section_handlers.NewSectionHandler(db, spaces)
	extractionHandler := extraction_handlers.NewExtractionHandler(extractionService)
	questionHandler := question_handlers.NewQuestionHandler(db)
	attemptHandler := attempt_handlers.NewAttemptHandler(attemptService)

	// Apply security middleware
	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:3000,http://localhost:3001"
	}

	middleware.SetupSecurity(app, middleware.SecurityConfig{
		AllowedOrigins:    allowedOrigins,
		CORSSkipPrefixes:  []string{"/api/v1/extraction"}, // has its own permissive CORS
		RateLimitRequests: 100,                            // 100 requests
		RateLimitWindow:   1 * time.Minute,                // per minute
	})

	// Health check endpoint (public)
	app.Get("/ping", func(c *fiber.Ctx) error {
		return handlers.HandleCheckHealth(c, store)
	})

	// API v1 group
	api := app.Group("/api/v1")

	// Exam routes
	exams := api.Group("/exams")
	exams.Get("/", examHandler.ListExams)                                       // Public: List published exams
	exams.Get("/:id", examHandler.GetExam)                                      // Public: Get exam with sections and questions
	exams.Post("/", authMiddleware.Required(), examHandler.CreateExam)          // Protected: Create exam
	exams.Put("/:id", authMiddleware.Required(), examHandler.UpdateExam)        // Protected: Update exam
	exams.Delete("/:id", authMiddleware.RequireAdmin(), examHandler.DeleteExam) // Admin only: Delete exam

	// Attempt routes (nested under exams)
	exams.Post("/:id/attempts", attemptHandler.SubmitAttempt)                                    // Public: Submit a graded attempt
	exams.Get("/:id/attempts", authMiddleware.Required(), attemptHandler.ListAttempts)           // Protected: List attempts
	exams.Get("/:id/attempts/:attempt_id", authMiddleware.Required(), attemptHandler.GetAttempt) // Protected: Fetch one attempt

	// Section routes
	sections := api.Group("/sections")
	sections.Get("/:id", sectionHandler.GetSection)                                      // Public: Get section with questions
	sections.Get("/:id/status", sectionHandler.GetSectionStatus)                         // Public: Poll extraction status
	sections.Get("/:id/questions", questionHandler.ListSectionQuestions)                 // Public: List extracted questions
	sections.Post("/", authMiddleware.Required(), sectionHandler.CreateSection)          // Protected: Create section
	sections.Put("/:id", authMiddleware.Required(), sectionHandler.UpdateSection)        // Protected: Update section
	sections.Delete("/:id", authMiddleware.RequireAdmin(), sectionHandler.DeleteSection) // Admin only: Delete section
	sections.Post("/:id/pdf", authMiddleware.Required(), sectionHandler.UploadPDF)       // Protected: Upload source PDF

	// Question review routes (protected)
	questions := api.Group("/questions", authMiddleware.Required())
	questions.Put("/:id", questionHandler.UpdateQuestion)    // Protected: Edit extracted question
	questions.Delete("/:id", questionHandler.DeleteQuestion) // Protected: Delete extracted question

	// Extraction invocation. This route keeps its own permissive CORS so the
	// upload UI can call it cross-origin regardless of ALLOWED_ORIGINS.
	extraction := api.Group("/extraction", cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "POST, OPTIONS",
	}))
	extraction.Post("/sections", extractionHandler.Extract)
}
