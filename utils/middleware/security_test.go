package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func newSecuredApp(t *testing.T) *fiber.App {
	t.Helper()

	app := fiber.New()
	SetupSecurity(app, SecurityConfig{
		AllowedOrigins:   "http://localhost:3000",
		CORSSkipPrefixes: []string{"/api/v1/extraction"},
	})

	api := app.Group("/api/v1")
	extraction := api.Group("/extraction", cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "POST, OPTIONS",
	}))
	extraction.Post("/sections", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"success": true})
	})
	api.Get("/exams", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"success": true})
	})
	return app
}

func preflight(t *testing.T, app *fiber.App, path, origin, method string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(http.MethodOptions, path, nil)
	req.Header.Set("Origin", origin)
	req.Header.Set("Access-Control-Request-Method", method)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("preflight request failed: %v", err)
	}
	return resp
}

func TestExtractionPreflightIsPermissive(t *testing.T) {
	app := newSecuredApp(t)

	resp := preflight(t, app, "/api/v1/extraction/sections", "https://examcreator.example", http.MethodPost)
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("preflight Access-Control-Allow-Origin = %q, want %q", got, "*")
	}
}

func TestExtractionPostCarriesWildcardOrigin(t *testing.T) {
	app := newSecuredApp(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/extraction/sections", nil)
	req.Header.Set("Origin", "https://examcreator.example")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, "*")
	}
}

func TestRestrictedCORSStillGuardsOtherRoutes(t *testing.T) {
	app := newSecuredApp(t)

	resp := preflight(t, app, "/api/v1/exams", "https://examcreator.example", http.MethodGet)
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("unlisted origin got Access-Control-Allow-Origin = %q, want empty", got)
	}

	resp = preflight(t, app, "/api/v1/exams", "http://localhost:3000", http.MethodGet)
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("listed origin got Access-Control-Allow-Origin = %q, want %q", got, "http://localhost:3000")
	}
}
