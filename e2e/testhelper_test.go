package e2e

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/scriptforge/api/internal/auth"
	"github.com/scriptforge/api/internal/handler"
	"github.com/scriptforge/api/internal/middleware"
	"github.com/scriptforge/api/internal/service"
	"github.com/scriptforge/api/internal/store"
)

const testJWTSecret = "test-secret-for-e2e"

// testApp holds all components needed for testing
type testApp struct {
	app *fiber.App
}

// setupApp creates a Fiber app identical to main.go but without the worker
// server and with unconfigured external clients, so exports use mock URLs
// and jobs stay pending until a worker would pick them up.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	// Redis (localhost — must be running)
	redisClient := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   15, // use DB 15 for tests to avoid collision
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		t.Skipf("redis not available: %v", err)
	}
	if err := redisClient.FlushDB(context.Background()).Err(); err != nil {
		t.Fatalf("failed to flush test DB: %v", err)
	}

	// Asynq client
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr: "localhost:6379",
		DB:   15,
	})
	t.Cleanup(func() { asynqClient.Close() })

	validate := validator.New()

	// Store and services — r2Client nil so exports use mock URLs
	dataStore := store.NewRedisStore(redisClient)
	characterService := service.NewCharacterService(dataStore)
	scriptService := service.NewScriptService(dataStore)
	jobService := service.NewJobService(dataStore, dataStore, asynqClient)
	exportService := service.NewExportService(scriptService, nil)

	// Handlers
	characterHandler := handler.NewCharacterHandler(characterService, validate)
	scriptHandler := handler.NewScriptHandler(scriptService, validate)
	jobHandler := handler.NewJobHandler(jobService, validate)
	exportHandler := handler.NewExportHandler(exportService, validate)

	// Auth handler (for /auth/verify)
	authHandler := handler.NewAuthHandler(nil, testJWTSecret)

	// Auth middleware — legacy HMAC only
	authMiddleware := middleware.NewLegacyAuthMiddleware(testJWTSecret)
	rateLimiter := middleware.NewRateLimiter(redisClient)

	// Fiber app
	app := fiber.New()

	// Base routes
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
			"services": fiber.Map{
				"anthropic": false,
				"r2":        false,
				"auth":      true,
			},
		})
	})
	app.Get("/auth/verify", authHandler.Verify)

	// API routes (authenticated)
	api := app.Group("/api", authMiddleware.Authenticate())

	// Use very high rate limits so tests don't get blocked
	characters := api.Group("/characters", rateLimiter.LibraryLimit(10000))
	characters.Post("/", characterHandler.Create)
	characters.Get("/", characterHandler.List)
	characters.Get("/:characterId", characterHandler.Get)
	characters.Patch("/:characterId", characterHandler.Update)
	characters.Delete("/:characterId", characterHandler.Delete)

	scripts := api.Group("/scripts", rateLimiter.LibraryLimit(10000))
	scripts.Post("/", scriptHandler.Create)
	scripts.Get("/", scriptHandler.List)
	scripts.Get("/:scriptId", scriptHandler.Get)
	scripts.Patch("/:scriptId", scriptHandler.Update)
	scripts.Delete("/:scriptId", scriptHandler.Delete)
	scripts.Get("/:scriptId/versions", scriptHandler.ListVersions)
	scripts.Post("/:scriptId/versions", scriptHandler.AddVersion)
	scripts.Get("/:scriptId/versions/:versionNumber", scriptHandler.GetVersion)
	scripts.Post("/:scriptId/versions/:versionNumber/scenes", scriptHandler.CreateScene)

	scenes := api.Group("/scenes", rateLimiter.LibraryLimit(10000))
	scenes.Get("/:sceneId", scriptHandler.GetScene)
	scenes.Patch("/:sceneId", scriptHandler.UpdateScene)

	jobs := api.Group("/jobs")
	jobs.Post("/", rateLimiter.JobsLimit(10000), jobHandler.Create)
	jobs.Get("/", jobHandler.List)
	jobs.Get("/:jobId/status", jobHandler.Status)
	jobs.Get("/:jobId/result", jobHandler.Result)
	jobs.Post("/:jobId/fail", jobHandler.Fail)

	export := api.Group("/export", rateLimiter.ExportLimit(10000))
	export.Post("/draft", exportHandler.Draft)

	return &testApp{app: app}
}

// generateTokenFor creates a legacy HMAC JWT token for the given user.
func generateTokenFor(t *testing.T, userID string) string {
	t.Helper()
	claims := auth.LegacyClaims{
		UserID: userID,
		Email:  userID + "@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer: "scriptforge-api",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testJWTSecret))
	if err != nil {
		t.Fatalf("failed to generate test token: %v", err)
	}
	return signed
}

// generateToken creates a token for the default test user.
func generateToken(t *testing.T) string {
	return generateTokenFor(t, "test-user-123")
}

// doRequest is a helper to perform HTTP requests against the test app.
func doRequest(app *fiber.App, method, path string, body string, headers map[string]string) (*http.Response, error) {
	var bodyReader io.Reader
	if body != "" {
		bodyReader = strings.NewReader(body)
	}

	req, err := http.NewRequest(method, path, bodyReader)
	if err != nil {
		return nil, err
	}

	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return app.Test(req, -1)
}

// doAuthRequest performs an authenticated request as the default test user.
func doAuthRequest(t *testing.T, app *fiber.App, method, path, body string) (*http.Response, error) {
	t.Helper()
	token := generateToken(t)
	return doRequest(app, method, path, body, map[string]string{
		"Authorization": "Bearer " + token,
	})
}

// doAuthRequestAs performs an authenticated request as a specific user.
func doAuthRequestAs(t *testing.T, app *fiber.App, userID, method, path, body string) (*http.Response, error) {
	t.Helper()
	token := generateTokenFor(t, userID)
	return doRequest(app, method, path, body, map[string]string{
		"Authorization": "Bearer " + token,
	})
}

// readBody reads and returns the response body as a string.
func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response body: %v", err)
	}
	return string(b)
}

// parseJSON parses response body into a map.
func parseJSON(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	body := readBody(t, resp)
	var result map[string]interface{}
	if err := json.Unmarshal([]byte(body), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, body)
	}
	return result
}

// assertStatus checks the HTTP status code.
func assertStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Errorf("expected status %d, got %d", expected, resp.StatusCode)
	}
}
