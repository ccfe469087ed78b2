package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bazarly/backend/internal/config"
	"github.com/bazarly/backend/internal/handlers"
	"github.com/bazarly/backend/internal/models"
	"github.com/bazarly/backend/internal/routes"
	"github.com/bazarly/backend/internal/services"
	"github.com/bazarly/backend/internal/storage"
	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.RefreshToken{},
		&models.Listing{},
		&models.Media{},
	))

	store, err := storage.NewDisk(t.TempDir())
	require.NoError(t, err)

	cfg := &config.Config{
		JWTSecret:        "test-secret",
		JWTAccessExpiry:  time.Hour,
		JWTRefreshExpiry: 24 * time.Hour,
	}

	authService := services.NewAuthService(db, cfg, store)
	listingService := services.NewListingService(db, store)
	mediaService := services.NewMediaService(db, store)

	app := fiber.New()
	routes.Setup(app, cfg,
		handlers.NewAuthHandler(authService),
		handlers.NewUserHandler(authService),
		handlers.NewListingHandler(listingService),
		handlers.NewMediaHandler(mediaService),
		handlers.NewHealthHandler(),
	)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]interface{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out))
	}
	return resp, out
}

func registerAndToken(t *testing.T, app *fiber.App, username, email string) string {
	t.Helper()
	resp, out := doJSON(t, app, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": username,
		"email":    email,
		"password": "secret123",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	token, _ := out["access_token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestListingLifecycleOverHTTP(t *testing.T) {
	app := newTestApp(t)
	tokenA := registerAndToken(t, app, "alice", "alice@example.com")
	tokenB := registerAndToken(t, app, "bob", "bob@example.com")

	// Mutations require a bearer token.
	resp, _ := doJSON(t, app, http.MethodPost, "/api/listings", "", map[string]interface{}{
		"title": "Bike", "description": "Red bike",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, created := doJSON(t, app, http.MethodPost, "/api/listings", tokenA, map[string]interface{}{
		"title": "Bike", "description": "Red bike", "price": 100,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	listingID, _ := created["id"].(string)
	require.NotEmpty(t, listingID)

	// Missing required fields fail.
	resp, _ = doJSON(t, app, http.MethodPost, "/api/listings", tokenA, map[string]interface{}{
		"title": "No description",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Filter scenarios.
	listStatus := func(query string) (int, int) {
		req := httptest.NewRequest(http.MethodGet, "/api/listings"+query, nil)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		var items []map[string]interface{}
		if resp.StatusCode == http.StatusOK {
			require.NoError(t, json.Unmarshal(raw, &items))
		}
		return resp.StatusCode, len(items)
	}

	status, n := listStatus("")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1, n)

	status, n = listStatus("?min_price=150")
	assert.Equal(t, http.StatusOK, status)
	assert.Zero(t, n)

	status, n = listStatus("?q=bIKe")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1, n)

	status, _ = listStatus("?min_price=abc")
	assert.Equal(t, http.StatusBadRequest, status)

	// A non-owner cannot update; the listing is unchanged.
	resp, _ = doJSON(t, app, http.MethodPut, "/api/listings/"+listingID, tokenB, map[string]interface{}{
		"title": "Stolen",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, got := doJSON(t, app, http.MethodGet, "/api/listings/"+listingID, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Bike", got["title"])

	// The owner can.
	resp, got = doJSON(t, app, http.MethodPut, "/api/listings/"+listingID, tokenA, map[string]interface{}{
		"price": 80,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Bike", got["title"])
	assert.Equal(t, 80.0, got["price"])

	resp, _ = doJSON(t, app, http.MethodDelete, "/api/listings/"+listingID, tokenB, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp, _ = doJSON(t, app, http.MethodDelete, "/api/listings/"+listingID, tokenA, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = doJSON(t, app, http.MethodGet, "/api/listings/"+listingID, "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListUsersAndMediaOverHTTP(t *testing.T) {
	app := newTestApp(t)
	token := registerAndToken(t, app, "alice", "alice@example.com")
	registerAndToken(t, app, "bob", "bob@example.com")

	_, created := doJSON(t, app, http.MethodPost, "/api/listings", token, map[string]interface{}{
		"title": "Bike", "description": "Red bike",
	})
	listingID, _ := created["id"].(string)
	require.NotEmpty(t, listingID)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("files", "a.jpg")
	require.NoError(t, err)
	_, err = fw.Write([]byte("test file contents"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/listings/%s/media", listingID), &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	listItems := func(path string) []map[string]interface{} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var items []map[string]interface{}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&items))
		return items
	}

	users := listItems("/api/users")
	require.Len(t, users, 2)
	assert.NotContains(t, users[0], "password")

	media := listItems("/api/media")
	require.Len(t, media, 1)
	assert.Equal(t, listingID, media[0]["listing_id"])
}

func TestMediaUploadOverHTTP(t *testing.T) {
	app := newTestApp(t)
	token := registerAndToken(t, app, "alice", "alice@example.com")

	_, created := doJSON(t, app, http.MethodPost, "/api/listings", token, map[string]interface{}{
		"title": "Bike", "description": "Red bike",
	})
	listingID, _ := created["id"].(string)
	require.NotEmpty(t, listingID)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, name := range []string{"a.jpg", "b.png", "c.exe"} {
		fw, err := w.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = fw.Write([]byte("test file contents"))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/listings/%s/media", listingID), &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var result struct {
		Media []struct {
			ID    string `json:"id"`
			Order int    `json:"order"`
			URL   string `json:"url"`
		} `json:"media"`
		Skipped []struct {
			FileName string `json:"filename"`
		} `json:"skipped"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	require.Len(t, result.Media, 2)
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, "c.exe", result.Skipped[0].FileName)
	assert.Equal(t, 0, result.Media[0].Order)
	assert.Equal(t, 1, result.Media[1].Order)

	// Reorder through the API.
	resp, out := doJSON(t, app, http.MethodPut, fmt.Sprintf("/api/listings/%s/media/order", listingID), token,
		map[string]interface{}{"media_ids": []string{result.Media[1].ID, result.Media[0].ID}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	media, _ := out["media"].([]interface{})
	require.Len(t, media, 2)
	first, _ := media[0].(map[string]interface{})
	assert.Equal(t, result.Media[1].ID, first["id"])

	// Non-permutation is rejected.
	resp, _ = doJSON(t, app, http.MethodPut, fmt.Sprintf("/api/listings/%s/media/order", listingID), token,
		map[string]interface{}{"media_ids": []string{result.Media[0].ID}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
