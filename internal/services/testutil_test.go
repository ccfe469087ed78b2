package services

import (
	"bytes"
	"mime/multipart"
	"testing"
	"time"

	"github.com/bazarly/backend/internal/config"
	"github.com/bazarly/backend/internal/dto"
	"github.com/bazarly/backend/internal/models"
	"github.com/bazarly/backend/internal/storage"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testEnv struct {
	db       *gorm.DB
	store    *storage.Disk
	root     string
	auth     *AuthService
	listings *ListingService
	media    *MediaService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// A single connection keeps every query on the same in-memory database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.RefreshToken{},
		&models.Listing{},
		&models.Media{},
	))

	root := t.TempDir()
	store, err := storage.NewDisk(root)
	require.NoError(t, err)

	cfg := &config.Config{
		JWTSecret:        "test-secret",
		JWTAccessExpiry:  time.Hour,
		JWTRefreshExpiry: 24 * time.Hour,
	}

	return &testEnv{
		db:       db,
		store:    store,
		root:     root,
		auth:     NewAuthService(db, cfg, store),
		listings: NewListingService(db, store),
		media:    NewMediaService(db, store),
	}
}

func (e *testEnv) registerUser(t *testing.T, username, email string) models.User {
	t.Helper()
	resp, err := e.auth.Register(&dto.RegisterRequest{
		Username: username,
		Email:    email,
		Password: "secret123",
	})
	require.NoError(t, err)
	return resp.User
}

func (e *testEnv) createListing(t *testing.T, owner models.User, title, description string, price *float64) *models.Listing {
	t.Helper()
	listing, err := e.listings.Create(owner.ID, &dto.CreateListingRequest{
		Title:       title,
		Description: description,
		Price:       price,
	})
	require.NoError(t, err)
	return listing
}

// uploadHeaders builds multipart file headers the way fiber hands them to the
// media service.
func uploadHeaders(t *testing.T, names ...string) []*multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, name := range names {
		fw, err := w.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = fw.Write([]byte("test file contents"))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(32 << 20)
	require.NoError(t, err)
	return form.File["files"]
}

func floatPtr(f float64) *float64 { return &f }

func strPtr(s string) *string { return &s }
