package services

import (
	"errors"
	"testing"

	"github.com/bazarly/backend/internal/dto"
	"github.com/bazarly/backend/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)

	cases := map[string]dto.RegisterRequest{
		"short username": {Username: "ab", Email: "a@example.com", Password: "secret123"},
		"short password": {Username: "alice", Email: "a@example.com", Password: "12345"},
		"bad email":      {Username: "alice", Email: "not-an-email", Password: "secret123"},
		"empty":          {},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := env.auth.Register(&req)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestRegisterStoresHashAndIssuesTokens(t *testing.T) {
	env := newTestEnv(t)

	resp, err := env.auth.Register(&dto.RegisterRequest{
		Username:  "alice",
		Email:     "alice@example.com",
		Password:  "secret123",
		FirstName: strPtr("Alice"),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "alice", resp.User.Username)

	var stored models.User
	require.NoError(t, env.db.First(&stored, "username = ?", "alice").Error)
	assert.NotEqual(t, "secret123", stored.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("secret123")))
}

func TestRegisterDuplicateFields(t *testing.T) {
	env := newTestEnv(t)
	env.registerUser(t, "alice", "alice@example.com")

	_, err := env.auth.Register(&dto.RegisterRequest{
		Username: "alice", Email: "other@example.com", Password: "secret123",
	})
	assert.ErrorIs(t, err, ErrUsernameTaken)

	_, err = env.auth.Register(&dto.RegisterRequest{
		Username: "alice2", Email: "alice@example.com", Password: "secret123",
	})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegisterDuplicateUnderRace(t *testing.T) {
	env := newTestEnv(t)
	env.registerUser(t, "alice", "alice@example.com")

	// The losing insert of two concurrent registrations passes the existence
	// checks and hits the unique index instead; the violation must still map
	// to the field sentinels, not an internal error.
	err := env.db.Create(&models.User{
		ID: uuid.New(), Username: "alice", Email: "new@example.com", Password: "x",
	}).Error
	require.Error(t, err)
	assert.ErrorIs(t, duplicateFieldError(err), ErrUsernameTaken)

	err = env.db.Create(&models.User{
		ID: uuid.New(), Username: "alice2", Email: "alice@example.com", Password: "x",
	}).Error
	require.Error(t, err)
	assert.ErrorIs(t, duplicateFieldError(err), ErrEmailTaken)

	// Postgres phrases the violation differently than SQLite.
	err = errors.New(`duplicate key value violates unique constraint "idx_users_email"`)
	assert.ErrorIs(t, duplicateFieldError(err), ErrEmailTaken)
	err = errors.New(`duplicate key value violates unique constraint "idx_users_username"`)
	assert.ErrorIs(t, duplicateFieldError(err), ErrUsernameTaken)

	// Unrelated errors pass through untouched.
	assert.Nil(t, duplicateFieldError(errors.New("connection reset by peer")))
}

func TestLoginByUsernameOrEmail(t *testing.T) {
	env := newTestEnv(t)
	env.registerUser(t, "alice", "alice@example.com")

	resp, err := env.auth.Login(&dto.LoginRequest{Username: "alice", Password: "secret123"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)

	resp, err = env.auth.Login(&dto.LoginRequest{Username: "alice@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)

	_, err = env.auth.Login(&dto.LoginRequest{Username: "alice", Password: "wrong-pass"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = env.auth.Login(&dto.LoginRequest{Username: "nobody", Password: "secret123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefreshRotatesToken(t *testing.T) {
	env := newTestEnv(t)
	resp, err := env.auth.Register(&dto.RegisterRequest{
		Username: "alice", Email: "alice@example.com", Password: "secret123",
	})
	require.NoError(t, err)

	refreshed, err := env.auth.Refresh(&dto.RefreshRequest{RefreshToken: resp.RefreshToken})
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)
	assert.NotEqual(t, resp.RefreshToken, refreshed.RefreshToken)

	// The old token is single-use.
	_, err = env.auth.Refresh(&dto.RefreshRequest{RefreshToken: resp.RefreshToken})
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	env := newTestEnv(t)
	resp, err := env.auth.Register(&dto.RegisterRequest{
		Username: "alice", Email: "alice@example.com", Password: "secret123",
	})
	require.NoError(t, err)

	require.NoError(t, env.auth.Logout(&dto.LogoutRequest{RefreshToken: resp.RefreshToken}))

	_, err = env.auth.Refresh(&dto.RefreshRequest{RefreshToken: resp.RefreshToken})
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestUpdateProfile(t *testing.T) {
	env := newTestEnv(t)
	alice := env.registerUser(t, "alice", "alice@example.com")
	env.registerUser(t, "bob", "bob@example.com")

	updated, err := env.auth.UpdateProfile(alice.ID, &dto.UpdateProfileRequest{
		FirstName:   strPtr("Alice"),
		PhoneNumber: strPtr("+77001234567"),
	})
	require.NoError(t, err)
	require.NotNil(t, updated.FirstName)
	assert.Equal(t, "Alice", *updated.FirstName)
	assert.Equal(t, "alice", updated.Username)

	// Colliding with another user's fields fails.
	_, err = env.auth.UpdateProfile(alice.ID, &dto.UpdateProfileRequest{Username: strPtr("bob")})
	assert.ErrorIs(t, err, ErrUsernameTaken)
	_, err = env.auth.UpdateProfile(alice.ID, &dto.UpdateProfileRequest{Email: strPtr("bob@example.com")})
	assert.ErrorIs(t, err, ErrEmailTaken)

	// Re-submitting your own username is a no-op, not a conflict.
	_, err = env.auth.UpdateProfile(alice.ID, &dto.UpdateProfileRequest{Username: strPtr("alice")})
	assert.NoError(t, err)

	// An empty update succeeds without effect.
	same, err := env.auth.UpdateProfile(alice.ID, &dto.UpdateProfileRequest{})
	require.NoError(t, err)
	assert.Equal(t, "alice", same.Username)

	// New password re-hashes and works for login.
	_, err = env.auth.UpdateProfile(alice.ID, &dto.UpdateProfileRequest{Password: strPtr("newsecret")})
	require.NoError(t, err)
	_, err = env.auth.Login(&dto.LoginRequest{Username: "alice", Password: "newsecret"})
	assert.NoError(t, err)
	_, err = env.auth.Login(&dto.LoginRequest{Username: "alice", Password: "secret123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestDeleteAccountCascades(t *testing.T) {
	env := newTestEnv(t)
	alice := env.registerUser(t, "alice", "alice@example.com")
	bob := env.registerUser(t, "bob", "bob@example.com")

	listing := env.createListing(t, alice, "Bike", "Red bike", nil)
	_, err := env.media.Append(listing.ID, alice.ID, uploadHeaders(t, "a.jpg"))
	require.NoError(t, err)
	bobListing := env.createListing(t, bob, "Sofa", "Comfy couch", nil)

	require.NoError(t, env.auth.DeleteAccount(alice.ID))

	_, err = env.auth.GetUser(alice.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)
	_, err = env.listings.GetByID(listing.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	var mediaCount int64
	require.NoError(t, env.db.Model(&models.Media{}).Where("listing_id = ?", listing.ID).Count(&mediaCount).Error)
	assert.Zero(t, mediaCount)

	var tokenCount int64
	require.NoError(t, env.db.Model(&models.RefreshToken{}).Where("user_id = ?", alice.ID).Count(&tokenCount).Error)
	assert.Zero(t, tokenCount)

	// Other users are untouched.
	_, err = env.listings.GetByID(bobListing.ID)
	assert.NoError(t, err)

	assert.ErrorIs(t, env.auth.DeleteAccount(alice.ID), ErrUserNotFound)
}
