package routes

import (
	"time"

	"github.com/bazarly/backend/internal/config"
	"github.com/bazarly/backend/internal/handlers"
	"github.com/bazarly/backend/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	listingHandler *handlers.ListingHandler,
	mediaHandler *handlers.MediaHandler,
	healthHandler *handlers.HealthHandler,
) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", healthHandler.Check)

	// Auth — public, with a stricter limit against brute force
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.Refresh)

	api.Post("/auth/logout", middleware.JWTProtected(cfg), authHandler.Logout)
	api.Delete("/auth/account", middleware.JWTProtected(cfg), authHandler.DeleteAccount)

	// Users
	api.Get("/users", userHandler.List)
	api.Get("/users/me", middleware.JWTProtected(cfg), userHandler.Me)
	api.Put("/users/me", middleware.JWTProtected(cfg), userHandler.UpdateMe)
	api.Get("/users/:id", userHandler.GetByID)

	// Listings — reads public, mutations owner-gated behind JWT
	api.Get("/listings", listingHandler.List)
	api.Get("/listings/:id", listingHandler.GetByID)
	api.Post("/listings", middleware.JWTProtected(cfg), listingHandler.Create)
	api.Put("/listings/:id", middleware.JWTProtected(cfg), listingHandler.Update)
	api.Delete("/listings/:id", middleware.JWTProtected(cfg), listingHandler.Delete)

	// Media
	api.Post("/listings/:id/media", middleware.JWTProtected(cfg), mediaHandler.Upload)
	api.Put("/listings/:id/media/order", middleware.JWTProtected(cfg), mediaHandler.Reorder)
	api.Get("/media", mediaHandler.List)
	api.Get("/media/:id", mediaHandler.GetByID)
	api.Delete("/media/:id", middleware.JWTProtected(cfg), mediaHandler.Delete)
}
