package routes

import (
	"time"

	"github.com/KatariyaVyomesh/Rewear-Sustainable-Fashion-Exchange/internal/config"
	"github.com/KatariyaVyomesh/Rewear-Sustainable-Fashion-Exchange/internal/handlers"
	"github.com/KatariyaVyomesh/Rewear-Sustainable-Fashion-Exchange/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"gorm.io/gorm"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	db *gorm.DB,
	authHandler *handlers.AuthHandler,
	healthHandler *handlers.HealthHandler,
	itemHandler *handlers.ItemHandler,
	swapHandler *handlers.SwapHandler,
	moderationHandler *handlers.ModerationHandler,
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

	// Auth is public but carries a stricter limit: 10 req/min per IP
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
	api.Get("/me", middleware.JWTProtected(cfg), authHandler.Me)

	// Catalog reads are public but honor a token when present, so
	// owners see their unapproved listings.
	api.Get("/items", middleware.OptionalJWT(cfg), itemHandler.List)
	api.Get("/items/featured", itemHandler.Featured)
	api.Get("/items/:id", middleware.OptionalJWT(cfg), itemHandler.Get)
	api.Post("/items", middleware.JWTProtected(cfg), itemHandler.Create)
	api.Put("/items/:id", middleware.JWTProtected(cfg), itemHandler.Update)
	api.Delete("/items/:id", middleware.JWTProtected(cfg), itemHandler.Delete)

	// Swaps
	swaps := api.Group("/swaps", middleware.JWTProtected(cfg))
	swaps.Post("", swapHandler.Create)
	swaps.Get("/mine", swapHandler.ListMine)
	swaps.Get("/incoming", swapHandler.ListIncoming)
	swaps.Patch("/:id/approve", swapHandler.Approve)
	swaps.Patch("/:id/disapprove", swapHandler.Disapprove)

	// Moderation panel (staff only)
	moderation := api.Group("/moderation", middleware.JWTProtected(cfg), middleware.StaffRequired(db, cfg))
	moderation.Get("/items", moderationHandler.Queue)
	moderation.Patch("/items/:id/approve", moderationHandler.Approve)
	moderation.Patch("/items/:id/reject", moderationHandler.Reject)
	moderation.Delete("/items/:id", moderationHandler.Delete)
}
