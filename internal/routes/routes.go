package routes

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/listkeeper/internal/config"
	"github.com/ahmetcoskunkizilkaya/listkeeper/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/listkeeper/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	authHandler *handlers.AuthHandler,
	listHandler *handlers.ListHandler,
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

	// Auth-specific rate limit: 10 req/min per IP
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
	auth.Post("/logout", middleware.JWTProtected(cfg), authHandler.Logout)

	lists := api.Group("/lists", middleware.JWTProtected(cfg))
	lists.Get("/", listHandler.All)
	lists.Post("/", listHandler.Create)
	// Fixed paths go before /:id so they are not captured as ids.
	lists.Get("/today", listHandler.Today)
	lists.Get("/current", listHandler.Current)
	lists.Put("/current", listHandler.SetCurrent)
	lists.Get("/lookup", listHandler.Lookup)
	lists.Put("/sync", listHandler.Sync)
	lists.Get("/:id", listHandler.Get)
	lists.Patch("/:id", listHandler.Update)
	lists.Delete("/:id", listHandler.Delete)
	lists.Post("/:id/items", listHandler.AddItem)
	lists.Patch("/:id/items/:itemId", listHandler.UpdateItem)
	lists.Delete("/:id/items/:itemId", listHandler.DeleteItem)
}
