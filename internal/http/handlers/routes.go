package handlers

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	applog "warehousebot/internal/log"
)

// ErrorHandler logs the error and answers without internal detail: JSON
// under /api and /chat, the notfound page elsewhere.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "Something went wrong. Please try again."
	if fe, ok := err.(*fiber.Error); ok && fe.Code < 500 {
		code, msg = fe.Code, fe.Message
	} else {
		applog.Error(c, "server.error", err, nil)
	}
	p := c.Path()
	if strings.HasPrefix(p, "/api") || strings.HasPrefix(p, "/chat") {
		return c.Status(code).JSON(fiber.Map{"error": msg})
	}
	if rerr := c.Status(code).Render("notfound", fiber.Map{"Message": msg}); rerr != nil {
		return c.Status(code).SendString(msg)
	}
	return nil
}

// NewApp builds the server with its middleware and every route.
func NewApp(d *Deps, views fiber.Views) *fiber.App {
	app := fiber.New(fiber.Config{
		Views:        views,
		ErrorHandler: ErrorHandler,
		BodyLimit:    10 << 20, // images arrive through /chat/attachments
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(string(c.Request().URI().Path()), "/media/")
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.global.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limit exceeded, retry soon"})
		},
	}))

	// Guarded media to avoid traversal
	mediaDir := d.Media.Dir
	if abs, err := filepath.Abs(mediaDir); err == nil {
		mediaDir = abs
	}
	app.Get("/media/*", func(c *fiber.Ctx) error {
		path := c.Params("*")
		rawLower := strings.ToLower(path)
		if strings.Contains(rawLower, "..") || strings.Contains(rawLower, "%2e") || strings.Contains(rawLower, "\x00") {
			applog.Security(c, "media.traversal.block", map[string]any{"path": path})
			return c.SendStatus(fiber.StatusNotFound)
		}
		clean := filepath.Clean(path)
		if clean == "." || strings.Contains(clean, "..") || filepath.IsAbs(clean) {
			applog.Security(c, "media.traversal.block", map[string]any{"path": path})
			return c.SendStatus(fiber.StatusNotFound)
		}
		return c.SendFile(filepath.Join(mediaDir, clean), true)
	})

	app.Get("/", d.API.Root)
	app.Get("/health", func(c *fiber.Ctx) error {
		if err := d.DB.Ping(); err != nil {
			applog.Error(c, "health.db.fail", err, nil)
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api", cors.New())
	api.Get("/stats", d.API.Stats)
	api.Get("/items", d.API.ListItems)
	api.Get("/items/search", d.API.Search)
	api.Get("/items/:id", d.API.GetItem)
	api.Patch("/items/:id/stock", d.API.PatchStock)
	api.Get("/low-stock", d.API.LowStock)
	api.Get("/categories", d.API.Categories)
	api.Get("/categories/:id/subcategories", d.API.Subcategories)
	api.Get("/brands", d.API.Brands)
	api.Get("/brands/:id/items", d.API.BrandItems)
	api.Get("/measure-types", d.API.MeasureTypes)

	chatGroup := app.Group("/chat", d.Chat.RequireToken())
	chatGroup.Post("/events", d.Chat.Event)
	chatGroup.Post("/attachments", d.Chat.Attachment)

	app.Get("/report/low-stock", d.Report.LowStock)

	app.Use(func(c *fiber.Ctx) error {
		if strings.HasPrefix(c.Path(), "/api") {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
		}
		return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": "Page not found"})
	})
	return app
}
