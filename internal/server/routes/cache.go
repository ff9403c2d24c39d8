package routes

import (
	"github.com/gofiber/fiber/v3"

	"github.com/rayference/tengen/internal/cache"
)

// RegisterCacheRoutes exposes the names of cached data sets.
func RegisterCacheRoutes(app *fiber.App, dir *cache.Dir) {
	if app == nil || dir == nil {
		return
	}
	app.Get("/-/cache", func(c fiber.Ctx) error {
		names, err := dir.List()
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{
			"root":  dir.Root(),
			"files": names,
		})
	})
}
