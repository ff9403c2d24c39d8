package routes

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"

	"github.com/rayference/tengen/internal/metrics"
)

// RegisterMetricsRoute serves Prometheus metrics on /-/metrics.
func RegisterMetricsRoute(app *fiber.App, rec *metrics.Recorder) {
	if app == nil || rec == nil {
		return
	}
	app.Get("/-/metrics", adaptor.HTTPHandler(rec.Handler()))
}
