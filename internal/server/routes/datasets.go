// Package routes attaches the tengen endpoints to a Fiber application.
package routes

import (
	"errors"
	"fmt"
	"os"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"

	"github.com/rayference/tengen/internal/dataset"
	"github.com/rayference/tengen/internal/fetch"
	"github.com/rayference/tengen/internal/registry"
	"github.com/rayference/tengen/internal/resource"
	"github.com/rayference/tengen/internal/server"
	"github.com/rayference/tengen/internal/source"
)

// Output formats accepted by GET /datasets/:id?format=.
const (
	FormatNetCDF  = "netcdf"
	FormatParquet = "parquet"
)

type datasetPayload struct {
	Identifier  string   `json:"identifier"`
	Description string   `json:"description"`
	Sources     []string `json:"sources"`
	InCache     bool     `json:"in_cache"`
}

// RegisterDatasetRoutes exposes the data set listing and retrieval.
func RegisterDatasetRoutes(app *fiber.App, catalog *resource.Catalog, logger logrus.FieldLogger) {
	if app == nil || catalog == nil {
		return
	}

	app.Get("/-/datasets", func(c fiber.Ctx) error {
		items := catalog.List()
		payload := make([]datasetPayload, 0, len(items))
		for _, res := range items {
			cached, err := res.InCache(c.Context())
			if err != nil {
				return err
			}
			desc := res.Descriptor()
			payload = append(payload, datasetPayload{
				Identifier:  desc.Name(),
				Description: desc.Description,
				Sources:     append([]string(nil), desc.Sources...),
				InCache:     cached,
			})
		}
		return c.JSON(fiber.Map{"datasets": payload})
	})

	app.Get("/datasets/:id", func(c fiber.Ctx) error {
		id := c.Params("id")
		res, err := catalog.Lookup(id)
		if err != nil {
			if errors.Is(err, registry.ErrUnknownIdentifier) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "dataset_not_found"})
			}
			return err
		}

		format := c.Query("format", FormatNetCDF)
		if format != FormatNetCDF && format != FormatParquet {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unsupported_format"})
		}

		ds, err := res.Get(c.Context())
		if err != nil {
			status, code := classify(err)
			if logger != nil {
				logger.WithFields(logrus.Fields{
					"action":     "dataset_get",
					"resource":   id,
					"request_id": server.RequestID(c),
				}).WithError(err).Warn("data set unavailable")
			}
			return c.Status(status).JSON(fiber.Map{"error": code, "detail": err.Error()})
		}

		body, contentType, ext, err := render(ds, format)
		if err != nil {
			return err
		}
		c.Set(fiber.HeaderContentType, contentType)
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s%s"`, id, ext))
		return c.Send(body)
	})
}

func classify(err error) (int, string) {
	var (
		fetchErr  *resource.FetchError
		statusErr *fetch.StatusError
		parseErr  *source.ParseError
	)
	switch {
	case errors.As(err, &fetchErr):
		return fiber.StatusBadGateway, "fetch_failed"
	case errors.As(err, &statusErr):
		return fiber.StatusBadGateway, "upstream_status"
	case errors.As(err, &parseErr):
		return fiber.StatusBadGateway, "upstream_payload"
	default:
		return fiber.StatusInternalServerError, "internal"
	}
}

// render serialises ds through a temporary file, as both encoders write paths.
func render(ds *dataset.Dataset, format string) ([]byte, string, string, error) {
	ext, contentType := ".nc", "application/x-netcdf"
	encode := dataset.Encode
	if format == FormatParquet {
		ext, contentType = ".parquet", "application/vnd.apache.parquet"
		encode = dataset.WriteParquet
	}

	f, err := os.CreateTemp("", "tengen-*"+ext)
	if err != nil {
		return nil, "", "", err
	}
	path := f.Name()
	f.Close()
	defer os.Remove(path)

	if err := encode(ds, path); err != nil {
		return nil, "", "", err
	}
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, "", "", err
	}
	return body, contentType, ext, nil
}
