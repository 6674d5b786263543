package handlers

import (
	"path"

	"useradmin/apperrors"
	"useradmin/services/frontend"

	"github.com/gofiber/fiber/v2"
)

// HandleIndex renders the user management page
func HandleIndex(gen *frontend.Generator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.Render(frontend.IndexTemplate, gen.PageData())
	}
}

// HandleAsset serves the embedded script and stylesheet
func HandleAsset() fiber.Handler {
	return func(c *fiber.Ctx) error {
		name := c.Params("file")
		data, err := frontend.Asset(name)
		if err != nil {
			return apperrors.New(apperrors.ErrCodeNotFound, "Asset not found", fiber.StatusNotFound).
				WithDetails("file", name)
		}

		c.Type(path.Ext(name))
		c.Set(fiber.HeaderCacheControl, "no-cache")
		return c.Send(data)
	}
}
