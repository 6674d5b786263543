package handlers

import (
	"strings"

	"useradmin/apperrors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/proxy"
)

// HandleAPIProxy forwards /api/* to the user API so the page can call it
// from its own origin.
func HandleAPIProxy(apiBaseURL string) fiber.Handler {
	upstream := strings.TrimRight(apiBaseURL, "/")

	return func(c *fiber.Ctx) error {
		target := upstream + "/" + c.Params("*")
		if q := c.Request().URI().QueryString(); len(q) > 0 {
			target += "?" + string(q)
		}

		if err := proxy.Do(c, target); err != nil {
			return apperrors.NewNetworkError(c.Method(), c.Path(), err)
		}

		c.Response().Header.Del(fiber.HeaderServer)
		return nil
	}
}
