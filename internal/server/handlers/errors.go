package handlers

import (
	"github.com/dmitrijs2005/rosebudthorn/internal/common"
	"github.com/dmitrijs2005/rosebudthorn/internal/logging"
	"github.com/dmitrijs2005/rosebudthorn/internal/server/httpx"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// fail logs infrastructure errors and writes the error envelope.
func fail(c *fiber.Ctx, log logging.Logger, err error) error {
	if common.CodeOf(err) == common.CodeInternal && log != nil {
		log.Error(c.UserContext(), "request failed",
			"request_id", httpx.RequestID(c),
			"method", c.Method(),
			"path", c.Path(),
			"error", err,
		)
	}
	return httpx.FromError(c, err)
}

// currentUser returns the authenticated user id.
func currentUser(c *fiber.Ctx) (string, error) {
	id, err := httpx.LocalString(c, httpx.LocalUserID)
	if err != nil {
		return "", common.ErrorUnauthorized
	}
	return id, nil
}

// pathUser checks that the :userId path segment is the authenticated user.
func pathUser(c *fiber.Ctx) (string, error) {
	me, err := currentUser(c)
	if err != nil {
		return "", err
	}
	if c.Params("userId") != me {
		return "", common.ErrorForbidden
	}
	return me, nil
}

// idParam reads a UUID path parameter. Malformed ids cannot name anything and
// yield common.ErrorNotFound.
func idParam(c *fiber.Ctx, name string) (string, error) {
	v := c.Params(name)
	if _, err := uuid.Parse(v); err != nil {
		return "", common.ErrorNotFound
	}
	return v, nil
}
