// Package httpx renders the JSON error envelope of the REST API and reads
// request-scoped values stored by middleware.
package httpx

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/rosebudthorn/internal/api"
	"github.com/dmitrijs2005/rosebudthorn/internal/common"
	"github.com/gofiber/fiber/v2"
)

// CodeRateLimited is sent by the limiter on the auth routes.
const CodeRateLimited = "rate_limited"

// LocalUserID is the fiber.Ctx local holding the authenticated user id.
const LocalUserID = "userID"

// RequestID returns the id set by the requestid middleware.
func RequestID(c *fiber.Ctx) string {
	if v := c.Locals("requestid"); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func Error(c *fiber.Ctx, status int, code string, message string) error {
	if message == "" {
		message = "Request failed"
	}
	return c.Status(status).JSON(api.ErrorResponse{
		Error:     message,
		Code:      code,
		RequestID: RequestID(c),
	})
}

func BadRequest(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusBadRequest, common.CodeValidation, message)
}

func Unauthorized(c *fiber.Ctx, code string, message string) error {
	return Error(c, fiber.StatusUnauthorized, code, message)
}

func Forbidden(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusForbidden, common.CodeForbidden, message)
}

func NotFound(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusNotFound, common.CodeNotFound, message)
}

func TooManyRequests(c *fiber.Ctx) error {
	return Error(c, fiber.StatusTooManyRequests, CodeRateLimited, "Too many requests")
}

func Internal(c *fiber.Ctx) error {
	return Error(c, fiber.StatusInternalServerError, common.CodeInternal, "Internal server error")
}

// StatusForCode maps a wire error code to its HTTP status.
func StatusForCode(code string) int {
	switch code {
	case common.CodeValidation:
		return fiber.StatusBadRequest
	case common.CodeUnauthorized, common.CodeTokenExpired:
		return fiber.StatusUnauthorized
	case common.CodeForbidden, common.CodeEditWindowClosed:
		return fiber.StatusForbidden
	case common.CodeNotFound:
		return fiber.StatusNotFound
	case common.CodeEntryExists, common.CodeAlreadyMember, common.CodeGroupCodeTaken, common.CodeUsernameTaken:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// FromError writes the envelope for a service error. Errors that do not wrap
// a known sentinel are answered with a generic 500 so internals do not leak.
func FromError(c *fiber.Ctx, err error) error {
	code := common.CodeOf(err)
	if code == common.CodeInternal {
		return Internal(c)
	}
	return Error(c, StatusForCode(code), code, err.Error())
}

// ErrorHandler renders errors returned by handlers and by fiber itself
// (unknown routes, oversized bodies) in the envelope.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code := common.CodeInternal
		switch fe.Code {
		case fiber.StatusBadRequest, fiber.StatusRequestEntityTooLarge, fiber.StatusUnprocessableEntity:
			code = common.CodeValidation
		case fiber.StatusNotFound, fiber.StatusMethodNotAllowed:
			code = common.CodeNotFound
		}
		return Error(c, fe.Code, code, fe.Message)
	}
	return FromError(c, err)
}

// LocalString reads a string local set by middleware.
func LocalString(c *fiber.Ctx, key string) (string, error) {
	v := c.Locals(key)
	if v == nil {
		return "", fmt.Errorf("missing local %s", key)
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", fmt.Errorf("invalid local %s", key)
	}
	return s, nil
}
