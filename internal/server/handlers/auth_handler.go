package handlers

import (
	"github.com/dmitrijs2005/rosebudthorn/internal/api"
	"github.com/dmitrijs2005/rosebudthorn/internal/logging"
	"github.com/dmitrijs2005/rosebudthorn/internal/server/httpx"
	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	users UserService
	log   logging.Logger
}

func NewAuthHandler(users UserService, log logging.Logger) *AuthHandler {
	return &AuthHandler{users: users, log: log}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req api.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.BadRequest(c, "Invalid request body")
	}
	if err := req.Validate(); err != nil {
		return httpx.FromError(c, err)
	}

	u, err := h.users.Register(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(api.RegisterResponse{ID: u.ID, Username: u.UserName})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req api.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.BadRequest(c, "Invalid request body")
	}
	if err := req.Validate(); err != nil {
		return httpx.FromError(c, err)
	}

	pair, err := h.users.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(api.LoginResponse{UserID: pair.UserID, AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken})
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req api.RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.BadRequest(c, "Invalid request body")
	}
	if err := req.Validate(); err != nil {
		return httpx.FromError(c, err)
	}

	pair, err := h.users.RefreshToken(c.UserContext(), req.RefreshToken)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(api.LoginResponse{UserID: pair.UserID, AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken})
}
