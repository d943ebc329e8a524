package handlers

import (
	"github.com/dmitrijs2005/rosebudthorn/internal/api"
	"github.com/dmitrijs2005/rosebudthorn/internal/logging"
	"github.com/dmitrijs2005/rosebudthorn/internal/server/httpx"
	"github.com/gofiber/fiber/v2"
)

type GroupHandler struct {
	groups GroupService
	log    logging.Logger
}

func NewGroupHandler(groups GroupService, log logging.Logger) *GroupHandler {
	return &GroupHandler{groups: groups, log: log}
}

// VerifyCode serves GET /api/groups/verify/:code.
func (h *GroupHandler) VerifyCode(c *fiber.Ctx) error {
	me, err := currentUser(c)
	if err != nil {
		return httpx.FromError(c, err)
	}
	ok, err := h.groups.VerifyCode(c.UserContext(), me, c.Params("code"))
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(api.VerifyCodeResponse{IsAvailable: ok})
}

// CreateGroup serves POST /groups/:userId.
func (h *GroupHandler) CreateGroup(c *fiber.Ctx) error {
	userID, err := pathUser(c)
	if err != nil {
		return httpx.FromError(c, err)
	}

	var req api.CreateGroupRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.BadRequest(c, "Invalid request body")
	}

	g, err := h.groups.CreateGroup(c.UserContext(), userID, req)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(g)
}

// JoinGroup serves PUT /groups/:code/:userId. The code segment may also be a
// group id.
func (h *GroupHandler) JoinGroup(c *fiber.Ctx) error {
	userID, err := pathUser(c)
	if err != nil {
		return httpx.FromError(c, err)
	}

	g, err := h.groups.JoinGroup(c.UserContext(), userID, c.Params("code"))
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(g)
}

// ListGroups serves GET /users/:userId/groups.
func (h *GroupHandler) ListGroups(c *fiber.Ctx) error {
	userID, err := pathUser(c)
	if err != nil {
		return httpx.FromError(c, err)
	}
	groups, err := h.groups.ListGroups(c.UserContext(), userID)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(groups)
}
