package handlers

import (
	"github.com/dmitrijs2005/rosebudthorn/internal/api"
	"github.com/dmitrijs2005/rosebudthorn/internal/common"
	"github.com/dmitrijs2005/rosebudthorn/internal/logging"
	"github.com/dmitrijs2005/rosebudthorn/internal/server/httpx"
	"github.com/gofiber/fiber/v2"
)

type EntryHandler struct {
	entries EntryService
	exports ExportService
	log     logging.Logger
}

func NewEntryHandler(entries EntryService, exports ExportService, log logging.Logger) *EntryHandler {
	return &EntryHandler{entries: entries, exports: exports, log: log}
}

// ListByUser serves GET /users/:userId/entries.
func (h *EntryHandler) ListByUser(c *fiber.Ctx) error {
	userID, err := pathUser(c)
	if err != nil {
		return httpx.FromError(c, err)
	}
	list, err := h.entries.ListByUser(c.UserContext(), userID)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(list)
}

// Create serves POST /entries. An omitted user_id defaults to the caller.
func (h *EntryHandler) Create(c *fiber.Ctx) error {
	me, err := currentUser(c)
	if err != nil {
		return httpx.FromError(c, err)
	}

	var req api.CreateEntryRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.BadRequest(c, "Invalid request body")
	}
	req.Normalize()
	if req.UserID == "" {
		req.UserID = me
	}
	if req.UserID != me {
		return httpx.Forbidden(c, "user_id does not match the access token")
	}
	if err := req.Validate(); err != nil {
		return httpx.FromError(c, err)
	}

	e, err := h.entries.Create(c.UserContext(), req)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(e)
}

// Update serves PATCH /entries/:entryId.
func (h *EntryHandler) Update(c *fiber.Ctx) error {
	me, err := currentUser(c)
	if err != nil {
		return httpx.FromError(c, err)
	}
	entryID, err := idParam(c, "entryId")
	if err != nil {
		return httpx.FromError(c, err)
	}

	var req api.UpdateEntryRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.BadRequest(c, "Invalid request body")
	}

	e, err := h.entries.Update(c.UserContext(), me, entryID, req)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(e)
}

// TogglePrivacy serves PATCH /groups/:groupId/entries/:entryId/toggle-privacy.
func (h *EntryHandler) TogglePrivacy(c *fiber.Ctx) error {
	me, err := currentUser(c)
	if err != nil {
		return httpx.FromError(c, err)
	}
	groupID, err := idParam(c, "groupId")
	if err != nil {
		return httpx.FromError(c, err)
	}
	entryID, err := idParam(c, "entryId")
	if err != nil {
		return httpx.FromError(c, err)
	}

	var req api.TogglePrivacyRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.BadRequest(c, "Invalid request body")
	}
	if err := req.Validate(); err != nil {
		return httpx.FromError(c, err)
	}
	if req.UserID != me {
		return httpx.FromError(c, common.ErrorForbidden)
	}

	e, err := h.entries.TogglePrivacy(c.UserContext(), groupID, entryID, me)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(e)
}

// React serves POST /groups/:groupId/entries/:entryId/reactions.
func (h *EntryHandler) React(c *fiber.Ctx) error {
	me, err := currentUser(c)
	if err != nil {
		return httpx.FromError(c, err)
	}
	groupID, err := idParam(c, "groupId")
	if err != nil {
		return httpx.FromError(c, err)
	}
	entryID, err := idParam(c, "entryId")
	if err != nil {
		return httpx.FromError(c, err)
	}

	var req api.ReactionRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.BadRequest(c, "Invalid request body")
	}
	if err := req.Validate(); err != nil {
		return httpx.FromError(c, err)
	}

	e, err := h.entries.React(c.UserContext(), groupID, entryID, me, req.ReactionKind)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(e)
}

// GroupEntries serves GET /groups/:groupId/entries.
func (h *EntryHandler) GroupEntries(c *fiber.Ctx) error {
	me, err := currentUser(c)
	if err != nil {
		return httpx.FromError(c, err)
	}
	groupID, err := idParam(c, "groupId")
	if err != nil {
		return httpx.FromError(c, err)
	}

	list, err := h.entries.GroupEntries(c.UserContext(), groupID, me)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(list)
}

// ListTags serves GET /users/:userId/tags.
func (h *EntryHandler) ListTags(c *fiber.Ctx) error {
	userID, err := pathUser(c)
	if err != nil {
		return httpx.FromError(c, err)
	}
	tags, err := h.entries.ListTags(c.UserContext(), userID)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(tags)
}

// Export serves GET /users/:userId/export.
func (h *EntryHandler) Export(c *fiber.Ctx) error {
	userID, err := pathUser(c)
	if err != nil {
		return httpx.FromError(c, err)
	}
	res, err := h.exports.Export(c.UserContext(), userID)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(res)
}
