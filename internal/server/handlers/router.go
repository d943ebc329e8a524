// Package handlers implements the REST endpoints of the server on fiber.
package handlers

import (
	"context"
	"io"
	"time"

	"github.com/dmitrijs2005/rosebudthorn/internal/api"
	"github.com/dmitrijs2005/rosebudthorn/internal/logging"
	"github.com/dmitrijs2005/rosebudthorn/internal/server/httpx"
	"github.com/dmitrijs2005/rosebudthorn/internal/server/middleware"
	"github.com/dmitrijs2005/rosebudthorn/internal/server/models"
	"github.com/dmitrijs2005/rosebudthorn/internal/server/services"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

type UserService interface {
	Register(ctx context.Context, username, password string) (*models.User, error)
	Login(ctx context.Context, username, password string) (*services.TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error)
}

type EntryService interface {
	ListByUser(ctx context.Context, userID string) ([]api.Entry, error)
	Create(ctx context.Context, req api.CreateEntryRequest) (api.Entry, error)
	Update(ctx context.Context, userID, entryID string, req api.UpdateEntryRequest) (api.Entry, error)
	TogglePrivacy(ctx context.Context, groupID, entryID, userID string) (api.Entry, error)
	React(ctx context.Context, groupID, entryID, userID, kind string) (api.Entry, error)
	GroupEntries(ctx context.Context, groupID, userID string) ([]api.Entry, error)
	ListTags(ctx context.Context, userID string) ([]api.Tag, error)
}

type GroupService interface {
	VerifyCode(ctx context.Context, requesterID, code string) (bool, error)
	CreateGroup(ctx context.Context, userID string, req api.CreateGroupRequest) (api.Group, error)
	JoinGroup(ctx context.Context, userID, codeOrID string) (api.Group, error)
	ListGroups(ctx context.Context, userID string) ([]api.Group, error)
}

type ExportService interface {
	Export(ctx context.Context, userID string) (api.ExportResponse, error)
}

// Deps is everything the router needs.
type Deps struct {
	Users   UserService
	Entries EntryService
	Groups  GroupService
	Exports ExportService

	SecretKey      []byte
	AllowedOrigins string
	// AccessLog receives one line per request. Nil disables access logging.
	AccessLog io.Writer
	// HealthCheck, if set, is run by GET /health.
	HealthCheck func(ctx context.Context) error
	Log         logging.Logger
}

// NewRouter builds the fiber application with middleware and all routes.
func NewRouter(d Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "Rose Bud Thorn",
		BodyLimit:             1 * 1024 * 1024,
		ErrorHandler:          httpx.ErrorHandler,
		DisableStartupMessage: true,
	})

	app.Use(requestid.New())
	app.Use(recover.New())
	if d.AccessLog != nil {
		app.Use(logger.New(logger.Config{
			Format: "${time} ${locals:requestid} ${status} ${method} ${path} ${latency}\n",
			Output: d.AccessLog,
		}))
	}
	origins := d.AllowedOrigins
	if origins == "" {
		origins = "*"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, PATCH, OPTIONS",
	}))

	log := d.Log
	authHandler := NewAuthHandler(d.Users, log)
	entryHandler := NewEntryHandler(d.Entries, d.Exports, log)
	groupHandler := NewGroupHandler(d.Groups, log)
	healthHandler := NewHealthHandler(d.HealthCheck)

	app.Get("/health", healthHandler.Health)

	authGroup := app.Group("/auth", limiter.New(limiter.Config{
		Max:          20,
		Expiration:   time.Minute,
		LimitReached: httpx.TooManyRequests,
	}))
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/refresh", authHandler.Refresh)

	protected := app.Group("/", middleware.AuthRequired(d.SecretKey))

	protected.Get("/users/:userId/entries", entryHandler.ListByUser)
	protected.Get("/users/:userId/tags", entryHandler.ListTags)
	protected.Get("/users/:userId/export", entryHandler.Export)
	protected.Get("/users/:userId/groups", groupHandler.ListGroups)

	protected.Post("/entries", entryHandler.Create)
	protected.Patch("/entries/:entryId", entryHandler.Update)

	protected.Get("/groups/:groupId/entries", entryHandler.GroupEntries)
	protected.Patch("/groups/:groupId/entries/:entryId/toggle-privacy", entryHandler.TogglePrivacy)
	protected.Post("/groups/:groupId/entries/:entryId/reactions", entryHandler.React)

	protected.Get("/api/groups/verify/:code", groupHandler.VerifyCode)
	protected.Post("/groups/:userId", groupHandler.CreateGroup)
	protected.Put("/groups/:code/:userId", groupHandler.JoinGroup)

	return app
}
