package client

import (
	"context"

	"github.com/dmitrijs2005/rosebudthorn/internal/api"
)

// Client is the REST API of the journal server.
type Client interface {
	Ping(ctx context.Context) error
	Register(ctx context.Context, username, password string) (api.RegisterResponse, error)
	Login(ctx context.Context, username, password string) (api.LoginResponse, error)
	SetTokens(accessToken, refreshToken string)

	ListEntries(ctx context.Context, userID string) ([]api.Entry, error)
	CreateEntry(ctx context.Context, req api.CreateEntryRequest) (api.Entry, error)
	UpdateEntry(ctx context.Context, entryID string, req api.UpdateEntryRequest) (api.Entry, error)
	ListTags(ctx context.Context, userID string) ([]api.Tag, error)
	Export(ctx context.Context, userID string) (api.ExportResponse, error)

	VerifyCode(ctx context.Context, code string) (bool, error)
	CreateGroup(ctx context.Context, userID string, req api.CreateGroupRequest) (api.Group, error)
	JoinGroup(ctx context.Context, codeOrID, userID string) (api.Group, error)
	ListGroups(ctx context.Context, userID string) ([]api.Group, error)
	GroupEntries(ctx context.Context, groupID string) ([]api.Entry, error)
	TogglePrivacy(ctx context.Context, groupID, entryID, userID string) (api.Entry, error)
	React(ctx context.Context, groupID, entryID, kind string) (api.Entry, error)
}
