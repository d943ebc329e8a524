// Package services contains the application services of the terminal client:
// authentication, the daily entry reconciler and group membership.
package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/rosebudthorn/internal/api"
	"github.com/dmitrijs2005/rosebudthorn/internal/client/client"
	"github.com/dmitrijs2005/rosebudthorn/internal/client/models"
	"github.com/dmitrijs2005/rosebudthorn/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/rosebudthorn/internal/common"
	"github.com/dmitrijs2005/rosebudthorn/internal/dbx"
	"github.com/dmitrijs2005/rosebudthorn/internal/logging"
)

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - Register: create a new user on the server.
//   - Login: authenticate and persist the session in the local store.
//   - Restore: load a persisted session and hand its tokens to the client.
//   - Logout: wipe the persisted session.
//   - SaveTokens: persist a refreshed token pair.
//   - Ping: check server liveness.
type AuthService interface {
	Register(ctx context.Context, username, password string) error
	Login(ctx context.Context, username, password string) (*models.Session, error)
	Restore(ctx context.Context) (*models.Session, error)
	Logout(ctx context.Context) error
	SaveTokens(ctx context.Context, accessToken, refreshToken string) error
	Ping(ctx context.Context) error
}

type authService struct {
	client client.Client
	db     *sql.DB
	log    logging.Logger
}

func NewAuthService(c client.Client, db *sql.DB, log logging.Logger) AuthService {
	return &authService{client: c, db: db, log: log.With("module", "auth")}
}

func (a *authService) getMetadataRepo() metadata.Repository {
	return metadata.NewSQLiteRepository(a.db)
}

func (a *authService) Register(ctx context.Context, username, password string) error {
	req := api.RegisterRequest{Username: strings.TrimSpace(username), Password: password}
	if err := req.Validate(); err != nil {
		return err
	}
	if _, err := a.client.Register(ctx, req.Username, req.Password); err != nil {
		return fmt.Errorf("register: %w", err)
	}
	return nil
}

func (a *authService) Login(ctx context.Context, username, password string) (*models.Session, error) {
	req := api.LoginRequest{Username: strings.TrimSpace(username), Password: password}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	res, err := a.client.Login(ctx, req.Username, req.Password)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	s := &models.Session{
		UserID:       res.UserID,
		UserName:     req.Username,
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
	}
	err = dbx.WithTx(ctx, a.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Clear(ctx); err != nil {
			return err
		}
		return repo.SetStrings(ctx, map[string]string{
			common.MetaUserID:       s.UserID,
			common.MetaUserName:     s.UserName,
			common.MetaAccessToken:  s.AccessToken,
			common.MetaRefreshToken: s.RefreshToken,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("session saving error: %w", err)
	}

	a.log.Info(ctx, "Logged in", "user_id", s.UserID)
	return s, nil
}

// Restore returns (nil, nil) when no session is stored.
func (a *authService) Restore(ctx context.Context) (*models.Session, error) {
	repo := a.getMetadataRepo()

	values := make(map[string]string, 4)
	for _, key := range []string{common.MetaUserID, common.MetaUserName, common.MetaAccessToken, common.MetaRefreshToken} {
		v, err := repo.GetString(ctx, key)
		if err != nil {
			return nil, err
		}
		values[key] = v
	}
	if values[common.MetaUserID] == "" || values[common.MetaRefreshToken] == "" {
		return nil, nil
	}

	s := &models.Session{
		UserID:       values[common.MetaUserID],
		UserName:     values[common.MetaUserName],
		AccessToken:  values[common.MetaAccessToken],
		RefreshToken: values[common.MetaRefreshToken],
	}
	a.client.SetTokens(s.AccessToken, s.RefreshToken)
	return s, nil
}

func (a *authService) Logout(ctx context.Context) error {
	a.client.SetTokens("", "")
	if err := a.getMetadataRepo().Clear(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (a *authService) SaveTokens(ctx context.Context, accessToken, refreshToken string) error {
	return dbx.WithTx(ctx, a.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return metadata.NewSQLiteRepository(tx).SetStrings(ctx, map[string]string{
			common.MetaAccessToken:  accessToken,
			common.MetaRefreshToken: refreshToken,
		})
	})
}

func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}
