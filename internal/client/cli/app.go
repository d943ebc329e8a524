// Package cli implements the interactive terminal client of Rose Bud Thorn.
package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/rosebudthorn/internal/client/client"
	"github.com/dmitrijs2005/rosebudthorn/internal/client/config"
	"github.com/dmitrijs2005/rosebudthorn/internal/client/models"
	"github.com/dmitrijs2005/rosebudthorn/internal/client/services"
	"github.com/dmitrijs2005/rosebudthorn/internal/filex"
	"github.com/dmitrijs2005/rosebudthorn/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// entryService is the part of services.Reconciler the REPL drives.
type entryService interface {
	View() models.DailyView
	LoadTodaysEntry(ctx context.Context, userID string, onProvisional func(models.DailyView)) (models.DailyView, error)
	SubmitEntry(ctx context.Context, userID string, draft models.Draft) (models.DailyView, error)
	History(ctx context.Context, userID string) ([]models.CachedEntry, error)
}

type App struct {
	config  *config.Config
	auth    services.AuthService
	entries entryService
	groups  services.GroupService
	journal services.JournalService
	log     logging.Logger

	session *models.Session
	reader  *bufio.Reader
	out     io.Writer
	closers []io.Closer

	mu   sync.Mutex
	mode Mode
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logFile := ""
	if c.LogFile != "" {
		p, err := filex.ExpandHome(c.LogFile)
		if err != nil {
			return nil, err
		}
		if err := filex.EnsureParentDir(p); err != nil {
			return nil, err
		}
		logFile = p
	}
	log, logCloser := logging.New(logging.Options{File: logFile, Level: c.LogLevel})

	loc, err := c.Location()
	if err != nil {
		_ = logCloser.Close()
		return nil, err
	}

	db, err := client.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		log.Error(ctx, "Error initializing local store", "path", c.DatabasePath, "error", err)
		_ = logCloser.Close()
		return nil, err
	}

	apiClient := client.NewHTTPClient(c.ServerURL, c.RequestTimeout)
	auth := services.NewAuthService(apiClient, db, log)
	apiClient.OnTokens = func(accessToken, refreshToken string) {
		if err := auth.SaveTokens(context.Background(), accessToken, refreshToken); err != nil {
			log.Error(context.Background(), "Saving refreshed tokens failed", "error", err)
		}
	}

	return &App{
		config:  c,
		auth:    auth,
		entries: services.NewReconciler(apiClient, db, loc, log),
		groups:  services.NewGroupService(apiClient, db, c.CodeRetryDelay, log),
		journal: services.NewJournalService(apiClient, db, log),
		log:     log,
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
		closers: []io.Closer{dbCloser{db}, logCloser},
		mode:    ModeOffline,
	}, nil
}

type dbCloser struct{ db *sql.DB }

func (d dbCloser) Close() error { return d.db.Close() }

func (a *App) Mode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()

	if changed {
		a.log.Info(context.Background(), "Connectivity changed", "mode", string(mode))
		a.println(fmt.Sprintf("Switched to %s mode", mode))
	}
}

// Run restores the saved session, serves the REPL and releases resources.
func (a *App) Run(ctx context.Context) error {
	defer a.Close()

	s, err := a.auth.Restore(ctx)
	if err != nil {
		a.log.Warn(ctx, "Restoring session failed", "error", err)
	}
	a.session = s

	a.Root(ctx)
	return nil
}

func (a *App) Close() {
	for _, c := range a.closers {
		_ = c.Close()
	}
	a.closers = nil
}

func (a *App) isLoggedIn() bool {
	return a.session != nil && a.session.UserID != ""
}

func (a *App) checkOnline(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := a.auth.Ping(ctx); err != nil {
		a.setMode(ModeOffline)
		return
	}
	a.setMode(ModeOnline)
}

// StartOnlineStatusWatcher pings the server every interval until ctx is done.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	a.checkOnline(ctx)
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}
