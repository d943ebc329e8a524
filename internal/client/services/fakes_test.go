package services

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/rosebudthorn/internal/api"
	"github.com/dmitrijs2005/rosebudthorn/internal/client/client"
	"github.com/dmitrijs2005/rosebudthorn/internal/common"
	"github.com/dmitrijs2005/rosebudthorn/internal/datex"
	"github.com/dmitrijs2005/rosebudthorn/internal/logging"
	"github.com/stretchr/testify/require"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := client.InitDatabase(context.Background(), filepath.Join(t.TempDir(), "local.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func discardLogger() logging.Logger {
	l, _ := logging.New(logging.Options{})
	return l
}

// fakeServer implements client.Client in memory. Unset hooks fall back to a
// small model of the real server.
type fakeServer struct {
	client.Client

	mu      sync.Mutex
	now     func() time.Time
	loc     *time.Location
	entries []api.Entry
	groups  map[string]*api.Group
	tags    []api.Tag
	nextID  int
	calls   map[string]int

	listErr   error
	createErr error
	updateErr error
	tagsErr   error
	onList    func(call int)
	verify    func(code string) (bool, error)
	export    api.ExportResponse

	accessToken, refreshToken string
}

func newFakeServer(now func() time.Time) *fakeServer {
	return &fakeServer{now: now, loc: time.UTC, groups: map[string]*api.Group{}, calls: map[string]int{}}
}

func (f *fakeServer) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeServer) called(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
	return f.calls[name]
}

func (f *fakeServer) SetTokens(a, r string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accessToken, f.refreshToken = a, r
}

func (f *fakeServer) Ping(context.Context) error { return nil }

func (f *fakeServer) Login(_ context.Context, username, password string) (api.LoginResponse, error) {
	f.called("Login")
	if password != "secret1" {
		return api.LoginResponse{}, common.ErrorUnauthorized
	}
	return api.LoginResponse{UserID: "u-" + username, AccessToken: "a1", RefreshToken: "r1"}, nil
}

func (f *fakeServer) Register(_ context.Context, username, _ string) (api.RegisterResponse, error) {
	f.called("Register")
	return api.RegisterResponse{ID: "u-" + username, Username: username}, nil
}

func (f *fakeServer) ListEntries(_ context.Context, userID string) ([]api.Entry, error) {
	call := f.called("ListEntries")
	f.mu.Lock()
	err := f.listErr
	var out []api.Entry
	for _, e := range f.entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	f.mu.Unlock()

	// onList runs after the answer is fixed, like a response still in flight
	if f.onList != nil {
		f.onList(call)
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (f *fakeServer) CreateEntry(_ context.Context, req api.CreateEntryRequest) (api.Entry, error) {
	f.called("CreateEntry")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return api.Entry{}, f.createErr
	}
	f.nextID++
	now := f.now()
	e := api.Entry{
		ID:        fmt.Sprintf("srv-%d", f.nextID),
		UserID:    req.UserID,
		Date:      datex.Today(f.loc, now),
		RoseText:  req.RoseText,
		BudText:   req.BudText,
		ThornText: req.ThornText,
		IsPublic:  *req.IsPublic,
		Tags:      req.Tags,
		Reactions: []api.Reaction{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.entries = append(f.entries, e)
	return e, nil
}

func (f *fakeServer) UpdateEntry(_ context.Context, entryID string, req api.UpdateEntryRequest) (api.Entry, error) {
	f.called("UpdateEntry")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return api.Entry{}, f.updateErr
	}
	for i := range f.entries {
		e := &f.entries[i]
		if e.ID != entryID {
			continue
		}
		if e.Date != datex.Today(f.loc, f.now()) {
			return api.Entry{}, common.ErrEditWindowClosed
		}
		e.RoseText, e.BudText, e.ThornText = *req.RoseText, *req.BudText, *req.ThornText
		e.IsPublic = *req.IsPublic
		e.Tags = *req.Tags
		e.UpdatedAt = f.now()
		return *e, nil
	}
	return api.Entry{}, common.ErrorNotFound
}

func (f *fakeServer) ListTags(_ context.Context, userID string) ([]api.Tag, error) {
	f.called("ListTags")
	if f.tagsErr != nil {
		return nil, f.tagsErr
	}
	return f.tags, nil
}

func (f *fakeServer) Export(_ context.Context, userID string) (api.ExportResponse, error) {
	f.called("Export")
	return f.export, nil
}

func (f *fakeServer) VerifyCode(_ context.Context, code string) (bool, error) {
	f.called("VerifyCode")
	if f.verify != nil {
		return f.verify(code)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	_, taken := f.groups[code]
	return !taken, nil
}

func (f *fakeServer) CreateGroup(_ context.Context, userID string, req api.CreateGroupRequest) (api.Group, error) {
	f.called("CreateGroup")
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, taken := f.groups[req.GroupCode]; taken {
		return api.Group{}, common.ErrGroupCodeTaken
	}
	f.nextID++
	g := &api.Group{
		ID:        fmt.Sprintf("00000000-0000-0000-0000-%012d", f.nextID),
		Name:      req.Name,
		GroupCode: req.GroupCode,
		CreatedBy: userID,
		Members:   []string{userID},
		CreatedAt: f.now(),
	}
	f.groups[g.GroupCode] = g
	return *g, nil
}

func (f *fakeServer) JoinGroup(_ context.Context, codeOrID, userID string) (api.Group, error) {
	f.called("JoinGroup")
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.groups[codeOrID]
	if !ok {
		return api.Group{}, common.ErrorNotFound
	}
	if g.HasMember(userID) {
		return api.Group{}, common.ErrAlreadyMember
	}
	g.Members = append(g.Members, userID)
	return *g, nil
}

func (f *fakeServer) ListGroups(_ context.Context, userID string) ([]api.Group, error) {
	f.called("ListGroups")
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []api.Group
	for _, g := range f.groups {
		if g.HasMember(userID) {
			out = append(out, *g)
		}
	}
	return out, nil
}

func (f *fakeServer) GroupEntries(_ context.Context, groupID string) ([]api.Entry, error) {
	f.called("GroupEntries")
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, g := range f.groups {
		if g.ID != groupID {
			continue
		}
		var out []api.Entry
		for _, e := range f.entries {
			if e.IsPublic && g.HasMember(e.UserID) {
				out = append(out, e)
			}
		}
		return out, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeServer) React(_ context.Context, groupID, entryID, kind string) (api.Entry, error) {
	f.called("React")
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.entries {
		if f.entries[i].ID == entryID {
			f.entries[i].Reactions = append(f.entries[i].Reactions, api.Reaction{GroupID: groupID, ReactionKind: kind})
			return f.entries[i], nil
		}
	}
	return api.Entry{}, common.ErrorNotFound
}
