package services

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/rosebudthorn/internal/common"
	"github.com/dmitrijs2005/rosebudthorn/internal/dbx"
	"github.com/dmitrijs2005/rosebudthorn/internal/logging"
	"github.com/dmitrijs2005/rosebudthorn/internal/server/models"
	"github.com/dmitrijs2005/rosebudthorn/internal/server/repositories/entries"
	"github.com/dmitrijs2005/rosebudthorn/internal/server/repositories/groups"
	"github.com/dmitrijs2005/rosebudthorn/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/rosebudthorn/internal/server/repositories/tags"
	"github.com/dmitrijs2005/rosebudthorn/internal/server/repositories/users"
)

// --- helpers ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func discardLogger() logging.Logger {
	l, _ := logging.New(logging.Options{})
	return l
}

// fakeRepoManager hands out the same in-memory repositories for the pool and
// for transactions.
type fakeRepoManager struct {
	users   *fakeUsersRepo
	refresh *fakeRefreshRepo
	entries *fakeEntriesRepo
	tags    *fakeTagsRepo
	groups  *fakeGroupsRepo
}

func newFakeRepoManager() *fakeRepoManager {
	g := &fakeGroupsRepo{rows: map[string]*models.Group{}, members: map[string][]string{}}
	return &fakeRepoManager{
		users:   &fakeUsersRepo{byName: map[string]*models.User{}},
		refresh: &fakeRefreshRepo{tokens: map[string]*models.RefreshToken{}},
		entries: &fakeEntriesRepo{rows: map[string]*models.Entry{}, reactions: map[string][]models.Reaction{}, groups: g},
		tags:    &fakeTagsRepo{ids: map[string]string{}, names: map[string]string{}, links: map[string][]string{}},
		groups:  g,
	}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository                 { return m.users }
func (m *fakeRepoManager) RefreshTokens(dbx.DBTX) refreshtokens.Repository { return m.refresh }
func (m *fakeRepoManager) Entries(dbx.DBTX) entries.Repository             { return m.entries }
func (m *fakeRepoManager) Tags(dbx.DBTX) tags.Repository                   { return m.tags }
func (m *fakeRepoManager) Groups(dbx.DBTX) groups.Repository               { return m.groups }

// --- users ---

type fakeUsersRepo struct {
	byName    map[string]*models.User
	createErr error
	getErr    error
	seq       int
}

func (f *fakeUsersRepo) Create(_ context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if _, ok := f.byName[u.UserName]; ok {
		return nil, common.ErrUsernameTaken
	}
	f.seq++
	u.ID = fmt.Sprintf("user-%d", f.seq)
	u.CreatedAt = time.Now()
	f.byName[u.UserName] = u
	return u, nil
}

func (f *fakeUsersRepo) GetByUsername(_ context.Context, username string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byName[username]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

// --- refresh tokens ---

type fakeRefreshRepo struct {
	tokens    map[string]*models.RefreshToken
	createErr error
	deleteErr error
}

func (f *fakeRefreshRepo) Create(_ context.Context, userID, token string, expiresAt time.Time) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.tokens[token] = &models.RefreshToken{UserID: userID, Token: token, Expires: expiresAt}
	return nil
}

func (f *fakeRefreshRepo) Find(_ context.Context, token string) (*models.RefreshToken, error) {
	t, ok := f.tokens[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return t, nil
}

func (f *fakeRefreshRepo) Delete(_ context.Context, token string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.tokens, token)
	return nil
}

// --- entries ---

type fakeEntriesRepo struct {
	rows      map[string]*models.Entry
	order     []string
	reactions map[string][]models.Reaction
	groups    *fakeGroupsRepo
	createErr error
	listCalls int
	seq       int
}

func (f *fakeEntriesRepo) Create(_ context.Context, e *models.Entry) (*models.Entry, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	for _, r := range f.rows {
		if r.UserID == e.UserID && r.Date == e.Date {
			return nil, common.ErrEntryExists
		}
	}
	f.seq++
	e.ID = fmt.Sprintf("entry-%d", f.seq)
	e.CreatedAt = time.Now()
	e.UpdatedAt = e.CreatedAt
	cp := *e
	f.rows[e.ID] = &cp
	f.order = append(f.order, e.ID)
	return e, nil
}

func (f *fakeEntriesRepo) GetByID(_ context.Context, id string) (*models.Entry, error) {
	e, ok := f.rows[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *e
	return &cp, nil
}

func (f *fakeEntriesRepo) ListByUser(_ context.Context, userID string) ([]*models.Entry, error) {
	f.listCalls++
	out := make([]*models.Entry, 0)
	for _, id := range f.order {
		if e := f.rows[id]; e.UserID == userID {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeEntriesRepo) Update(_ context.Context, e *models.Entry) error {
	cur, ok := f.rows[e.ID]
	if !ok {
		return common.ErrorNotFound
	}
	cur.RoseText, cur.BudText, cur.ThornText, cur.IsPublic = e.RoseText, e.BudText, e.ThornText, e.IsPublic
	cur.UpdatedAt = time.Now()
	e.UpdatedAt = cur.UpdatedAt
	return nil
}

func (f *fakeEntriesRepo) TogglePublic(_ context.Context, id string) (bool, error) {
	e, ok := f.rows[id]
	if !ok {
		return false, common.ErrorNotFound
	}
	e.IsPublic = !e.IsPublic
	return e.IsPublic, nil
}

func (f *fakeEntriesRepo) ListPublicByGroup(_ context.Context, groupID string) ([]*models.Entry, error) {
	members := map[string]bool{}
	for _, m := range f.groups.members[groupID] {
		members[m] = true
	}
	out := make([]*models.Entry, 0)
	for _, id := range f.order {
		e := f.rows[id]
		if e.IsPublic && members[e.UserID] {
			cp := *e
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (f *fakeEntriesRepo) AddReaction(_ context.Context, r *models.Reaction) error {
	r.CreatedAt = time.Now()
	f.reactions[r.EntryID] = append(f.reactions[r.EntryID], *r)
	return nil
}

func (f *fakeEntriesRepo) Reactions(_ context.Context, entryID string) ([]models.Reaction, error) {
	return append([]models.Reaction{}, f.reactions[entryID]...), nil
}

// --- tags ---

type fakeTagsRepo struct {
	ids       map[string]string   // userID/name -> tag id
	names     map[string]string   // tag id -> name
	links     map[string][]string // entry id -> tag ids in order
	upsertErr error
	seq       int
}

func (f *fakeTagsRepo) Upsert(_ context.Context, userID, name string) (string, error) {
	if f.upsertErr != nil {
		return "", f.upsertErr
	}
	key := userID + "/" + name
	if id, ok := f.ids[key]; ok {
		return id, nil
	}
	f.seq++
	id := fmt.Sprintf("tag-%d", f.seq)
	f.ids[key] = id
	f.names[id] = name
	return id, nil
}

func (f *fakeTagsRepo) Link(_ context.Context, entryID, tagID string, _ int) error {
	f.links[entryID] = append(f.links[entryID], tagID)
	return nil
}

func (f *fakeTagsRepo) UnlinkEntry(_ context.Context, entryID string) error {
	delete(f.links, entryID)
	return nil
}

func (f *fakeTagsRepo) NamesForEntry(_ context.Context, entryID string) ([]string, error) {
	out := make([]string, 0)
	for _, id := range f.links[entryID] {
		out = append(out, f.names[id])
	}
	return out, nil
}

func (f *fakeTagsRepo) ListByUser(_ context.Context, userID string) ([]*models.Tag, error) {
	out := make([]*models.Tag, 0)
	for key, id := range f.ids {
		if !strings.HasPrefix(key, userID+"/") {
			continue
		}
		t := &models.Tag{ID: id, UserID: userID, TagName: f.names[id], Entries: []string{}}
		for entryID, tagIDs := range f.links {
			for _, tid := range tagIDs {
				if tid == id {
					t.Entries = append(t.Entries, entryID)
				}
			}
		}
		sort.Strings(t.Entries)
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TagName < out[j].TagName })
	return out, nil
}

// --- groups ---

type fakeGroupsRepo struct {
	rows    map[string]*models.Group
	members map[string][]string
	seq     int
}

func (f *fakeGroupsRepo) Create(_ context.Context, g *models.Group) (*models.Group, error) {
	for _, r := range f.rows {
		if r.GroupCode == g.GroupCode {
			return nil, common.ErrGroupCodeTaken
		}
	}
	f.seq++
	g.ID = fmt.Sprintf("00000000-0000-0000-0000-%012d", f.seq)
	g.CreatedAt = time.Now()
	cp := *g
	f.rows[g.ID] = &cp
	return g, nil
}

func (f *fakeGroupsRepo) GetByID(_ context.Context, id string) (*models.Group, error) {
	g, ok := f.rows[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *g
	return &cp, nil
}

func (f *fakeGroupsRepo) GetByCode(_ context.Context, code string) (*models.Group, error) {
	for _, g := range f.rows {
		if g.GroupCode == code {
			cp := *g
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeGroupsRepo) CodeExists(ctx context.Context, code string) (bool, error) {
	_, err := f.GetByCode(ctx, code)
	return err == nil, nil
}

func (f *fakeGroupsRepo) AddMember(_ context.Context, groupID, userID string) error {
	for _, m := range f.members[groupID] {
		if m == userID {
			return common.ErrAlreadyMember
		}
	}
	f.members[groupID] = append(f.members[groupID], userID)
	return nil
}

func (f *fakeGroupsRepo) IsMember(_ context.Context, groupID, userID string) (bool, error) {
	for _, m := range f.members[groupID] {
		if m == userID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeGroupsRepo) Members(_ context.Context, groupID string) ([]string, error) {
	return append([]string{}, f.members[groupID]...), nil
}

func (f *fakeGroupsRepo) ListForUser(ctx context.Context, userID string) ([]*models.Group, error) {
	out := make([]*models.Group, 0)
	for id, g := range f.rows {
		if ok, _ := f.IsMember(ctx, id, userID); ok {
			cp := *g
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
