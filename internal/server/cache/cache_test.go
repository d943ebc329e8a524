package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/rosebudthorn/internal/api"
	"github.com/dmitrijs2005/rosebudthorn/internal/datex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	mu   sync.Mutex
	data map[string][]byte
	ttls map[string]time.Duration
	err  error
}

func newMemStore() *memStore {
	return &memStore{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *memStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.data[key], nil
}

func (m *memStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.data[key] = value
	m.ttls[key] = ttl
	return nil
}

func (m *memStore) SetNX(_ context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	if _, ok := m.data[key]; ok {
		return false, nil
	}
	m.data[key] = value
	m.ttls[key] = ttl
	return true, nil
}

func (m *memStore) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return m.err
}

func TestEntryCache_RoundTrip(t *testing.T) {
	store := newMemStore()
	ec := NewEntryCache(store)
	ctx := context.Background()

	in := []api.Entry{{
		ID: "e1", UserID: "u1", Date: datex.MustParse("2024-05-01"),
		RoseText: "a", BudText: "b", ThornText: "c", IsPublic: true,
		Tags:      []string{"work"},
		Reactions: []api.Reaction{{GroupID: "g1", UserReactingID: "u2", ReactionKind: "love", CreatedAt: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)}},
		CreatedAt: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
	}}

	require.NoError(t, ec.Set(ctx, "u1", in))
	assert.Equal(t, EntryListTTL, store.ttls["entries:user:u1"])

	got, ok := ec.Get(ctx, "u1")
	require.True(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, in[0].Date, got[0].Date)
	assert.Equal(t, in[0].Tags, got[0].Tags)
	assert.True(t, in[0].CreatedAt.Equal(got[0].CreatedAt))
	assert.Equal(t, "love", got[0].Reactions[0].ReactionKind)

	_, ok = ec.Get(ctx, "u2")
	assert.False(t, ok)
}

func TestEntryCache_Invalidate(t *testing.T) {
	store := newMemStore()
	ec := NewEntryCache(store)
	ctx := context.Background()

	require.NoError(t, ec.Set(ctx, "u1", []api.Entry{}))
	require.NoError(t, ec.Set(ctx, "u2", []api.Entry{}))
	require.NoError(t, ec.Invalidate(ctx, "u1", "u2"))

	_, ok := ec.Get(ctx, "u1")
	assert.False(t, ok)
	_, ok = ec.Get(ctx, "u2")
	assert.False(t, ok)
}

func TestEntryCache_CorruptPayloadIsMiss(t *testing.T) {
	store := newMemStore()
	store.data["entries:user:u1"] = []byte{0xc1}
	_, ok := NewEntryCache(store).Get(context.Background(), "u1")
	assert.False(t, ok)
}

func TestEntryCache_StoreErrorIsMiss(t *testing.T) {
	store := newMemStore()
	store.err = errors.New("redis down")
	ec := NewEntryCache(store)

	_, ok := ec.Get(context.Background(), "u1")
	assert.False(t, ok)
	assert.Error(t, ec.Set(context.Background(), "u1", nil))
}

func TestNilCachesAreSafe(t *testing.T) {
	ctx := context.Background()

	var ec *EntryCache = NewEntryCache(nil)
	assert.Nil(t, ec)
	_, ok := ec.Get(ctx, "u1")
	assert.False(t, ok)
	assert.NoError(t, ec.Set(ctx, "u1", nil))
	assert.NoError(t, ec.Invalidate(ctx, "u1"))

	var cr *CodeReservations = NewCodeReservations(nil)
	ok, err := cr.Reserve(ctx, "ABC123", "u1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, cr.Release(ctx, "ABC123"))
}

func TestCodeReservations(t *testing.T) {
	store := newMemStore()
	cr := NewCodeReservations(store)
	ctx := context.Background()

	ok, err := cr.Reserve(ctx, "ABC123", "u1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, CodeReservationTTL, store.ttls["groupcode:ABC123"])

	ok, err = cr.Reserve(ctx, "ABC123", "u1")
	require.NoError(t, err)
	assert.True(t, ok, "holder may re-verify its own code")

	ok, err = cr.Reserve(ctx, "ABC123", "u2")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cr.Release(ctx, "ABC123"))
	ok, err = cr.Reserve(ctx, "ABC123", "u2")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCodeReservations_StoreError(t *testing.T) {
	store := newMemStore()
	store.err = errors.New("redis down")

	_, err := NewCodeReservations(store).Reserve(context.Background(), "ABC123", "u1")
	assert.Error(t, err)
}

func TestRedisCache_PingUnreachable(t *testing.T) {
	rc := NewRedisCache("127.0.0.1:1", "", 0)
	defer rc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	assert.Error(t, rc.Ping(ctx))
}

var _ Store = (*RedisCache)(nil)
