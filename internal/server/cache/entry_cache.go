package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/rosebudthorn/internal/api"
	"github.com/vmihailenco/msgpack/v5"
)

// EntryListTTL bounds how stale a cached entry list can get if an
// invalidation is lost.
const EntryListTTL = 2 * time.Minute

// EntryCache caches the GET /users/{id}/entries response per user.
type EntryCache struct {
	store Store
	ttl   time.Duration
}

func NewEntryCache(store Store) *EntryCache {
	if store == nil {
		return nil
	}
	return &EntryCache{store: store, ttl: EntryListTTL}
}

func userEntriesKey(userID string) string {
	return fmt.Sprintf("entries:user:%s", userID)
}

// Get returns the cached list and whether it was found. Decoding failures
// count as a miss.
func (ec *EntryCache) Get(ctx context.Context, userID string) ([]api.Entry, bool) {
	if ec == nil || ec.store == nil {
		return nil, false
	}
	data, err := ec.store.Get(ctx, userEntriesKey(userID))
	if err != nil || data == nil {
		return nil, false
	}
	var entries []api.Entry
	if err := msgpack.Unmarshal(data, &entries); err != nil {
		return nil, false
	}
	return entries, true
}

func (ec *EntryCache) Set(ctx context.Context, userID string, entries []api.Entry) error {
	if ec == nil || ec.store == nil {
		return nil
	}
	data, err := msgpack.Marshal(entries)
	if err != nil {
		return err
	}
	return ec.store.Set(ctx, userEntriesKey(userID), data, ec.ttl)
}

// Invalidate drops the cached lists of the given users.
func (ec *EntryCache) Invalidate(ctx context.Context, userIDs ...string) error {
	if ec == nil || ec.store == nil || len(userIDs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		keys = append(keys, userEntriesKey(id))
	}
	return ec.store.Delete(ctx, keys...)
}
