package entries

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/rosebudthorn/internal/api"
	"github.com/dmitrijs2005/rosebudthorn/internal/client/models"
	"github.com/dmitrijs2005/rosebudthorn/internal/datex"
	"github.com/dmitrijs2005/rosebudthorn/internal/dbx"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const selectColumns = `select id, user_id, entry_date, rose_text, bud_text, thorn_text, is_public,
	tags, reactions, created_at, updated_at, pending, cached_at from entries`

func (r *SQLiteRepository) Upsert(ctx context.Context, e *models.CachedEntry) error {
	tags := e.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return fmt.Errorf("marshal tags: %w", err)
	}
	reactions := e.Reactions
	if reactions == nil {
		reactions = []api.Reaction{}
	}
	reactionsJSON, err := json.Marshal(reactions)
	if err != nil {
		return fmt.Errorf("marshal reactions: %w", err)
	}

	query := `insert into entries (id, user_id, entry_date, rose_text, bud_text, thorn_text, is_public,
			tags, reactions, created_at, updated_at, pending, cached_at)
		values (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		on conflict(id) do update set
			entry_date = excluded.entry_date,
			rose_text = excluded.rose_text,
			bud_text = excluded.bud_text,
			thorn_text = excluded.thorn_text,
			is_public = excluded.is_public,
			tags = excluded.tags,
			reactions = excluded.reactions,
			updated_at = excluded.updated_at,
			pending = excluded.pending,
			cached_at = excluded.cached_at`

	_, err = r.db.ExecContext(ctx, query,
		e.ID, e.UserID, e.Date.String(), e.RoseText, e.BudText, e.ThornText, e.IsPublic,
		string(tagsJSON), string(reactionsJSON),
		formatTime(e.CreatedAt), formatTime(e.UpdatedAt), e.Pending, formatTime(e.CachedAt))
	if err != nil {
		return fmt.Errorf("failed to upsert entry: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetByUserDate(ctx context.Context, userID string, date datex.Date) ([]models.CachedEntry, error) {
	return r.query(ctx, selectColumns+` where user_id = ? and entry_date = ? order by created_at, id`, userID, date.String())
}

func (r *SQLiteRepository) ListByUser(ctx context.Context, userID string) ([]models.CachedEntry, error) {
	return r.query(ctx, selectColumns+` where user_id = ? order by entry_date desc, created_at`, userID)
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `delete from entries where id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) query(ctx context.Context, query string, args ...any) ([]models.CachedEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select entries: %w", err)
	}
	defer rows.Close()

	var result []models.CachedEntry
	for rows.Next() {
		var (
			e                              models.CachedEntry
			tags, reactions                string
			createdAt, updatedAt, cachedAt string
		)
		if err := rows.Scan(&e.ID, &e.UserID, &e.Date, &e.RoseText, &e.BudText, &e.ThornText, &e.IsPublic,
			&tags, &reactions, &createdAt, &updatedAt, &e.Pending, &cachedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(tags), &e.Tags); err != nil {
			return nil, fmt.Errorf("entry %s tags: %w", e.ID, err)
		}
		if err := json.Unmarshal([]byte(reactions), &e.Reactions); err != nil {
			return nil, fmt.Errorf("entry %s reactions: %w", e.ID, err)
		}
		if e.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		if e.UpdatedAt, err = parseTime(updatedAt); err != nil {
			return nil, err
		}
		if e.CachedAt, err = parseTime(cachedAt); err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", s, err)
	}
	return t, nil
}
