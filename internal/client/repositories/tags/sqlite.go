package tags

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/rosebudthorn/internal/api"
	"github.com/dmitrijs2005/rosebudthorn/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) ReplaceForUser(ctx context.Context, userID string, tags []api.Tag) error {
	if _, err := r.db.ExecContext(ctx, `delete from tags where user_id = ?`, userID); err != nil {
		return fmt.Errorf("failed to clear tags: %w", err)
	}
	for _, t := range tags {
		entries := t.Entries
		if entries == nil {
			entries = []string{}
		}
		b, err := json.Marshal(entries)
		if err != nil {
			return fmt.Errorf("marshal tag entries: %w", err)
		}
		_, err = r.db.ExecContext(ctx, `insert into tags (id, user_id, tag_name, entries) values (?, ?, ?, ?)`,
			t.ID, userID, t.TagName, string(b))
		if err != nil {
			return fmt.Errorf("failed to insert tag %q: %w", t.TagName, err)
		}
	}
	return nil
}

func (r *SQLiteRepository) ListByUser(ctx context.Context, userID string) ([]api.Tag, error) {
	rows, err := r.db.QueryContext(ctx, `select id, user_id, tag_name, entries from tags
		where user_id = ? order by tag_name`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select tags: %w", err)
	}
	defer rows.Close()

	var result []api.Tag
	for rows.Next() {
		var (
			t       api.Tag
			entries string
		)
		if err := rows.Scan(&t.ID, &t.UserID, &t.TagName, &entries); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(entries), &t.Entries); err != nil {
			return nil, fmt.Errorf("tag %q entries: %w", t.TagName, err)
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
