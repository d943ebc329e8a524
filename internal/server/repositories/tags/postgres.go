package tags

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/rosebudthorn/internal/dbx"
	"github.com/dmitrijs2005/rosebudthorn/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Upsert(ctx context.Context, userID, name string) (string, error) {
	// The no-op update makes RETURNING yield the existing row's id.
	query := `
		INSERT INTO tags (user_id, tag_name)
		VALUES ($1, $2)
		ON CONFLICT (user_id, tag_name) DO UPDATE SET tag_name = EXCLUDED.tag_name
		RETURNING id
	`
	var id string
	if err := r.db.QueryRowContext(ctx, query, userID, name).Scan(&id); err != nil {
		return "", fmt.Errorf("db error: %w", err)
	}
	return id, nil
}

func (r *PostgresRepository) Link(ctx context.Context, entryID, tagID string, position int) error {
	query := `
		INSERT INTO entry_tags (entry_id, tag_id, position)
		VALUES ($1, $2, $3)
		ON CONFLICT (entry_id, tag_id) DO UPDATE SET position = EXCLUDED.position
	`
	if _, err := r.db.ExecContext(ctx, query, entryID, tagID, position); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) UnlinkEntry(ctx context.Context, entryID string) error {
	query := `DELETE FROM entry_tags WHERE entry_id = $1`
	if _, err := r.db.ExecContext(ctx, query, entryID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) NamesForEntry(ctx context.Context, entryID string) ([]string, error) {
	query := `
		SELECT t.tag_name
		FROM entry_tags et
		JOIN tags t ON t.id = et.tag_id
		WHERE et.entry_id = $1
		ORDER BY et.position
	`
	rows, err := r.db.QueryContext(ctx, query, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to select tags: %w", err)
	}
	defer rows.Close()

	names := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return names, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*models.Tag, error) {
	query := `
		SELECT t.id, t.tag_name, et.entry_id
		FROM tags t
		LEFT JOIN entry_tags et ON et.tag_id = t.id
		WHERE t.user_id = $1
		ORDER BY t.tag_name, et.entry_id
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select tags: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Tag, 0)
	var cur *models.Tag
	for rows.Next() {
		var (
			id, name string
			entryID  sql.NullString
		)
		if err := rows.Scan(&id, &name, &entryID); err != nil {
			return nil, err
		}
		if cur == nil || cur.ID != id {
			cur = &models.Tag{ID: id, UserID: userID, TagName: name, Entries: []string{}}
			result = append(result, cur)
		}
		if entryID.Valid {
			cur.Entries = append(cur.Entries, entryID.String)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
