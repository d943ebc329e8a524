package groups

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/rosebudthorn/internal/api"
	"github.com/dmitrijs2005/rosebudthorn/internal/common"
	"github.com/dmitrijs2005/rosebudthorn/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Upsert(ctx context.Context, g api.Group) error {
	members := g.Members
	if members == nil {
		members = []string{}
	}
	membersJSON, err := json.Marshal(members)
	if err != nil {
		return fmt.Errorf("marshal members: %w", err)
	}

	query := `insert into groups (id, name, group_code, created_by, members, created_at)
		values (?, ?, ?, ?, ?, ?)
		on conflict(group_code) do update set
			id = excluded.id,
			name = excluded.name,
			created_by = excluded.created_by,
			members = excluded.members,
			created_at = excluded.created_at`
	_, err = r.db.ExecContext(ctx, query, g.ID, g.Name, g.GroupCode, g.CreatedBy, string(membersJSON),
		g.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to upsert group %s: %w", g.GroupCode, err)
	}
	return nil
}

func (r *SQLiteRepository) GetByCode(ctx context.Context, code string) (*api.Group, error) {
	row := r.db.QueryRowContext(ctx, `select id, name, group_code, created_by, members, created_at
		from groups where group_code = ?`, code)
	g, err := scanGroup(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group %s: %w", code, err)
	}
	return g, nil
}

func (r *SQLiteRepository) List(ctx context.Context) ([]api.Group, error) {
	rows, err := r.db.QueryContext(ctx, `select id, name, group_code, created_by, members, created_at
		from groups order by created_at, group_code`)
	if err != nil {
		return nil, fmt.Errorf("failed to select groups: %w", err)
	}
	defer rows.Close()

	var result []api.Group
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanGroup(s scanner) (*api.Group, error) {
	var (
		g                  api.Group
		members, createdAt string
	)
	if err := s.Scan(&g.ID, &g.Name, &g.GroupCode, &g.CreatedBy, &members, &createdAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(members), &g.Members); err != nil {
		return nil, fmt.Errorf("group %s members: %w", g.GroupCode, err)
	}
	t, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("group %s created_at: %w", g.GroupCode, err)
	}
	g.CreatedAt = t
	return &g, nil
}
