// Package entries provides the PostgreSQL-backed entry repository.
package entries

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/rosebudthorn/internal/common"
	"github.com/dmitrijs2005/rosebudthorn/internal/dbx"
	"github.com/dmitrijs2005/rosebudthorn/internal/server/models"
)

// UserDateConstraint enforces one entry per user and day.
const UserDateConstraint = "entries_user_date_key"

const entryColumns = `e.id, e.user_id, e.entry_date, e.rose_text, e.bud_text, e.thorn_text, e.is_public, e.created_at, e.updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (*models.Entry, error) {
	e := &models.Entry{}
	err := s.Scan(&e.ID, &e.UserID, &e.Date, &e.RoseText, &e.BudText, &e.ThornText, &e.IsPublic, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (r *PostgresRepository) Create(ctx context.Context, e *models.Entry) (*models.Entry, error) {
	query := `
		INSERT INTO entries (user_id, entry_date, rose_text, bud_text, thorn_text, is_public)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query, e.UserID, e.Date, e.RoseText, e.BudText, e.ThornText, e.IsPublic).
		Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err, UserDateConstraint) {
			return nil, common.ErrEntryExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return e, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries e WHERE e.id = $1`

	e, err := scanEntry(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return e, nil
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]*models.Entry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select entries: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Entry, 0)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*models.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries e
		WHERE e.user_id = $1
		ORDER BY e.created_at, e.id`
	return r.list(ctx, query, userID)
}

func (r *PostgresRepository) ListPublicByGroup(ctx context.Context, groupID string) ([]*models.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries e
		JOIN group_members m ON m.user_id = e.user_id
		WHERE m.group_id = $1 AND e.is_public
		ORDER BY e.entry_date DESC, e.created_at DESC`
	return r.list(ctx, query, groupID)
}

func (r *PostgresRepository) Update(ctx context.Context, e *models.Entry) error {
	query := `
		UPDATE entries
		SET rose_text = $2, bud_text = $3, thorn_text = $4, is_public = $5, updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.db.QueryRowContext(ctx, query, e.ID, e.RoseText, e.BudText, e.ThornText, e.IsPublic).Scan(&e.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) TogglePublic(ctx context.Context, id string) (bool, error) {
	query := `
		UPDATE entries
		SET is_public = NOT is_public, updated_at = now()
		WHERE id = $1
		RETURNING is_public
	`
	var public bool
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&public); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, common.ErrorNotFound
		}
		return false, fmt.Errorf("db error: %w", err)
	}
	return public, nil
}

func (r *PostgresRepository) AddReaction(ctx context.Context, re *models.Reaction) error {
	query := `
		INSERT INTO entry_reactions (entry_id, group_id, user_reacting_id, reaction_kind)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`
	err := r.db.QueryRowContext(ctx, query, re.EntryID, re.GroupID, re.UserReactingID, re.ReactionKind).Scan(&re.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Reactions(ctx context.Context, entryID string) ([]models.Reaction, error) {
	query := `
		SELECT group_id, user_reacting_id, reaction_kind, created_at
		FROM entry_reactions
		WHERE entry_id = $1
		ORDER BY id
	`
	rows, err := r.db.QueryContext(ctx, query, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to select reactions: %w", err)
	}
	defer rows.Close()

	result := make([]models.Reaction, 0)
	for rows.Next() {
		re := models.Reaction{EntryID: entryID}
		if err := rows.Scan(&re.GroupID, &re.UserReactingID, &re.ReactionKind, &re.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, re)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
