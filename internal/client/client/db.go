package client

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/rosebudthorn/internal/client/migrations"
	"github.com/dmitrijs2005/rosebudthorn/internal/client/repositories/entries"
	"github.com/dmitrijs2005/rosebudthorn/internal/client/repositories/groups"
	"github.com/dmitrijs2005/rosebudthorn/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/rosebudthorn/internal/client/repositories/tags"
	"github.com/dmitrijs2005/rosebudthorn/internal/dbx"
	"github.com/dmitrijs2005/rosebudthorn/internal/filex"

	_ "modernc.org/sqlite"
)

// Repositories groups the local store repositories bound to one DBTX.
type Repositories struct {
	Entries  entries.Repository
	Groups   groups.Repository
	Tags     tags.Repository
	Metadata metadata.Repository
}

func NewRepositories(db dbx.DBTX) *Repositories {
	return &Repositories{
		Entries:  entries.NewSQLiteRepository(db),
		Groups:   groups.NewSQLiteRepository(db),
		Tags:     tags.NewSQLiteRepository(db),
		Metadata: metadata.NewSQLiteRepository(db),
	}
}

// InitDatabase opens the local store at path, creating its directory, and
// applies the embedded migrations.
func InitDatabase(ctx context.Context, path string) (*sql.DB, error) {
	path, err := filex.ExpandHome(path)
	if err != nil {
		return nil, err
	}
	if err := filex.EnsureParentDir(path); err != nil {
		return nil, fmt.Errorf("local store directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	if err := migrations.Up(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
