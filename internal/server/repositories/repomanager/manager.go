package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/rosebudthorn/internal/dbx"
	"github.com/dmitrijs2005/rosebudthorn/internal/server/repositories/entries"
	"github.com/dmitrijs2005/rosebudthorn/internal/server/repositories/groups"
	"github.com/dmitrijs2005/rosebudthorn/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/rosebudthorn/internal/server/repositories/tags"
	"github.com/dmitrijs2005/rosebudthorn/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to either the pool or a
// transaction, so services can compose several writes in one dbx.WithTx.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Entries(db dbx.DBTX) entries.Repository
	Tags(db dbx.DBTX) tags.Repository
	Groups(db dbx.DBTX) groups.Repository
}
