package repomanager

import (
	"context"
	"database/sql"

	"github.com/audiovault/audiovault/internal/dbx"
	"github.com/audiovault/audiovault/internal/server/repositories/audiofiles"
	"github.com/audiovault/audiovault/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	AudioFiles(db dbx.DBTX) audiofiles.Repository
}
