package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/sitevault/internal/dbx"
	"github.com/dmitrijs2005/sitevault/internal/server/repositories/credentials"
	"github.com/dmitrijs2005/sitevault/internal/server/repositories/master"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// PostgresRepositoryManager wires PostgreSQL-backed repositories
// and exposes a schema migration hook.
type PostgresRepositoryManager struct{}

// Master returns a master.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Master(db dbx.DBTX) master.Repository {
	return master.NewPostgresRepository(db)
}

// Credentials returns a credentials.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Credentials(db dbx.DBTX) credentials.Repository {
	return credentials.NewPostgresRepository(db)
}

// RunMigrations applies the embedded PostgreSQL migrations.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	return migrateUp(ctx, db, goose.DialectPostgres)
}

// NewPostgresRepositoryManager constructs a PostgreSQL-backed RepositoryManager.
func NewPostgresRepositoryManager() *PostgresRepositoryManager {
	return &PostgresRepositoryManager{}
}
