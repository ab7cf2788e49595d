// Package repomanager hands out repositories for the configured database and
// runs its schema migrations.
package repomanager

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/sitevault/internal/dbx"
	"github.com/dmitrijs2005/sitevault/internal/server/migrations"
	"github.com/dmitrijs2005/sitevault/internal/server/repositories/credentials"
	"github.com/dmitrijs2005/sitevault/internal/server/repositories/master"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Master(db dbx.DBTX) master.Repository
	Credentials(db dbx.DBTX) credentials.Repository
}

// migrateUp is a seam for testing migrations.Up.
var migrateUp = migrations.Up

// IsPostgresDSN reports whether dsn points at PostgreSQL rather than a SQLite file.
func IsPostgresDSN(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

// Open connects to the database named by dsn and returns the matching manager.
// postgres:// and postgresql:// DSNs use pgx; anything else is opened as SQLite.
func Open(ctx context.Context, dsn string) (*sql.DB, RepositoryManager, error) {
	var (
		db  *sql.DB
		m   RepositoryManager
		err error
	)

	if IsPostgresDSN(dsn) {
		db, err = sql.Open("pgx", dsn)
		m = NewPostgresRepositoryManager()
	} else {
		db, err = sql.Open("sqlite", dsn)
		m = NewSQLiteRepositoryManager()
	}
	if err != nil {
		return nil, nil, fmt.Errorf("open db: %w", err)
	}

	if !IsPostgresDSN(dsn) {
		// one writer at a time; also keeps :memory: databases on a single connection
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("ping db: %w", err)
	}

	return db, m, nil
}
