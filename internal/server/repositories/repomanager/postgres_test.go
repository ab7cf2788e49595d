package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/sitevault/internal/server/repositories/credentials"
	"github.com/dmitrijs2005/sitevault/internal/server/repositories/master"
	"github.com/pressly/goose/v3"
)

func newDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

func TestFactories_ReturnConcreteRepos(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	m := NewPostgresRepositoryManager()

	if _, ok := m.Master(db).(*master.PostgresRepository); !ok {
		t.Fatal("Master() is not a postgres repository")
	}
	if _, ok := m.Credentials(db).(*credentials.PostgresRepository); !ok {
		t.Fatal("Credentials() is not a postgres repository")
	}
}

func TestRunMigrations_Dialect(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	orig := migrateUp
	defer func() { migrateUp = orig }()

	var got goose.Dialect
	migrateUp = func(ctx context.Context, db *sql.DB, d goose.Dialect) error {
		got = d
		return nil
	}

	if err := NewPostgresRepositoryManager().RunMigrations(context.Background(), db); err != nil {
		t.Fatalf("RunMigrations error: %v", err)
	}
	if got != goose.DialectPostgres {
		t.Fatalf("dialect = %q, want postgres", got)
	}
}

func TestRunMigrations_Error(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	orig := migrateUp
	migrateUp = func(ctx context.Context, db *sql.DB, d goose.Dialect) error {
		return errors.New("boom")
	}
	defer func() { migrateUp = orig }()

	m := NewPostgresRepositoryManager()
	if err := m.RunMigrations(context.Background(), db); err == nil || err.Error() != "boom" {
		t.Fatalf("expected boom, got %v", err)
	}
}
