package credentials

import (
	"context"
	"database/sql"
	"testing"

	"github.com/dmitrijs2005/sitevault/internal/server/migrations"
	"github.com/dmitrijs2005/sitevault/internal/server/models"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, migrations.Up(context.Background(), db, goose.DialectSQLite3))
	return db
}

func TestSQLite_UpsertKeepsInsertionOrder(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Upsert(ctx, &models.CredentialEntry{Site: "b.com", Ciphertext: []byte("b1"), Nonce: []byte("nb1")}))
	require.NoError(t, r.Upsert(ctx, &models.CredentialEntry{Site: "a.com", Ciphertext: []byte("a1"), Nonce: []byte("na1")}))
	require.NoError(t, r.Upsert(ctx, &models.CredentialEntry{Site: "b.com", Ciphertext: []byte("b2"), Nonce: []byte("nb2")}))

	got, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "b.com", got[0].Site, "overwrite keeps the original position")
	assert.Equal(t, []byte("b2"), got[0].Ciphertext)
	assert.Equal(t, []byte("nb2"), got[0].Nonce)
	assert.Equal(t, "a.com", got[1].Site)
	assert.Less(t, got[0].Seq, got[1].Seq)
}


func TestSQLite_ListEmpty(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))

	got, err := r.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}
