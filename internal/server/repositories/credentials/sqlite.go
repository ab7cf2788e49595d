package credentials

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/sitevault/internal/dbx"
	"github.com/dmitrijs2005/sitevault/internal/server/models"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Upsert inserts the entry or replaces the ciphertext of an existing site.
func (r *SQLiteRepository) Upsert(ctx context.Context, e *models.CredentialEntry) error {
	query := ` INSERT INTO credentials (site, ciphertext, nonce)
			values (?, ?, ?)
			ON CONFLICT(site) DO UPDATE SET ciphertext = excluded.ciphertext,
				nonce = excluded.nonce,
				updated_at = CURRENT_TIMESTAMP
	`
	if _, err := r.db.ExecContext(ctx, query, e.Site, e.Ciphertext, e.Nonce); err != nil {
		return fmt.Errorf("failed to upsert credential: %w", err)
	}
	return nil
}

// List returns all entries in insertion order.
func (r *SQLiteRepository) List(ctx context.Context) ([]*models.CredentialEntry, error) {
	query := `select seq, site, ciphertext, nonce, created_at, updated_at from credentials order by seq`
	return queryEntries(ctx, r.db, query)
}
