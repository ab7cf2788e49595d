package credentials

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/sitevault/internal/dbx"
	"github.com/dmitrijs2005/sitevault/internal/server/models"
)

// PostgresRepository implements credential storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Upsert inserts the entry or replaces the ciphertext of an existing site.
func (r *PostgresRepository) Upsert(ctx context.Context, entry *models.CredentialEntry) error {
	query := `
		INSERT INTO credentials (site, ciphertext, nonce)
		VALUES ($1, $2, $3)
		ON CONFLICT (site)
		DO UPDATE SET
			ciphertext = EXCLUDED.ciphertext,
			nonce = EXCLUDED.nonce,
			updated_at = now()
	`
	if _, err := r.db.ExecContext(ctx, query, entry.Site, entry.Ciphertext, entry.Nonce); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// List returns all entries in insertion order.
func (r *PostgresRepository) List(ctx context.Context) ([]*models.CredentialEntry, error) {
	query := `SELECT seq, site, ciphertext, nonce, created_at, updated_at FROM credentials ORDER BY seq`
	return queryEntries(ctx, r.db, query)
}

func scanEntry(s interface{ Scan(...any) error }) (*models.CredentialEntry, error) {
	e := &models.CredentialEntry{}
	if err := s.Scan(&e.Seq, &e.Site, &e.Ciphertext, &e.Nonce, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	return e, nil
}

func queryEntries(ctx context.Context, db dbx.DBTX, query string, args ...any) ([]*models.CredentialEntry, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select credentials: %w", err)
	}
	defer rows.Close()

	var result []*models.CredentialEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan credential: %w", err)
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
