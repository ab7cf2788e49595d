package master

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

// Create inserts the record unless one exists already.
func (r *SQLiteRepository) Create(ctx context.Context, rec *models.MasterSecretRecord) error {
	query := `INSERT INTO master_secret (id, salt, verifier, kdf_time, kdf_memory_kib, kdf_threads)
			VALUES (1, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO NOTHING`

	res, err := r.db.ExecContext(ctx, query,
		rec.Salt, rec.Verifier, int64(rec.KDFTime), int64(rec.KDFMemoryKiB), int64(rec.KDFThreads))
	if err != nil {
		return fmt.Errorf("failed to insert master record: %w", err)
	}
	return createResult(res)
}

// Get returns the stored record or common.ErrorNotFound.
func (r *SQLiteRepository) Get(ctx context.Context) (*models.MasterSecretRecord, error) {
	query := `select salt, verifier, kdf_time, kdf_memory_kib, kdf_threads, created_at from master_secret where id=1`
	return scanRecord(r.db.QueryRowContext(ctx, query))
}
