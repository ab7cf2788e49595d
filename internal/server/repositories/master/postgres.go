package master

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/sitevault/internal/common"
	"github.com/dmitrijs2005/sitevault/internal/dbx"
	"github.com/dmitrijs2005/sitevault/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, rec *models.MasterSecretRecord) error {

	query :=
		`INSERT INTO master_secret (id, salt, verifier, kdf_time, kdf_memory_kib, kdf_threads)
		 VALUES (1, $1, $2, $3, $4, $5)
		 ON CONFLICT (id) DO NOTHING
		 `

	res, err := r.db.ExecContext(ctx, query,
		rec.Salt, rec.Verifier, int64(rec.KDFTime), int64(rec.KDFMemoryKiB), int64(rec.KDFThreads))
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return createResult(res)
}

func (r *PostgresRepository) Get(ctx context.Context) (*models.MasterSecretRecord, error) {
	query :=
		`SELECT salt, verifier, kdf_time, kdf_memory_kib, kdf_threads, created_at FROM master_secret
		 WHERE id = 1
		 `

	return scanRecord(r.db.QueryRowContext(ctx, query))
}

// createResult turns the rows affected by an ON CONFLICT DO NOTHING insert
// into the create-if-absent outcome.
func createResult(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrAlreadyInitialized
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}

func scanRecord(row *sql.Row) (*models.MasterSecretRecord, error) {
	rec := &models.MasterSecretRecord{}
	var kdfTime, kdfMemory, kdfThreads int64

	err := row.Scan(&rec.Salt, &rec.Verifier, &kdfTime, &kdfMemory, &kdfThreads, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	rec.KDFTime = uint32(kdfTime)
	rec.KDFMemoryKiB = uint32(kdfMemory)
	rec.KDFThreads = uint8(kdfThreads)
	return rec, nil
}
