// Package master persists the single MasterSecretRecord.
package master

import (
	"context"

	"github.com/dmitrijs2005/sitevault/internal/server/models"
)

// Repository stores the master record.
//
// Create must be an atomic create-if-absent: when a record already exists it
// returns common.ErrAlreadyInitialized and leaves the stored row untouched.
// Get returns common.ErrorNotFound before initialization.
type Repository interface {
	Create(ctx context.Context, rec *models.MasterSecretRecord) error
	Get(ctx context.Context) (*models.MasterSecretRecord, error)
}
