// Package credentials persists encrypted site passwords.
package credentials

import (
	"context"

	"github.com/dmitrijs2005/sitevault/internal/server/models"
)

// Repository stores CredentialEntry rows keyed by site.
//
// Upsert overwrites the ciphertext and nonce of an existing site while
// keeping its insertion position. List returns every entry ordered by
// insertion.
type Repository interface {
	Upsert(ctx context.Context, entry *models.CredentialEntry) error
	List(ctx context.Context) ([]*models.CredentialEntry, error)
}
