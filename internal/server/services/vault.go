// Package services implements the vault operations: the session guard over
// the master secret, the encrypted credential store and the Vault facade the
// transports call.
package services

import (
	"context"
	"database/sql"
	"iter"

	"github.com/dmitrijs2005/sitevault/internal/logging"
	"github.com/dmitrijs2005/sitevault/internal/server/config"
	"github.com/dmitrijs2005/sitevault/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/sitevault/internal/server/session"
)

// Vault maps the client operations onto the guard and the credential store.
// Every call is authorised on its own through the session id it carries.
type Vault struct {
	guard *Guard
	store *CredentialStore
}

func NewVault(db *sql.DB, m repomanager.RepositoryManager, sessions *session.Table, cfg *config.Config, log logging.Logger) *Vault {
	return &Vault{
		guard: NewGuard(db, m, sessions, cfg.KDFParams(), log),
		store: NewCredentialStore(db, m, cfg.PasswordPolicy(), log),
	}
}

func (v *Vault) Initialize(ctx context.Context, masterKey []byte) error {
	return v.guard.Initialize(ctx, masterKey)
}

func (v *Vault) Login(ctx context.Context, currentSessionID string, masterKey []byte) (*session.Session, error) {
	return v.guard.Login(ctx, currentSessionID, masterKey)
}

// AddPassword generates, stores and returns a password for site.
func (v *Vault) AddPassword(ctx context.Context, sessionID, site string) (string, error) {
	sess, err := v.guard.RequireUnlocked(sessionID)
	if err != nil {
		return "", err
	}
	return v.store.GenerateAndPut(ctx, sess, site)
}

// ShowPasswords lists every stored credential decrypted with the caller's key.
func (v *Vault) ShowPasswords(ctx context.Context, sessionID string) (iter.Seq[DecryptedCredential], error) {
	sess, err := v.guard.RequireUnlocked(sessionID)
	if err != nil {
		return nil, err
	}
	return v.store.ListDecrypted(ctx, sess)
}

func (v *Vault) Logout(ctx context.Context, sessionID string) {
	v.guard.Lock(sessionID)
}

func (v *Vault) Status(ctx context.Context, sessionID string) (Status, error) {
	return v.guard.Status(ctx, sessionID)
}
