package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/sitevault/internal/common"
	"github.com/dmitrijs2005/sitevault/internal/cryptox"
	"github.com/dmitrijs2005/sitevault/internal/logging"
	"github.com/dmitrijs2005/sitevault/internal/server/models"
	"github.com/dmitrijs2005/sitevault/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/sitevault/internal/server/session"
)

// Status is the vault state as seen by one caller.
type Status int

const (
	StatusUninitialized Status = iota
	StatusLocked
	StatusUnlocked
)

func (s Status) String() string {
	switch s {
	case StatusUninitialized:
		return "uninitialized"
	case StatusLocked:
		return "locked"
	case StatusUnlocked:
		return "unlocked"
	default:
		return "unknown"
	}
}

// Guard owns the master secret record and the session table.
type Guard struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	sessions    *session.Table
	kdf         cryptox.KDFParams
	log         logging.Logger
}

func NewGuard(db *sql.DB, m repomanager.RepositoryManager, sessions *session.Table, kdf cryptox.KDFParams, log logging.Logger) *Guard {
	return &Guard{
		db:          db,
		repomanager: m,
		sessions:    sessions,
		kdf:         kdf,
		log:         log.With("module", "guard"),
	}
}

func storageErr(err error) error {
	return fmt.Errorf("%w: %w", common.ErrStorage, err)
}

// Initialize creates the master secret record. It succeeds once per vault;
// later calls, including concurrent losers, get common.ErrAlreadyInitialized.
func (g *Guard) Initialize(ctx context.Context, masterKey []byte) error {
	if len(masterKey) == 0 {
		return common.ErrEmptyKey
	}

	repo := g.repomanager.Master(g.db)

	_, err := repo.Get(ctx)
	if err == nil {
		return common.ErrAlreadyInitialized
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return storageErr(err)
	}

	salt := cryptox.NewSalt()
	key, err := cryptox.DeriveKeyContext(ctx, masterKey, salt, g.kdf)
	if err != nil {
		return err
	}
	defer key.Wipe()

	verifier, err := cryptox.MakeVerifier(key)
	if err != nil {
		return err
	}

	rec := &models.MasterSecretRecord{
		Salt:         salt,
		Verifier:     verifier,
		KDFTime:      g.kdf.Time,
		KDFMemoryKiB: g.kdf.MemoryKiB,
		KDFThreads:   g.kdf.Threads,
	}

	if err := repo.Create(ctx, rec); err != nil {
		if errors.Is(err, common.ErrAlreadyInitialized) {
			return err
		}
		return storageErr(err)
	}

	g.log.Info(ctx, "master key initialized")
	return nil
}

// Login checks masterKey against the stored verifier and opens a new session.
// currentSessionID is the session the caller presented, if any; it is locked
// whatever the outcome so a session id is never reused across logins.
// Nothing changes until derivation and verification have finished.
func (g *Guard) Login(ctx context.Context, currentSessionID string, masterKey []byte) (*session.Session, error) {
	if len(masterKey) == 0 {
		return nil, common.ErrEmptyKey
	}

	rec, err := g.repomanager.Master(g.db).Get(ctx)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrNotInitialized
		}
		return nil, storageErr(err)
	}

	params := cryptox.KDFParams{Time: rec.KDFTime, MemoryKiB: rec.KDFMemoryKiB, Threads: rec.KDFThreads}
	key, err := cryptox.DeriveKeyContext(ctx, masterKey, rec.Salt, params)
	if err != nil {
		return nil, err
	}
	defer key.Wipe()

	candidate, err := cryptox.MakeVerifier(key)
	if err != nil {
		return nil, err
	}

	if !cryptox.CheckVerifier(rec.Verifier, candidate) {
		if currentSessionID != "" {
			g.sessions.Lock(currentSessionID)
		}
		g.log.Warn(ctx, "login failed")
		return nil, common.ErrInvalidCredentials
	}

	enc, err := cryptox.SubKey(key, cryptox.LabelEncryption)
	if err != nil {
		return nil, err
	}

	if currentSessionID != "" {
		g.sessions.Lock(currentSessionID)
	}
	s := g.sessions.Open(enc)

	g.log.Info(ctx, "login successful", "session_id", s.ID)
	return s, nil
}

// RequireUnlocked returns the live session for sessionID or common.ErrUnauthenticated.
func (g *Guard) RequireUnlocked(sessionID string) (*session.Session, error) {
	return g.sessions.Get(sessionID)
}

// Lock wipes the session key. Locking an unknown session is a no-op.
func (g *Guard) Lock(sessionID string) {
	g.sessions.Lock(sessionID)
}

// Status reports the vault state for the caller holding sessionID.
func (g *Guard) Status(ctx context.Context, sessionID string) (Status, error) {
	_, err := g.repomanager.Master(g.db).Get(ctx)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return StatusUninitialized, nil
		}
		return StatusUninitialized, storageErr(err)
	}

	if sessionID != "" && g.sessions.Active(sessionID) {
		return StatusUnlocked, nil
	}
	return StatusLocked, nil
}
