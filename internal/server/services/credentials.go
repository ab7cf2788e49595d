package services

import (
	"context"
	"database/sql"
	"errors"
	"iter"
	"regexp"
	"strings"
	"sync"

	"github.com/dmitrijs2005/sitevault/internal/common"
	"github.com/dmitrijs2005/sitevault/internal/cryptox"
	"github.com/dmitrijs2005/sitevault/internal/logging"
	"github.com/dmitrijs2005/sitevault/internal/passgen"
	"github.com/dmitrijs2005/sitevault/internal/server/models"
	"github.com/dmitrijs2005/sitevault/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/sitevault/internal/server/session"
)

const maxSiteLen = 255

var siteRe = regexp.MustCompile(`^(https?://)?([\w.]+)\.([a-z]{2,6}\.?)(/\S*)?$`)

// NormalizeSite trims site and checks it looks like a URL or host name.
func NormalizeSite(site string) (string, error) {
	site = strings.TrimSpace(site)
	if site == "" || len(site) > maxSiteLen || !siteRe.MatchString(site) {
		return "", common.ErrInvalidSite
	}
	return site, nil
}

// DecryptedCredential is one listed entry. Err is set, and Password empty,
// when the entry could not be decrypted.
type DecryptedCredential struct {
	Site     string
	Password string
	Err      error
}

// CredentialStore encrypts passwords with the session key and persists them.
// Writes and list snapshots are serialised by a store-wide lock.
type CredentialStore struct {
	mu          sync.RWMutex
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	policy      passgen.Policy
	log         logging.Logger
}

func NewCredentialStore(db *sql.DB, m repomanager.RepositoryManager, policy passgen.Policy, log logging.Logger) *CredentialStore {
	return &CredentialStore{
		db:          db,
		repomanager: m,
		policy:      policy,
		log:         log.With("module", "credentials"),
	}
}

// Put encrypts password under the session key and stores it for site,
// replacing any earlier entry.
func (s *CredentialStore) Put(ctx context.Context, sess *session.Session, site, password string) error {
	if sess == nil {
		return common.ErrUnauthenticated
	}

	site, err := NormalizeSite(site)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err = sess.WithKey(func(k cryptox.Key) error {
		ct, nonce, err := cryptox.Seal(k, []byte(password), []byte(site))
		if err != nil {
			return err
		}
		if err := s.repomanager.Credentials(s.db).Upsert(ctx, &models.CredentialEntry{
			Site:       site,
			Ciphertext: ct,
			Nonce:      nonce,
		}); err != nil {
			return storageErr(err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Info(ctx, "credential stored", "site", site)
	return nil
}

// GenerateAndPut generates a password with the configured policy, stores it
// for site and returns it.
func (s *CredentialStore) GenerateAndPut(ctx context.Context, sess *session.Session, site string) (string, error) {
	if sess == nil {
		return "", common.ErrUnauthenticated
	}

	site, err := NormalizeSite(site)
	if err != nil {
		return "", err
	}

	password, err := passgen.Generate(s.policy)
	if err != nil {
		return "", err
	}

	if err := s.Put(ctx, sess, site, password); err != nil {
		return "", err
	}
	return password, nil
}

// ListDecrypted snapshots the stored entries in insertion order and returns a
// sequence that decrypts them as it is ranged over. The sequence can be
// ranged over again; each pass decrypts the same snapshot.
func (s *CredentialStore) ListDecrypted(ctx context.Context, sess *session.Session) (iter.Seq[DecryptedCredential], error) {
	if sess == nil {
		return nil, common.ErrUnauthenticated
	}
	if err := sess.WithKey(func(cryptox.Key) error { return nil }); err != nil {
		return nil, err
	}

	s.mu.RLock()
	entries, err := s.repomanager.Credentials(s.db).List(ctx)
	s.mu.RUnlock()
	if err != nil {
		return nil, storageErr(err)
	}

	return func(yield func(DecryptedCredential) bool) {
		for _, e := range entries {
			if !yield(s.decrypt(ctx, sess, e)) {
				return
			}
		}
	}, nil
}

func (s *CredentialStore) decrypt(ctx context.Context, sess *session.Session, e *models.CredentialEntry) DecryptedCredential {
	dc := DecryptedCredential{Site: e.Site}

	err := sess.WithKey(func(k cryptox.Key) error {
		pt, err := cryptox.Open(k, e.Ciphertext, e.Nonce, []byte(e.Site))
		if err != nil {
			return common.ErrDecryption
		}
		dc.Password = string(pt)
		common.WipeByteArray(pt)
		return nil
	})

	switch {
	case err == nil:
	case errors.Is(err, common.ErrUnauthenticated):
		dc.Err = err
	default:
		s.log.Warn(ctx, "credential decryption failed", "site", e.Site)
		dc.Err = common.ErrDecryption
	}
	return dc
}
