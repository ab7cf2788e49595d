// Package backup uploads snapshots of the encrypted store to S3-compatible
// object storage. A snapshot holds the master record and the credential
// ciphertexts exactly as stored; nothing in it is decrypted.
package backup

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/sitevault/internal/common"
	"github.com/dmitrijs2005/sitevault/internal/dbx"
	"github.com/dmitrijs2005/sitevault/internal/logging"
	"github.com/dmitrijs2005/sitevault/internal/server/config"
	"github.com/dmitrijs2005/sitevault/internal/server/models"
	"github.com/dmitrijs2005/sitevault/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// ErrNothingToBackup is returned while the vault is not initialized.
var ErrNothingToBackup = errors.New("vault not initialized")

// PutObjectAPI is the part of *s3.Client the uploader needs.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Snapshot is the uploaded document.
type Snapshot struct {
	TakenAt     time.Time                  `json:"taken_at"`
	Master      *models.MasterSecretRecord `json:"master"`
	Credentials []*models.CredentialEntry  `json:"credentials"`
}

// ObjectKey returns a unique key under snapshots/<year>/<month>/<day>/.
func ObjectKey(t time.Time) string {
	return fmt.Sprintf("snapshots/%04d/%02d/%02d/%v.json", t.Year(), t.Month(), t.Day(), uuid.New())
}

// NewS3Client builds a client for the configured endpoint with static credentials.
func NewS3Client(ctx context.Context, c *config.Config) (*s3.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(c.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			c.S3RootUser,
			c.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(c.S3BaseEndpoint)
		o.UsePathStyle = true
	}), nil
}

type Service struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	client      PutObjectAPI
	bucket      string
	interval    time.Duration
	logger      logging.Logger
	now         func() time.Time
}

func NewService(db *sql.DB, m repomanager.RepositoryManager, client PutObjectAPI, bucket string, interval time.Duration, l logging.Logger) *Service {
	return &Service{
		db:          db,
		repomanager: m,
		client:      client,
		bucket:      bucket,
		interval:    interval,
		logger:      l.With("module", "backup"),
		now:         time.Now,
	}
}

func (s *Service) read(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{TakenAt: s.now().UTC()}

	err := dbx.WithReadTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		rec, err := s.repomanager.Master(tx).Get(ctx)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return ErrNothingToBackup
			}
			return err
		}
		snap.Master = rec

		snap.Credentials, err = s.repomanager.Credentials(tx).List(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}

	if snap.Credentials == nil {
		snap.Credentials = []*models.CredentialEntry{}
	}
	return snap, nil
}

// Upload takes one snapshot and stores it, returning the object key.
func (s *Service) Upload(ctx context.Context) (string, error) {
	snap, err := s.read(ctx)
	if err != nil {
		return "", err
	}

	body, err := json.Marshal(snap)
	if err != nil {
		return "", err
	}

	key := ObjectKey(snap.TakenAt)
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("put object: %w", err)
	}

	s.logger.Info(ctx, "snapshot uploaded", "key", key, "entries", len(snap.Credentials))
	return key, nil
}

// Run uploads a snapshot every interval until ctx is cancelled. Failures are
// logged and the next tick tries again.
func (s *Service) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Upload(ctx); err != nil {
				if errors.Is(err, ErrNothingToBackup) {
					s.logger.Debug(ctx, "snapshot skipped", "reason", err)
					continue
				}
				s.logger.Error(ctx, "snapshot failed", "error", err)
			}
		}
	}
}
