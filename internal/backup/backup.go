// Package backup periodically copies the SQLite database to S3-compatible
// storage. A consistent snapshot is taken with VACUUM INTO so the live
// database is never read mid-write.
package backup

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sethvargo/go-retry"
)

// s3Client is an interface for testability.
type s3Client interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Config holds S3-compatible storage configuration.
type S3Config struct {
	Endpoint  string
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
	Prefix    string
}

// Config holds backup manager configuration.
type Config struct {
	S3       S3Config
	Interval time.Duration
}

// Status holds the last backup outcome.
type Status struct {
	LastBackup *time.Time `json:"last_backup,omitempty"`
	LastError  string     `json:"last_error,omitempty"`
	Enabled    bool       `json:"enabled"`
}

// Manager uploads database snapshots to S3 on a fixed interval.
type Manager struct {
	mu     sync.RWMutex
	cfg    Config
	status Status

	db        *sql.DB
	client    s3Client
	logger    *slog.Logger
	retryBase time.Duration

	cancel context.CancelFunc
	done   chan struct{}
}

// NewManager creates a backup manager. If the S3 credentials are incomplete
// the manager stays disabled and Start is a no-op.
func NewManager(cfg Config, db *sql.DB, logger *slog.Logger) *Manager {
	m := &Manager{
		cfg:       cfg,
		db:        db,
		logger:    logger,
		retryBase: 2 * time.Second,
	}
	if cfg.Interval <= 0 {
		m.cfg.Interval = 24 * time.Hour
	}
	if cfg.S3.Bucket != "" && cfg.S3.AccessKey != "" && cfg.S3.SecretKey != "" {
		m.client = newS3Client(cfg.S3)
		m.status.Enabled = true
	}
	return m
}

func newS3Client(cfg S3Config) *s3.Client {
	opts := s3.Options{
		Region:       cfg.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: true,
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return s3.New(opts)
}

// Start begins the scheduled backup loop.
func (m *Manager) Start(ctx context.Context) {
	m.mu.Lock()
	if m.client == nil {
		m.mu.Unlock()
		return
	}
	ctx, m.cancel = context.WithCancel(ctx)
	m.done = make(chan struct{})
	interval := m.cfg.Interval
	m.mu.Unlock()

	go func() {
		defer close(m.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := m.BackupNow(ctx); err != nil {
					m.logger.Error("scheduled backup failed", "error", err)
				}
			}
		}
	}()
}

// Stop gracefully stops the backup loop.
func (m *Manager) Stop() {
	m.mu.RLock()
	cancel := m.cancel
	done := m.done
	m.mu.RUnlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

// Status returns the last backup outcome.
func (m *Manager) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

// BackupNow takes a snapshot and uploads it immediately.
func (m *Manager) BackupNow(ctx context.Context) error {
	m.mu.RLock()
	client := m.client
	s3cfg := m.cfg.S3
	m.mu.RUnlock()

	if client == nil {
		return fmt.Errorf("backup not configured: S3 credentials missing")
	}

	timestamp := time.Now().UTC().Format("2006-01-02T150405Z")
	snapshot := filepath.Join(os.TempDir(), fmt.Sprintf("einkauflist-backup-%s.db", timestamp))
	defer os.Remove(snapshot)

	// VACUUM INTO produces a compacted, consistent copy regardless of WAL state.
	if _, err := m.db.ExecContext(ctx, "VACUUM INTO ?", snapshot); err != nil {
		m.recordFailure(err)
		return fmt.Errorf("snapshot database: %w", err)
	}

	key := fmt.Sprintf("backup-%s.db", timestamp)
	if s3cfg.Prefix != "" {
		key = s3cfg.Prefix + "/" + key
	}

	// Object storage upload is the flaky part, retry with capped backoff.
	backoff := retry.WithMaxRetries(3, retry.NewExponential(m.retryBase))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		f, err := os.Open(snapshot)
		if err != nil {
			return err
		}
		defer f.Close()

		stat, err := f.Stat()
		if err != nil {
			return err
		}

		_, err = client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:        aws.String(s3cfg.Bucket),
			Key:           aws.String(key),
			Body:          f,
			ContentLength: aws.Int64(stat.Size()),
		})
		if err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		m.recordFailure(err)
		return fmt.Errorf("upload to s3: %w", err)
	}

	now := time.Now().UTC()
	m.mu.Lock()
	m.status.LastBackup = &now
	m.status.LastError = ""
	m.mu.Unlock()

	m.logger.Info("backup uploaded", "key", key)
	return nil
}

func (m *Manager) recordFailure(err error) {
	m.mu.Lock()
	m.status.LastError = err.Error()
	m.mu.Unlock()
}
