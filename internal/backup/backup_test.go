package backup

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/suyanik/Einkauflist/internal/database"
)

type fakeS3 struct {
	mu       sync.Mutex
	puts     []s3.PutObjectInput
	failures int
}

func (f *fakeS3) PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failures > 0 {
		f.failures--
		return nil, errors.New("transient upload error")
	}
	// Drain the body so the snapshot file is fully read.
	if input.Body != nil {
		io.Copy(io.Discard, input.Body)
	}
	f.puts = append(f.puts, *input)
	return &s3.PutObjectOutput{}, nil
}

func testManager(t *testing.T, client s3Client) *Manager {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	m := NewManager(Config{
		S3:       S3Config{Bucket: "test-bucket", AccessKey: "k", SecretKey: "s", Prefix: "einkauf"},
		Interval: time.Hour,
	}, db, slog.Default())
	m.client = client
	m.retryBase = time.Millisecond
	return m
}

func TestBackupNow(t *testing.T) {
	fake := &fakeS3{}
	m := testManager(t, fake)

	if err := m.BackupNow(context.Background()); err != nil {
		t.Fatalf("backup: %v", err)
	}

	if len(fake.puts) != 1 {
		t.Fatalf("expected 1 upload, got %d", len(fake.puts))
	}
	put := fake.puts[0]
	if *put.Bucket != "test-bucket" {
		t.Errorf("bucket = %q", *put.Bucket)
	}
	if !strings.HasPrefix(*put.Key, "einkauf/backup-") || !strings.HasSuffix(*put.Key, ".db") {
		t.Errorf("unexpected key %q", *put.Key)
	}
	if *put.ContentLength == 0 {
		t.Error("uploaded object is empty")
	}

	st := m.Status()
	if st.LastBackup == nil {
		t.Error("status should record last backup time")
	}
	if st.LastError != "" {
		t.Errorf("unexpected error in status: %s", st.LastError)
	}
}

func TestBackupNowRetriesTransientFailure(t *testing.T) {
	fake := &fakeS3{failures: 2}
	m := testManager(t, fake)

	if err := m.BackupNow(context.Background()); err != nil {
		t.Fatalf("backup should survive transient failures: %v", err)
	}
	if len(fake.puts) != 1 {
		t.Fatalf("expected 1 successful upload, got %d", len(fake.puts))
	}
}

func TestBackupNowGivesUp(t *testing.T) {
	fake := &fakeS3{failures: 10}
	m := testManager(t, fake)

	if err := m.BackupNow(context.Background()); err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if st := m.Status(); st.LastError == "" {
		t.Error("status should record the failure")
	}
}

func TestManagerDisabledWithoutCredentials(t *testing.T) {
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	m := NewManager(Config{}, db, slog.Default())
	if m.Status().Enabled {
		t.Error("manager without credentials should be disabled")
	}
	if err := m.BackupNow(context.Background()); err == nil {
		t.Error("BackupNow should fail when not configured")
	}

	// Start and Stop must be safe no-ops when disabled.
	m.Start(context.Background())
	m.Stop()
}
