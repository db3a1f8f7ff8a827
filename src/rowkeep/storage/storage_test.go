package storage

import (
	"bytes"
	"context"
	stderrors "errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bitswalk/rowkeep/src/common/errors"
)

func TestLocalBackend_RoundTrip(t *testing.T) {
	ctx := context.Background()
	b, err := NewLocal(LocalConfig{BasePath: t.TempDir()})
	if err != nil {
		t.Fatalf("failed to create local backend: %v", err)
	}

	data := []byte("snapshot bytes")
	if err := b.Upload(ctx, "backups/2026/a.db.xz", bytes.NewReader(data), int64(len(data)), ""); err != nil {
		t.Fatalf("upload failed: %v", err)
	}

	exists, err := b.Exists(ctx, "backups/2026/a.db.xz")
	if err != nil || !exists {
		t.Fatalf("expected object to exist (%v)", err)
	}

	rc, info, err := b.Download(ctx, "backups/2026/a.db.xz")
	if err != nil {
		t.Fatalf("download failed: %v", err)
	}
	got, _ := io.ReadAll(rc)
	rc.Close()
	if !bytes.Equal(got, data) || info.Size != int64(len(data)) {
		t.Fatalf("unexpected content %q (size %d)", got, info.Size)
	}

	if err := b.Delete(ctx, "backups/2026/a.db.xz"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if err := b.Delete(ctx, "backups/2026/a.db.xz"); err != nil {
		t.Fatalf("deleting a missing object should succeed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(b.Location(), "backups")); !os.IsNotExist(err) {
		t.Fatal("expected empty directories to be removed")
	}

	if _, _, err := b.Download(ctx, "backups/2026/a.db.xz"); !stderrors.Is(err, errors.ErrStorageNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestLocalBackend_SizeMismatch(t *testing.T) {
	b, _ := NewLocal(LocalConfig{BasePath: t.TempDir()})
	err := b.Upload(context.Background(), "x", strings.NewReader("abc"), 10, "")
	if err == nil {
		t.Fatal("expected size mismatch error")
	}
	if exists, _ := b.Exists(context.Background(), "x"); exists {
		t.Fatal("partial upload should be removed")
	}
}

func TestLocalBackend_KeysStayInsideBase(t *testing.T) {
	base := t.TempDir()
	b, _ := NewLocal(LocalConfig{BasePath: base})

	if err := b.Upload(context.Background(), "../../escape.txt", strings.NewReader("x"), -1, ""); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(b.Location(), "escape.txt")); err != nil {
		t.Fatalf("expected file inside base path: %v", err)
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(filepath.Dir(base)), "escape.txt")); err == nil {
		t.Fatal("key escaped the base path")
	}
}

func TestLocalBackend_List(t *testing.T) {
	ctx := context.Background()
	b, _ := NewLocal(LocalConfig{BasePath: t.TempDir()})

	for _, key := range []string{"snapshots/b.db.xz", "snapshots/a.db.xz", "other/c.txt"} {
		if err := b.Upload(ctx, key, strings.NewReader(key), -1, ""); err != nil {
			t.Fatal(err)
		}
	}

	objects, err := b.List(ctx, "snapshots/")
	if err != nil {
		t.Fatal(err)
	}
	if len(objects) != 2 || objects[0].Key != "snapshots/a.db.xz" || objects[1].Key != "snapshots/b.db.xz" {
		t.Fatalf("unexpected listing %+v", objects)
	}

	all, _ := b.List(ctx, "")
	if len(all) != 3 {
		t.Fatalf("expected 3 objects, got %d", len(all))
	}
}

func TestNew(t *testing.T) {
	b, err := New(Config{Type: TypeLocal, Local: LocalConfig{BasePath: t.TempDir()}})
	if err != nil || b.Type() != TypeLocal {
		t.Fatalf("expected local backend, got %v (%v)", b, err)
	}
	if err := b.Ping(context.Background()); err != nil {
		t.Fatalf("ping failed: %v", err)
	}

	s3b, err := New(Config{Type: TypeS3, S3: S3Config{Endpoint: "http://minio:9000/", Bucket: "rowkeep", Prefix: "backups"}})
	if err != nil {
		t.Fatalf("failed to create s3 backend: %v", err)
	}
	if s3b.Type() != TypeS3 || s3b.Location() != "http://minio:9000/rowkeep/backups" {
		t.Fatalf("unexpected s3 backend %s %s", s3b.Type(), s3b.Location())
	}

	if _, err := New(Config{Type: TypeS3}); err == nil {
		t.Fatal("expected error for missing bucket")
	}
	if _, err := New(Config{Type: "ftp"}); err == nil {
		t.Fatal("expected error for unknown type")
	}
}

func TestS3Backend_Keys(t *testing.T) {
	b, _ := NewS3(S3Config{Bucket: "rowkeep", Prefix: "env/prod"})
	if got := b.objectKey("snapshots/a.db.xz"); got != "env/prod/snapshots/a.db.xz" {
		t.Fatalf("unexpected object key %s", got)
	}
	if got := b.relativeKey("env/prod/snapshots/a.db.xz"); got != "snapshots/a.db.xz" {
		t.Fatalf("unexpected relative key %s", got)
	}
	if b.Location() != "s3://rowkeep/env/prod" {
		t.Fatalf("unexpected location %s", b.Location())
	}
}
