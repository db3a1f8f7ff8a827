// Package backup snapshots the database, compresses the snapshot with xz and
// stores it alongside a BLAKE2b-256 digest in a storage backend.
package backup

import (
	"bufio"
	"context"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ulikunitz/xz"
	"golang.org/x/crypto/blake2b"

	"github.com/bitswalk/rowkeep/src/common/errors"
	"github.com/bitswalk/rowkeep/src/common/logs"
	"github.com/bitswalk/rowkeep/src/rowkeep/storage"
)

const (
	snapshotSuffix = ".db.xz"
	digestSuffix   = ".b2sum"
	timeLayout     = "20060102T150405Z"
)

// Snapshotter writes a consistent copy of the database to a file
type Snapshotter interface {
	Snapshot(ctx context.Context, path string) error
}

// Backup describes one stored snapshot
type Backup struct {
	Key       string    `json:"key" yaml:"key"`
	Size      int64     `json:"size" yaml:"size"`
	Digest    string    `json:"digest,omitempty" yaml:"digest,omitempty"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// Config holds the backup configuration
type Config struct {
	// Prefix is the storage key prefix snapshots are written under
	Prefix string
}

// DefaultConfig returns a default backup configuration
func DefaultConfig() Config {
	return Config{Prefix: "snapshots"}
}

// Manager creates, lists and restores database backups
type Manager struct {
	source Snapshotter
	store  storage.Backend
	prefix string
	logger *logs.Logger
	now    func() time.Time
}

// NewManager creates a backup manager writing snapshots of source to store
func NewManager(source Snapshotter, store storage.Backend, cfg Config, logger *logs.Logger) *Manager {
	return &Manager{
		source: source,
		store:  store,
		prefix: strings.Trim(cfg.Prefix, "/"),
		logger: logger,
		now:    time.Now,
	}
}

// Store returns the backend snapshots are written to
func (m *Manager) Store() storage.Backend {
	return m.store
}

func newDigest() hash.Hash {
	h, _ := blake2b.New256(nil)
	return h
}

// Create snapshots the database and uploads the compressed snapshot and its digest
func (m *Manager) Create(ctx context.Context) (*Backup, error) {
	if m.source == nil {
		return nil, errors.ErrBackupUnsupported.WithMessage("no database to snapshot")
	}

	tmpDir, err := os.MkdirTemp("", "rowkeep-backup-")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	snapPath := filepath.Join(tmpDir, "snapshot.db")
	if err := m.source.Snapshot(ctx, snapPath); err != nil {
		return nil, err
	}

	compressedPath := snapPath + ".xz"
	digest, size, err := compressFile(snapPath, compressedPath)
	if err != nil {
		return nil, err
	}

	createdAt := m.now().UTC()
	name := createdAt.Format(timeLayout) + "-" + uuid.New().String() + snapshotSuffix
	key := path.Join(m.prefix, name)

	f, err := os.Open(compressedPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open compressed snapshot: %w", err)
	}
	defer f.Close()

	if err := m.store.Upload(ctx, key, f, size, "application/x-xz"); err != nil {
		return nil, fmt.Errorf("failed to upload snapshot: %w", err)
	}

	sum := digest + "  " + name + "\n"
	if err := m.store.Upload(ctx, key+digestSuffix, strings.NewReader(sum), int64(len(sum)), "text/plain"); err != nil {
		m.store.Delete(ctx, key)
		return nil, fmt.Errorf("failed to upload snapshot digest: %w", err)
	}

	if m.logger != nil {
		m.logger.Info("Backup created", "key", key, "size", size, "location", m.store.Location())
	}

	return &Backup{Key: key, Size: size, Digest: digest, CreatedAt: createdAt}, nil
}

// compressFile writes src compressed with xz to dst and returns the hex
// BLAKE2b-256 digest and size of the compressed file
func compressFile(src, dst string) (string, int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return "", 0, fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create compressed snapshot: %w", err)
	}
	defer out.Close()

	h := newDigest()
	counter := &countingWriter{}
	xw, err := xz.NewWriter(io.MultiWriter(out, h, counter))
	if err != nil {
		return "", 0, fmt.Errorf("failed to create xz writer: %w", err)
	}

	if _, err := io.Copy(xw, bufio.NewReader(in)); err != nil {
		return "", 0, fmt.Errorf("failed to compress snapshot: %w", err)
	}
	if err := xw.Close(); err != nil {
		return "", 0, fmt.Errorf("failed to finish compressed snapshot: %w", err)
	}

	return hex.EncodeToString(h.Sum(nil)), counter.n, nil
}

type countingWriter struct {
	n int64
}

func (w *countingWriter) Write(p []byte) (int, error) {
	w.n += int64(len(p))
	return len(p), nil
}

// List returns the stored snapshots, newest first
func (m *Manager) List(ctx context.Context) ([]Backup, error) {
	prefix := m.prefix
	if prefix != "" {
		prefix += "/"
	}

	objects, err := m.store.List(ctx, prefix)
	if err != nil {
		return nil, err
	}

	backups := []Backup{}
	for _, obj := range objects {
		if !strings.HasSuffix(obj.Key, snapshotSuffix) {
			continue
		}
		backups = append(backups, Backup{
			Key:       obj.Key,
			Size:      obj.Size,
			CreatedAt: createdAt(obj),
		})
	}

	sort.Slice(backups, func(i, j int) bool { return backups[i].Key > backups[j].Key })
	return backups, nil
}

// createdAt parses the timestamp encoded in a snapshot name, falling back to
// the object modification time
func createdAt(obj storage.ObjectInfo) time.Time {
	name := path.Base(obj.Key)
	if len(name) >= len(timeLayout) {
		if t, err := time.Parse(timeLayout, name[:len(timeLayout)]); err == nil {
			return t
		}
	}
	return obj.LastModified
}

// Restore downloads the snapshot stored under key, verifies it against its
// digest and writes the decompressed database to dest
func (m *Manager) Restore(ctx context.Context, key, dest string) (*Backup, error) {
	want, err := m.readDigest(ctx, key)
	if err != nil {
		return nil, err
	}

	body, info, err := m.store.Download(ctx, key)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory for %s: %w", dest, err)
	}
	tmpPath := dest + ".tmp"
	out, err := os.Create(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", tmpPath, err)
	}
	defer os.Remove(tmpPath)

	h := newDigest()
	tee := io.TeeReader(body, h)

	xr, err := xz.NewReader(tee)
	if err != nil {
		out.Close()
		return nil, fmt.Errorf("failed to create xz reader: %w", err)
	}
	if _, err := io.Copy(out, xr); err != nil {
		out.Close()
		return nil, fmt.Errorf("failed to decompress snapshot: %w", err)
	}
	// Hash any trailing bytes the decoder did not consume
	if _, err := io.Copy(io.Discard, tee); err != nil {
		out.Close()
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	if err := out.Close(); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", tmpPath, err)
	}

	got := hex.EncodeToString(h.Sum(nil))
	if got != want {
		return nil, errors.ErrBackupChecksum.WithMessagef("snapshot %s has digest %s, expected %s", key, got, want)
	}

	if err := os.Rename(tmpPath, dest); err != nil {
		return nil, fmt.Errorf("failed to move restored database into place: %w", err)
	}

	if m.logger != nil {
		m.logger.Info("Backup restored", "key", key, "dest", dest)
	}

	return &Backup{Key: key, Size: info.Size, Digest: got, CreatedAt: createdAt(*info)}, nil
}

// readDigest fetches and parses the .b2sum file stored next to key
func (m *Manager) readDigest(ctx context.Context, key string) (string, error) {
	rc, _, err := m.store.Download(ctx, key+digestSuffix)
	if err != nil {
		return "", err
	}
	defer rc.Close()

	line, err := io.ReadAll(io.LimitReader(rc, 1024))
	if err != nil {
		return "", fmt.Errorf("failed to read digest of %s: %w", key, err)
	}

	fields := strings.Fields(string(line))
	if len(fields) == 0 {
		return "", errors.ErrBackupChecksum.WithMessagef("digest file for %s is empty", key)
	}
	return strings.ToLower(fields[0]), nil
}

// Prune deletes all but the newest keep snapshots and their digests.
// It returns the deleted snapshot keys.
func (m *Manager) Prune(ctx context.Context, keep int) ([]string, error) {
	if keep < 0 {
		keep = 0
	}

	backups, err := m.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(backups) <= keep {
		return nil, nil
	}

	deleted := make([]string, 0, len(backups)-keep)
	for _, b := range backups[keep:] {
		if err := m.store.Delete(ctx, b.Key); err != nil {
			return deleted, err
		}
		if err := m.store.Delete(ctx, b.Key+digestSuffix); err != nil {
			return deleted, err
		}
		deleted = append(deleted, b.Key)
	}

	if m.logger != nil {
		m.logger.Info("Pruned backups", "deleted", len(deleted), "kept", keep)
	}
	return deleted, nil
}
