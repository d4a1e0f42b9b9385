package blobstore

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dgraph-io/badger/v4"
	chunker "github.com/ipfs/boxo/chunker"
	"github.com/shirou/gopsutil/disk"
	"github.com/sirupsen/logrus"

	kerrors "github.com/PolarWolf314/docuvault/internal/errors"
)

const (
	chunkPrefix = "chunk/"
	blobPrefix  = "blob/"
)

// Config configures a BadgerStore.
type Config struct {
	// Path is the database directory. Ignored when InMemory is set.
	Path string

	// InMemory keeps everything in memory, for tests.
	InMemory bool

	// MinimumFreeSpace is the free disk space, in GB, required at open.
	MinimumFreeSpace int

	Logger *logrus.Logger
}

// BadgerStore is a Store backed by a badger database. Blobs are split
// with a buzhash chunker; identical chunks are stored once.
type BadgerStore struct {
	db  *badger.DB
	log *logrus.Logger
}

// OpenBadger opens or creates the store described by cfg.
func OpenBadger(cfg Config) (*BadgerStore, error) {
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
		cfg.Logger.SetLevel(logrus.WarnLevel)
	}

	opts := badger.DefaultOptions("").WithInMemory(true)
	if !cfg.InMemory {
		if cfg.Path == "" {
			return nil, fmt.Errorf("%w: no blob store path configured", kerrors.ErrStorage)
		}
		// #nosec G301 -- only ciphertext is written here.
		if err := os.MkdirAll(cfg.Path, 0755); err != nil {
			return nil, fmt.Errorf("%w: failed to create %s: %v", kerrors.ErrStorage, cfg.Path, err)
		}
		if err := checkFreeSpace(cfg); err != nil {
			return nil, err
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithLogger(cfg.Logger)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open badger: %v", kerrors.ErrStorage, err)
	}

	return &BadgerStore{db: db, log: cfg.Logger}, nil
}

func checkFreeSpace(cfg Config) error {
	usage, err := disk.Usage(cfg.Path)
	if err != nil {
		cfg.Logger.WithField("path", cfg.Path).Warnf("Error retrieving disk usage stats: %v", err)
		return nil
	}

	freeGB := float64(usage.Free) / 1e9
	cfg.Logger.WithFields(logrus.Fields{
		"path":     cfg.Path,
		"total_gb": fmt.Sprintf("%.2f", float64(usage.Total)/1e9),
		"free_gb":  fmt.Sprintf("%.2f", freeGB),
		"used_pct": fmt.Sprintf("%.1f", usage.UsedPercent),
		"min_free": cfg.MinimumFreeSpace,
	}).Debug("Disk usage")

	if cfg.MinimumFreeSpace > 0 && freeGB < float64(cfg.MinimumFreeSpace) {
		return fmt.Errorf("%w: %.2f GB free at %s, need %d GB", kerrors.ErrStorage, freeGB, cfg.Path, cfg.MinimumFreeSpace)
	}
	return nil
}

type chunk struct {
	hash [sha256.Size]byte
	data []byte
}

func chunkBytes(data []byte) ([]chunk, error) {
	bz := chunker.NewBuzhash(bytes.NewReader(data))

	var chunks []chunk
	for {
		b, err := bz.NextBytes()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading chunk: %w", err)
		}
		chunks = append(chunks, chunk{hash: sha256.Sum256(b), data: b})
	}
	return chunks, nil
}

func chunkKey(hash []byte) []byte {
	return []byte(chunkPrefix + hex.EncodeToString(hash))
}

func blobKey(id string) []byte {
	return []byte(blobPrefix + id)
}

func (s *BadgerStore) Upload(ctx context.Context, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("upload cancelled: %w", err)
	}

	id, err := ContentID(data)
	if err != nil {
		return "", fmt.Errorf("%w: %v", kerrors.ErrStorage, err)
	}

	chunks, err := chunkBytes(data)
	if err != nil {
		return "", fmt.Errorf("%w: %v", kerrors.ErrStorage, err)
	}

	existing, err := s.existingChunks(chunks)
	if err != nil {
		return "", fmt.Errorf("%w: %v", kerrors.ErrStorage, err)
	}

	manifest := make([]byte, 0, len(chunks)*sha256.Size)
	wb := s.db.NewWriteBatch()
	defer wb.Cancel()

	written := 0
	for _, c := range chunks {
		manifest = append(manifest, c.hash[:]...)
		key := chunkKey(c.hash[:])
		if existing[string(key)] {
			continue
		}
		existing[string(key)] = true
		if err := wb.Set(key, c.data); err != nil {
			return "", fmt.Errorf("%w: writing chunk: %v", kerrors.ErrStorage, err)
		}
		written++
	}
	if err := wb.Set(blobKey(id), manifest); err != nil {
		return "", fmt.Errorf("%w: writing manifest: %v", kerrors.ErrStorage, err)
	}
	if err := wb.Flush(); err != nil {
		return "", fmt.Errorf("%w: %v", kerrors.ErrStorage, err)
	}

	s.log.WithFields(logrus.Fields{
		"id":      id,
		"size":    len(data),
		"chunks":  len(chunks),
		"written": written,
	}).Debug("Stored blob")

	return id, nil
}

func (s *BadgerStore) existingChunks(chunks []chunk) (map[string]bool, error) {
	exists := make(map[string]bool, len(chunks))
	err := s.db.View(func(txn *badger.Txn) error {
		for _, c := range chunks {
			key := chunkKey(c.hash[:])
			_, err := txn.Get(key)
			switch {
			case err == nil:
				exists[string(key)] = true
			case errors.Is(err, badger.ErrKeyNotFound):
			default:
				return err
			}
		}
		return nil
	})
	return exists, err
}

func (s *BadgerStore) Download(ctx context.Context, id string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("download cancelled: %w", err)
	}
	if _, err := parseID(id); err != nil {
		return nil, err
	}

	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(blobKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("blob %s: %w", id, kerrors.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("%w: %v", kerrors.ErrStorage, err)
		}
		manifest, err := item.ValueCopy(nil)
		if err != nil {
			return fmt.Errorf("%w: %v", kerrors.ErrStorage, err)
		}
		if len(manifest)%sha256.Size != 0 {
			return fmt.Errorf("%w: corrupt manifest for %s", kerrors.ErrIntegrity, id)
		}

		data = make([]byte, 0)
		for off := 0; off < len(manifest); off += sha256.Size {
			ci, err := txn.Get(chunkKey(manifest[off : off+sha256.Size]))
			if err != nil {
				return fmt.Errorf("%w: missing chunk for %s: %v", kerrors.ErrStorage, id, err)
			}
			err = ci.Value(func(v []byte) error {
				data = append(data, v...)
				return nil
			})
			if err != nil {
				return fmt.Errorf("%w: %v", kerrors.ErrStorage, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	got, err := ContentID(data)
	if err != nil || got != id {
		s.log.WithField("id", id).Error("Blob content does not match its identifier")
		return nil, fmt.Errorf("%w: content of %s does not match its identifier", kerrors.ErrIntegrity, id)
	}
	return data, nil
}

func (s *BadgerStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("%w: %v", kerrors.ErrStorage, err)
	}
	return nil
}
