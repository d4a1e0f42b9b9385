package blobstore

import (
	"context"
	"fmt"
	"sync"

	kerrors "github.com/PolarWolf314/docuvault/internal/errors"
)

// MemoryStore is an in-process Store backed by a map.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
	newID func([]byte) (string, error)
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithIDFunc replaces ContentID as the identifier generator.
func WithIDFunc(f func([]byte) (string, error)) MemoryOption {
	return func(m *MemoryStore) { m.newID = f }
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	m := &MemoryStore{
		blobs: make(map[string][]byte),
		newID: ContentID,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *MemoryStore) Upload(ctx context.Context, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("upload cancelled: %w", err)
	}

	id, err := m.newID(data)
	if err != nil {
		return "", fmt.Errorf("%w: %v", kerrors.ErrStorage, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[id] = append([]byte(nil), data...)
	return id, nil
}

func (m *MemoryStore) Download(ctx context.Context, id string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("download cancelled: %w", err)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.blobs[id]
	if !ok {
		return nil, fmt.Errorf("blob %s: %w", id, kerrors.ErrNotFound)
	}
	return append([]byte(nil), data...), nil
}

func (m *MemoryStore) Close() error {
	return nil
}
