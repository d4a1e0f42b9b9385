package blobstore

import (
	"context"
	"fmt"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"

	kerrors "github.com/PolarWolf314/docuvault/internal/errors"
)

// Store is a content store for opaque bytes.
type Store interface {
	// Upload stores data and returns its identifier.
	Upload(ctx context.Context, data []byte) (string, error)

	// Download returns the bytes stored under id, or ErrNotFound.
	Download(ctx context.Context, id string) ([]byte, error)

	Close() error
}

// ContentID returns the CIDv1 of data using the raw codec and sha2-256.
func ContentID(data []byte) (string, error) {
	mh, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		return "", fmt.Errorf("failed to hash content: %w", err)
	}
	return cid.NewCidV1(cid.Raw, mh).String(), nil
}

// parseID validates id as a CID.
func parseID(id string) (cid.Cid, error) {
	c, err := cid.Decode(id)
	if err != nil {
		return cid.Undef, fmt.Errorf("invalid blob id %q: %w", id, kerrors.ErrNotFound)
	}
	return c, nil
}
