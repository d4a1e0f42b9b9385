package blobstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	kerrors "github.com/PolarWolf314/docuvault/internal/errors"
)

// permanent errors are returned without retrying.
var permanent = []error{
	kerrors.ErrNotFound,
	kerrors.ErrIntegrity,
	kerrors.ErrAuthentication,
	kerrors.ErrUnwrap,
	kerrors.ErrInvalidKey,
	kerrors.ErrEntropySource,
}

func isPermanent(err error) bool {
	for _, p := range permanent {
		if errors.Is(err, p) {
			return true
		}
	}
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// Retry calls fn up to attempts times, doubling the wait after each
// failure starting at backoff. Not-found, integrity and cryptographic
// errors are returned immediately.
func Retry(ctx context.Context, attempts int, backoff time.Duration, fn func(context.Context) error) error {
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(ctx); err == nil || isPermanent(err) {
			return err
		}
		if i == attempts-1 {
			break
		}

		t := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			t.Stop()
			return fmt.Errorf("retry cancelled after %d attempts: %w", i+1, ctx.Err())
		case <-t.C:
		}
		backoff *= 2
	}
	return fmt.Errorf("giving up after %d attempts: %w", attempts, err)
}
