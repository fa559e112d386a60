package export

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// LockFileName guards an export directory for the length of a batch.
const LockFileName = ".reelsmith.lock"

const lockRetryDelay = 500 * time.Millisecond

// lockExportDir blocks until the export directory lock is held or ctx ends.
func lockExportDir(ctx context.Context, dir string) (*flock.Flock, error) {
	lock := flock.New(filepath.Join(dir, LockFileName))
	ok, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("acquire export lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("export directory %s is locked by another batch", dir)
	}
	return lock, nil
}
