package ledger

import (
	"context"
	"errors"
	"time"
)

// ErrLockHeld is returned by Locker.Obtain when another caller holds the key
var ErrLockHeld = errors.New("lock held by another caller")

// Locker serializes work on a key across service replicas. The returned
// release func must be called once the work is done.
type Locker interface {
	Obtain(ctx context.Context, key string, ttl time.Duration) (release func(), err error)
}
