package daylock

import (
	"context"
	"time"
)

type DayLockRepository interface {
	// Get returns ErrLockNotFound when the pair is unlocked.
	Get(ctx context.Context, date time.Time, environment string) (DayLock, error)
	// Create inserts the lock; an existing lock for the pair is returned unchanged.
	Create(ctx context.Context, lock DayLock) (DayLock, error)
}
