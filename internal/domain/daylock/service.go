package daylock

import (
	"context"
	"time"

	"github.com/cmlabs-hris/labor-roster-go/internal/domain/user"
)

// DayLockService gates every mutating roster operation on lock state.
type DayLockService interface {
	Lock(ctx context.Context, req LockDayRequest) (DayLockResponse, error)
	Status(ctx context.Context, date time.Time, environment string) (Status, error)
	IsLocked(ctx context.Context, date time.Time, environment string) (bool, error)
	CheckWritable(ctx context.Context, date time.Time, environment string, actor user.Actor) error
}
