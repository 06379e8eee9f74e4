package daylock

import "errors"

var (
	ErrDayLocked      = errors.New("roster for this date and environment is locked")
	ErrNothingToLock  = errors.New("cannot lock a day without assignments")
	ErrLockNotFound   = errors.New("day lock not found")
	ErrLockPermission = errors.New("locking a day requires supervisor or admin role")
)
