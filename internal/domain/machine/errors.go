package machine

import "errors"

var (
	ErrMachineNotFound = errors.New("machine not found")
	ErrMachineInactive = errors.New("machine is not active")
	ErrCycleDisabled   = errors.New("shift cycle is not enabled for this machine")
	ErrNoCycleStart    = errors.New("machine has no cycle start date")
)
