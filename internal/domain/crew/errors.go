package crew

import "errors"

var (
	ErrCrewNotFound     = errors.New("crew not found")
	ErrCrewLetterExists = errors.New("machine already has a crew with this letter")
	ErrInvalidMembers   = errors.New("invalid crew member list")
	ErrCrewTooLarge     = errors.New("crew exceeds the machine crew size")
	ErrDateBeforeCycle  = errors.New("target date is before the cycle start date")
	ErrInvalidOffset    = errors.New("cycle offset must be one of 0, 2, 4")
)
