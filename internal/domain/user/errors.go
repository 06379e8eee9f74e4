package user

import "errors"

var (
	ErrInsufficientPermissions = errors.New("insufficient permissions")
	ErrActorRequired           = errors.New("authenticated actor is required")
	ErrInvalidToken            = errors.New("invalid or missing access token")
)
