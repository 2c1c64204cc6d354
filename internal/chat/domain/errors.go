package domain

import "errors"

var (
	// ErrInvalidArgument request failed validation
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrUserNotFound no user document for the id
	ErrUserNotFound = errors.New("user not found")
	// ErrBackendDisabled firebase credentials are missing, nothing was read
	ErrBackendDisabled = errors.New("backend not configured")
)
