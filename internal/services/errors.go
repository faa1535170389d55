package services

import "errors"

var (
	ErrIdentityRequired = errors.New("an authenticated identity is required")
	ErrFetchFailed      = errors.New("failed to load data")
	ErrUserNotFound     = errors.New("user not found")
)
