package store

import "errors"

var (
	// ErrRecordNotFound wraps GORM's not found error for consistency
	ErrRecordNotFound = errors.New("record not found")

	// ErrUserIDRequired is returned when a connection is written without an owner
	ErrUserIDRequired = errors.New("user id is required")
)
