package discord

import (
	"errors"
	"fmt"
)

var (
	// ErrCodeRequired is returned when Exchange is called without a code
	ErrCodeRequired = errors.New("authorization code is required")
	// ErrAccessTokenRequired is returned when Guilds is called without a token
	ErrAccessTokenRequired = errors.New("access token is required")
)

// APIError is returned when Discord answers with a non-2xx status.
// Body holds the raw response body for logging.
type APIError struct {
	Operation string
	Status    int
	Body      string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Request failed with status code %d", e.Status)
}
