package domain

import "errors"

var (
	// ErrNoCredentials is returned when the credential pool is empty.
	// Terminal and non-retryable: the operator must configure at least one key.
	ErrNoCredentials = errors.New(
		"no API keys configured: add at least one key to the key list or set a default key",
	)

	// ErrDraftNotFound is returned when a draft doesn't exist
	ErrDraftNotFound = errors.New("draft not found")
)
