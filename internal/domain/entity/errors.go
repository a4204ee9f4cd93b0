package entity

import "errors"

// Standard domain errors
var (
	ErrProviderRateLimited = errors.New("ai provider rate limited the request")
	ErrProviderAuth        = errors.New("ai provider rejected the credentials")
	ErrProviderFailed      = errors.New("ai provider request failed")
	ErrInvalidRequest      = errors.New("invalid request parameters")
	ErrResourceNotFound    = errors.New("the requested resource was not found")
	ErrFeatureDisabled     = errors.New("the requested feature is not configured")
)
