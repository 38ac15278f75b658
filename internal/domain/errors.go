package domain

import "errors"

var (
	// ErrUnknownService is returned when a lookup or binding names a service
	// that is not registered.
	ErrUnknownService = errors.New("unknown geocoding service")

	// ErrUnsupportedOperation is returned when a registered service has no
	// template for the requested operation.
	ErrUnsupportedOperation = errors.New("unsupported geocoding operation")

	// ErrInvalidService is returned when a service configuration is rejected
	// at registration time.
	ErrInvalidService = errors.New("invalid service configuration")

	// ErrInvalidTemplate is returned for URL templates with unknown placeholders.
	ErrInvalidTemplate = errors.New("invalid url template")
)
