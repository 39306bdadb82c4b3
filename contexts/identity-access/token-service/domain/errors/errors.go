package errors

import "errors"

var (
	ErrMissingCredential   = errors.New("no authorization credential was found")
	ErrInvalidCredential   = errors.New("invalid or expired credential")
	ErrMalformedAuthHeader = errors.New("invalid authorization header format, expected Authorization: Bearer [token]")
)
