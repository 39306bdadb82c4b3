package errors

import "errors"

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrRoleNotFound     = errors.New("role not found")
	ErrPassportNotFound = errors.New("passport not found")
	ErrNoLocalPassport  = errors.New("no local passport linked with this identifier")

	ErrMissingIdentifier = errors.New("please provide your username or your e-mail")
	ErrMissingPassword   = errors.New("please provide your password")
	ErrPasswordTooShort  = errors.New("password too short, minimum 8 characters")
	ErrPasswordMismatch  = errors.New("passwords do not match")
	ErrInvalidLogin      = errors.New("identifier or password invalid")
	ErrInvalidResetCode  = errors.New("reset code is invalid or already used")

	ErrDuplicateIdentity = errors.New("email or username already taken")

	ErrProviderUnknown   = errors.New("unknown provider")
	ErrMissingProviderID = errors.New("provider identifier is required")
	ErrProfileUnusable   = errors.New("neither a username nor email was available")
	ErrEmailRequired     = errors.New("provider profile did not include an email")
)
