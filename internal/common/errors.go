// Package common defines shared constants and sentinel errors used across
// the server, the transport adapters and the CLI client. Callers should use
// errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound     = errors.New("not found")
	ErrorDuplicateKey = errors.New("duplicate key")

	// Service-level errors.
	ErrorValidation         = errors.New("validation error")
	ErrorDuplicateUser      = errors.New("user already exists")
	ErrorInvalidCredentials = errors.New("invalid credentials")
	ErrorPersistence        = errors.New("persistence error")
	ErrorHashing            = errors.New("hashing error")
	ErrorInternal           = errors.New("internal error")

	// Access errors. ErrorUnauthorized is the collapsed outcome; the
	// specific cause stays in the chain for logging.
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorMissingToken = errors.New("missing token")
	ErrInvalidToken   = errors.New("invalid token")
	ErrTokenExpired   = errors.New("token expired")
)
