package application

import "errors"

// Auth error kinds. Missing user and wrong password share ErrInvalidCredentials;
// bad signature and expiry share ErrInvalidToken.
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrDuplicateUser      = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenMissing       = errors.New("token missing")
	ErrInvalidToken       = errors.New("invalid token")
	ErrHashFailed         = errors.New("password hashing failed")
	ErrStoreUnavailable   = errors.New("store unavailable")
)

// Catalog error kinds.
var (
	ErrDocumentNotFound = errors.New("document not found")
	ErrInvalidDocument  = errors.New("invalid document")
	ErrFeatureDisabled  = errors.New("feature disabled")
)
