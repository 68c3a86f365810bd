package application

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrProfileNotFound    = errors.New("profile not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInactiveUser       = errors.New("account is disabled")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrUnavailable        = errors.New("service unavailable")
)
