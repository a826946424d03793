package auth

import "errors"

var (
	ErrTokenRequired   = errors.New("token required")
	ErrInvalidToken    = errors.New("invalid token")
	ErrTokenExpired    = errors.New("token expired")
	ErrRefreshNotFound = errors.New("refresh token not found")
	ErrRefreshMismatch = errors.New("refresh token mismatch")
	ErrUserNotFound    = errors.New("user not found")
	ErrEmailTaken      = errors.New("email already registered")
)
