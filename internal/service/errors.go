package service

import "errors"

var (
	ErrServiceNotConfigured = errors.New("service not configured")
	ErrInvalidIdentity      = errors.New("invalid identity")
	// ErrPersistence envuelve fallas del store. Es recuperable: el llamador puede reintentar.
	ErrPersistence     = errors.New("persistence unavailable")
	ErrNotComplete     = errors.New("survey not complete")
	ErrProfileNotFound = errors.New("profile not found")
)
