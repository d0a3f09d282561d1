package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrAlreadyExists      = errors.New("entity already exists")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrInvalidExecContext = errors.New("invalid execution context")
	ErrLockBusy           = errors.New("resource is locked")

	// Tenant registry
	ErrAlreadyRegistered = errors.New("bot is already controlled")
	ErrInvalidCredential = errors.New("bot token was rejected by telegram")

	// Outbound delivery (ok=false or transport failure)
	ErrDeliveryFailed = errors.New("telegram delivery failed")

	// A button points at a menu/action that no longer exists.
	ErrBrokenReference = errors.New("button references a missing menu or action")
)
