package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrAlreadyExists      = errors.New("entity already exists")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrInvalidExecContext = errors.New("invalid execution context")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
	ErrOperationFailed    = errors.New("operation failed")

	// Routing / queue errors
	ErrNoHandler      = errors.New("no handler registered for content type")
	ErrUnknownJobType = errors.New("unknown job type")
	ErrNoSender       = errors.New("no sender registered for platform")
	ErrJobNotFailed   = errors.New("job is not in a failed state")
)
