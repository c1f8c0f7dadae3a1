package types

import "errors"

// Repository and connection errors.
var (
	ErrNotFound       = errors.New("entity not found")
	ErrNotInitialized = errors.New("database not initialized")
	ErrConstraint     = errors.New("constraint violation")
	ErrInvalidData    = errors.New("invalid entity data")
	ErrValidation     = errors.New("validation failed")
)

// Attachment storage errors.
var (
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file too large")
)
