package generator

import "errors"

var (
	// ErrConfig marks invalid input detected before any filesystem mutation.
	ErrConfig = errors.New("configuration error")

	// ErrFilesystem marks a copy, rename, substitution or swap failure.
	ErrFilesystem = errors.New("filesystem error")
)
