package usecase

import "errors"

var (
	// ErrStoreRequired is returned when no index store is provided.
	ErrStoreRequired = errors.New("index store required")

	// ErrWalkerRequired is returned when no file walker is provided.
	ErrWalkerRequired = errors.New("file walker required")

	// ErrReaderRequired is returned when no file reader is provided.
	ErrReaderRequired = errors.New("file reader required")
)

// ErrNoIndex is returned when a command needs an index that was never built.
var ErrNoIndex = errors.New("no index found")
