package domain

import "errors"

// ErrInvalidInput is returned when a value expected to be text is not text,
// or a value expected to be a concordance is not shaped like one.
var ErrInvalidInput = errors.New("invalid input")
