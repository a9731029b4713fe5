package classify

import "errors"

// Common errors returned by classifiers.
var (
	// ErrClassificationFailed is returned when classification fails for any
	// general reason.
	ErrClassificationFailed = errors.New("failed to classify memo")

	// ErrInvalidResponse is returned when the model response cannot be
	// parsed or is structurally malformed.
	ErrInvalidResponse = errors.New("invalid response from language model")

	// ErrContentBlocked is returned when the model blocks the content due
	// to safety filters.
	ErrContentBlocked = errors.New("content blocked by language model safety filters")

	// ErrTransientFailure is returned for temporary errors that might
	// resolve on retry.
	ErrTransientFailure = errors.New("transient error during classification")

	// ErrInvalidConfig is returned when a classifier configuration is invalid.
	ErrInvalidConfig = errors.New("invalid classifier configuration")
)
