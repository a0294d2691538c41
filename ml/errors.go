package ml

import "errors"

// Input errors. Anything wrapping one of these is the caller's fault.
var (
	ErrMissingField    = errors.New("missing required field")
	ErrUnexpectedField = errors.New("unexpected field")
	ErrInvalidValue    = errors.New("invalid value")
	ErrUnknownCategory = errors.New("unknown category")
)

// Bundle errors.
var (
	ErrModelNotFound     = errors.New("model bundle not found")
	ErrInvalidBundle     = errors.New("invalid model bundle")
	ErrMissingDependency = errors.New("missing model dependency")
	ErrUnsupportedModel  = errors.New("unsupported model type")
	ErrModelNotLoaded    = errors.New("model not loaded")
)

// IsInputError reports whether err was caused by the listing record rather than the model.
func IsInputError(err error) bool {
	return errors.Is(err, ErrMissingField) ||
		errors.Is(err, ErrUnexpectedField) ||
		errors.Is(err, ErrInvalidValue) ||
		errors.Is(err, ErrUnknownCategory)
}
