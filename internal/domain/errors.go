package domain

import "errors"

// ErrNotFound matches any *NotFoundError via errors.Is.
var ErrNotFound = &NotFoundError{}

// NotFoundError reports an unknown food item or nutrient URI.
type NotFoundError struct {
	Resource string
	Key      string
}

func NewNotFoundError(resource, key string) *NotFoundError {
	return &NotFoundError{Resource: resource, Key: key}
}

func (e *NotFoundError) Error() string {
	switch {
	case e.Resource != "" && e.Key != "":
		return e.Resource + " not found: " + e.Key
	case e.Resource != "":
		return e.Resource + " not found"
	default:
		return "resource not found"
	}
}

func (e *NotFoundError) Is(target error) bool {
	_, ok := target.(*NotFoundError)
	return ok
}

// ErrInvalidArgument matches any *InvalidArgumentError via errors.Is.
var ErrInvalidArgument = &InvalidArgumentError{}

// InvalidArgumentError reports bad caller input such as an empty query.
type InvalidArgumentError struct {
	Field   string
	Message string
}

func NewInvalidArgumentError(field, message string) *InvalidArgumentError {
	return &InvalidArgumentError{Field: field, Message: message}
}

func (e *InvalidArgumentError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Field != "" {
		return "invalid argument: " + e.Field
	}
	return "invalid argument"
}

func (e *InvalidArgumentError) Is(target error) bool {
	_, ok := target.(*InvalidArgumentError)
	return ok
}

// ErrModelUnavailable is returned when the embedding backend cannot be loaded
// or fails to encode. It aborts engine initialization.
var ErrModelUnavailable = errors.New("embedding model unavailable")
