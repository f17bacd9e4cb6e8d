package models

import "fmt"

// DataValidationError signals malformed external input: a request body
// that is not a mapping, a missing required field, a wrongly typed
// field, or an unknown category name. It is the only error kind the
// deserialization path produces, so callers can map it to a 400 with a
// single errors.As check.
type DataValidationError struct {
	Message string
}

// NewDataValidationError builds a DataValidationError from a format
// string, fmt.Errorf style.
func NewDataValidationError(format string, args ...interface{}) *DataValidationError {
	return &DataValidationError{Message: fmt.Sprintf(format, args...)}
}

func (e *DataValidationError) Error() string {
	return "invalid product: " + e.Message
}
