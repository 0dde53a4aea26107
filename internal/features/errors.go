package features

import "fmt"

// MalformedInputError reports entity data that breaks a computation, such as a missing start date
type MalformedInputError struct {
	Field   string
	Message string
	Cause   error
}

func (e *MalformedInputError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("malformed input in %s: %s: %v", e.Field, e.Message, e.Cause)
	}
	return fmt.Sprintf("malformed input in %s: %s", e.Field, e.Message)
}

func (e *MalformedInputError) Unwrap() error {
	return e.Cause
}
