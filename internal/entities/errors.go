package entities

import "fmt"

// BackendError is returned by a tagger that could not produce spans.
type BackendError struct {
	Backend string
	Message string
	Cause   error
}

func (e *BackendError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Backend, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Backend, e.Message)
}

func (e *BackendError) Unwrap() error {
	return e.Cause
}
