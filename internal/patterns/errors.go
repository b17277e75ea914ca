package patterns

import "fmt"

// LoadError is returned when a pattern table cannot be validated or compiled.
type LoadError struct {
	Message string
	Cause   error
}

func (e *LoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("pattern table error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("pattern table error: %s", e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}
