package pipeline

import "errors"

// ErrEmptyText is returned when there is no text to analyze.
var ErrEmptyText = errors.New("resume text is empty")

// TagError wraps a tag precondition failure.
type TagError struct {
	DocID string
	Cause error
}

func (e *TagError) Error() string {
	return "generate tags for " + e.DocID + ": " + e.Cause.Error()
}

func (e *TagError) Unwrap() error {
	return e.Cause
}
