package model

import "fmt"

// InternalError marks a consistency failure inside the engine itself, as
// opposed to a user configuration problem. User problems are reported as
// diagnostics and never as errors; an InternalError surfacing to the user
// indicates a bug in graft.
type InternalError struct {
	Msg string
}

// Error implements the error interface.
func (e *InternalError) Error() string { return "graft internal: " + e.Msg }

// Internalf constructs an InternalError with a formatted message.
func Internalf(format string, args ...any) error {
	return &InternalError{Msg: fmt.Sprintf(format, args...)}
}
