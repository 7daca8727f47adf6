package processor

import "fmt"

// InputError means the media file is missing or not a supported format.
// The job aborts before any work starts.
type InputError struct {
	Path   string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("input %s: %s", e.Path, e.Reason)
}

// EnvironmentError means a required external tool is unavailable.
// The job aborts before any work starts.
type EnvironmentError struct {
	Tool string
	Err  error
}

func (e *EnvironmentError) Error() string {
	return fmt.Sprintf("%s unavailable: %v", e.Tool, e.Err)
}

func (e *EnvironmentError) Unwrap() error { return e.Err }
