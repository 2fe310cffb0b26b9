package execution

import "fmt"

// StepFailure reports that a step-runner failed. It halts the plan and is
// surfaced through Result.Err together with the accumulated log; it is an
// expected outcome, not a programming error.
type StepFailure struct {
	StepID      string
	Kind        string
	Description string
	Reason      string
	Underlying  error
}

// Error returns the formatted error message.
func (e *StepFailure) Error() string {
	return fmt.Sprintf("step %q (%s) failed: %s", e.Description, e.Kind, e.Reason)
}

// Unwrap returns the underlying error for error chain support.
func (e *StepFailure) Unwrap() error {
	return e.Underlying
}

// InfraError reports that the persistence layer failed while finalizing an
// execution. It propagates as a hard failure: silently losing the record
// would make task status unreliable.
type InfraError struct {
	Op         string
	Underlying error
}

// Error returns the formatted error message.
func (e *InfraError) Error() string {
	return fmt.Sprintf("execution infrastructure failure during %s: %v", e.Op, e.Underlying)
}

// Unwrap returns the underlying error for error chain support.
func (e *InfraError) Unwrap() error {
	return e.Underlying
}
