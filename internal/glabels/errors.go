package glabels

import (
	"fmt"
	"time"
)

// TimeoutError is returned when a glabels invocation exceeds its deadline.
// The underlying process has been killed and reaped by the time this error
// is returned.
type TimeoutError struct {
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("glabels execution timed out after %s", e.Timeout)
}

// ExecutionError is returned when glabels exits non-zero, or exits zero but
// never produces the output file. Stderr carries the full captured diagnostic
// output; callers that store it are responsible for truncating.
type ExecutionError struct {
	ExitCode int
	Stderr   string
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("glabels execution failed (rc=%d)", e.ExitCode)
}
