package benchmark

import (
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Outcome is the result of one task: either a Value or an Err, never both.
type Outcome struct {
	Operation string
	Value     any
	Err       error
	Elapsed   time.Duration
}

// Failed reports whether the task failed.
func (o Outcome) Failed() bool {
	return o.Err != nil
}

// ErrorString returns the failure description, or "" for a successful task.
func (o Outcome) ErrorString() string {
	if o.Err == nil {
		return ""
	}

	return o.Err.Error()
}

type outcomeJSON struct {
	Operation string  `json:"operation"`
	Result    any     `json:"result,omitempty"`
	Error     string  `json:"error,omitempty"`
	ElapsedMS float64 `json:"elapsed_ms"`
}

// MarshalJSON renders a failure as its error string in place of the result.
func (o Outcome) MarshalJSON() ([]byte, error) {
	return json.Marshal(outcomeJSON{
		Operation: o.Operation,
		Result:    o.Value,
		Error:     o.ErrorString(),
		ElapsedMS: toMilliseconds(o.Elapsed),
	})
}

// TaskFailure wraps the error or recovered panic of a failed task.
type TaskFailure struct {
	Operation string
	Cause     error
}

func (f *TaskFailure) Error() string {
	return fmt.Sprintf("%s failed: %v", f.Operation, f.Cause)
}

func (f *TaskFailure) Unwrap() error {
	return f.Cause
}
