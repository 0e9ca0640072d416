package sandbox

import "time"

// ErrorKind classifies why an execution did not succeed.
type ErrorKind string

const (
	KindValidationRejected ErrorKind = "validation_rejected"
	KindTimeout            ErrorKind = "timeout"
	KindRuntimeError       ErrorKind = "runtime_error"
	KindInfrastructure     ErrorKind = "infrastructure_error"
)

// TimeoutDetail is the Failure detail reported when the wall clock limit hits.
const TimeoutDetail = "execution timed out"

// TruncationMarker is appended to successful output that hit the size cap.
const TruncationMarker = "[output truncated]"

// Failure describes an unsuccessful execution.
type Failure struct {
	Reason ErrorKind
	Detail string
}

func (f *Failure) Error() string {
	return string(f.Reason) + ": " + f.Detail
}

// Result is the outcome of one execution. Failure is nil on success.
type Result struct {
	Output    string
	Failure   *Failure
	ExitCode  int
	Duration  time.Duration
	Truncated bool
}

// OK reports whether the execution succeeded.
func (r Result) OK() bool {
	return r.Failure == nil
}

// Outcome returns the metric label for r.
func (r Result) Outcome() string {
	if r.Failure == nil {
		return "success"
	}
	return string(r.Failure.Reason)
}

// Fail builds a failed Result.
func Fail(kind ErrorKind, detail string) Result {
	return Result{Failure: &Failure{Reason: kind, Detail: detail}, ExitCode: -1}
}
