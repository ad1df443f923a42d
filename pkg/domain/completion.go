package domain

import "fmt"

// ErrorMarker prefixes every reply produced from a failed backend call.
const ErrorMarker = "❌"

type BackendErrorKind string

const (
	BackendTransportError BackendErrorKind = "transport"
	BackendProtocolError  BackendErrorKind = "protocol"
	BackendLogicError     BackendErrorKind = "logic"
)

type BackendError struct {
	Kind BackendErrorKind
	Err  error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// Completion is the outcome of one backend call. Exactly one of Text and Err
// is meaningful.
type Completion struct {
	Text string
	Err  *BackendError
}

func (c Completion) OK() bool {
	return c.Err == nil
}

func CompletionFailed(kind BackendErrorKind, err error) Completion {
	return Completion{Err: &BackendError{Kind: kind, Err: err}}
}
