package remote

import "fmt"

// TransportError means the request never reached the server or its answer was unusable:
// network failure, timeout, non-2xx status or a malformed body.
type TransportError struct {
	Method     string
	URL        string
	StatusCode int // 0 when no response arrived
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("transport error: %s %s: HTTP %d: %v", e.Method, e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("transport error: %s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// RejectedError means the server answered and explicitly refused the request.
// Message is the server's text, unmodified.
type RejectedError struct {
	Message string
}

func (e *RejectedError) Error() string {
	return e.Message
}
