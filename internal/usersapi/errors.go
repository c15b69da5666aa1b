package usersapi

import "fmt"

// TransportError is returned when a request to the record service could not
// complete: connection failures, timeouts, cancelled contexts.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// RemoteStatusError describes a response with an unexpected HTTP status.
// Body holds at most the first 200 characters of the response.
type RemoteStatusError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *RemoteStatusError) Error() string {
	return fmt.Sprintf("%s %s -> %d | %s", e.Method, e.URL, e.StatusCode, e.Body)
}
