package source

import (
	"errors"
	"fmt"
)

// ErrNotFound is matched by every *NotFoundError via errors.Is.
var ErrNotFound = errors.New("issue not found")

// NetworkError indicates the request never produced an HTTP response.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network error: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ServerError is a non-2xx response that is neither 404 nor a validation
// rejection, or a 2xx response whose body could not be decoded.
type ServerError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *ServerError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: server returned status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: server returned status %d: %s", e.Op, e.StatusCode, e.Body)
}

// NotFoundError is a 404 for a specific issue.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return ErrNotFound.Error()
	}
	return fmt.Sprintf("issue %s not found", e.ID)
}

// Is makes errors.Is(err, ErrNotFound) succeed.
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// ValidationError is a request body rejected by the server.
type ValidationError struct {
	Op      string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: rejected by server: %s", e.Op, e.Message)
}

// UserMessage returns a short message suitable for a status line.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var (
		netErr *NetworkError
		srvErr *ServerError
		valErr *ValidationError
	)
	switch {
	case errors.Is(err, ErrNotFound):
		return "Issue not found"
	case errors.As(err, &netErr):
		return "Cannot reach the issue server"
	case errors.As(err, &valErr):
		return "Rejected: " + valErr.Message
	case errors.As(err, &srvErr):
		return fmt.Sprintf("Server error (%d)", srvErr.StatusCode)
	default:
		return err.Error()
	}
}
