package contacts

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error kinds. Every error returned by Client matches exactly one of these
// through errors.Is.
var (
	ErrNetwork    = errors.New("network error")
	ErrServer     = errors.New("server error")
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("contact not found")
)

// Error describes a failed call against the contacts API
type Error struct {
	Op         string
	StatusCode int
	Message    string
	kind       error
	Err        error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	b.WriteString(": ")
	b.WriteString(e.kind.Error())
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (status %d)", e.StatusCode)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.kind}
	}
	return []error{e.kind, e.Err}
}

// Kind returns the sentinel kind of the error
func (e *Error) Kind() error {
	return e.kind
}

func newError(op string, kind error, status int, message string, cause error) *Error {
	return &Error{Op: op, StatusCode: status, Message: message, kind: kind, Err: cause}
}

// kindForStatus maps a non-2xx status code onto the error taxonomy
func kindForStatus(status int) error {
	switch {
	case status == http.StatusNotFound:
		return ErrNotFound
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		return ErrValidation
	default:
		return ErrServer
	}
}

// Message turns an error into the one-line text shown to the user
func Message(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		if msg := err.Error(); msg != "" {
			return msg
		}
		return "An unknown error occurred"
	}

	switch kind := apiErr.Kind(); {
	case kind == ErrNotFound:
		return "Contact not found"
	case kind == ErrValidation:
		if apiErr.Message != "" {
			return "Invalid contact: " + apiErr.Message
		}
		return "Invalid contact"
	case errors.Is(err, context.DeadlineExceeded):
		return "Request timed out"
	case kind == ErrNetwork:
		return "Unable to reach the contacts server"
	case apiErr.StatusCode != 0:
		return fmt.Sprintf("Server error (status %d)", apiErr.StatusCode)
	default:
		return "Server error"
	}
}

// IsCanceled reports whether err stems from a cancelled context
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled)
}
