package profile

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Error taxonomy shared by the draft controller and the API client.
var (
	ErrValidation      = errors.New("profile validation failed")
	ErrUnauthenticated = errors.New("authentication required")
	ErrConflict        = errors.New("profile conflict")
	ErrRemote          = errors.New("marketplace request failed")
)

// GenericRemoteMessage is shown when the server gives no usable message.
const GenericRemoteMessage = "Something went wrong. Please try again."

// ValidationError carries the field errors that blocked a submission.
type ValidationError struct {
	Fields Errors
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Fields) == 0 {
		return ErrValidation.Error()
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return fmt.Sprintf("%s: %s", ErrValidation.Error(), strings.Join(keys, ", "))
}

// Unwrap enables errors.Is against ErrValidation.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// RemoteError describes a non-2xx response or transport failure.
type RemoteError struct {
	Op      string
	Status  int
	Message string
	cause   error
}

// NewRemoteError builds a RemoteError. cause defaults to ErrRemote.
func NewRemoteError(op string, status int, message string, cause error) *RemoteError {
	if cause == nil {
		cause = ErrRemote
	}
	return &RemoteError{Op: op, Status: status, Message: message, cause: cause}
}

func (e *RemoteError) Error() string {
	if e == nil {
		return ErrRemote.Error()
	}
	msg := e.Message
	if msg == "" {
		msg = e.cause.Error()
	}
	if e.Status == 0 {
		return fmt.Sprintf("%s: %s", e.Op, msg)
	}
	return fmt.Sprintf("%s (status=%d): %s", e.Op, e.Status, msg)
}

// Unwrap enables errors.Is/As against the sentinel errors.
func (e *RemoteError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// UserMessage returns the message to surface for err, falling back to
// GenericRemoteMessage.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrUnauthenticated) {
		return "Authentication failed. Please sign in again."
	}
	var re *RemoteError
	if errors.As(err, &re) && strings.TrimSpace(re.Message) != "" {
		return re.Message
	}
	return GenericRemoteMessage
}
