package flows

import (
	"errors"
	"strings"

	"github.com/MrEthical07/authclient/graphql"
)

var (
	// ErrRejected marks a backend answer that completed but reported failure
	// (success=false, a null result, or false).
	ErrRejected = errors.New("operation rejected by backend")
	// ErrNotReady is returned when Deps carries no executor.
	ErrNotReady = errors.New("session operations not configured")
)

// Default messages used when the backend gives none.
const (
	MsgUnknown             = "An unknown error occurred"
	MsgLoginFailed         = "Login failed"
	MsgRegistrationFailed  = "Registration failed"
	MsgUserNotFound        = "User not found"
	MsgRefreshFailed       = "Token refresh failed"
	MsgResetRequestFailed  = "Password reset request failed"
	MsgResetPasswordFailed = "Password reset failed"
)

// OperationError is the normalised failure of a session operation. Error
// returns the human-readable message that is also stored on the session.
type OperationError struct {
	Operation string
	Message   string
	Err       error
}

func (e *OperationError) Error() string {
	return e.Message
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

func rejected(operation, message, fallback string) *OperationError {
	if message == "" {
		message = fallback
	}
	return &OperationError{Operation: operation, Message: message, Err: ErrRejected}
}

// failure normalises a failed exchange. GraphQL errors keep the first entry
// as the cause so callers can inspect extensions.code.
func failure(operation string, resp *graphql.Response, err error) *OperationError {
	if err != nil {
		msg := err.Error()
		if msg == "" {
			msg = MsgUnknown
		}
		return &OperationError{Operation: operation, Message: msg, Err: err}
	}
	if resp.HasErrors() {
		msgs := make([]string, 0, len(resp.Errors))
		for _, e := range resp.Errors {
			if e.Message != "" {
				msgs = append(msgs, e.Message)
			}
		}
		msg := strings.Join(msgs, "; ")
		if msg == "" {
			msg = MsgUnknown
		}
		return &OperationError{Operation: operation, Message: msg, Err: resp.Errors[0]}
	}
	return &OperationError{Operation: operation, Message: MsgUnknown}
}
