package authclient

import (
	"errors"

	"github.com/MrEthical07/authclient/graphql"
	"github.com/MrEthical07/authclient/internal/flows"
)

var (
	// ErrNotReady is returned by operations on a nil or closed Client.
	ErrNotReady = errors.New("client not initialized")
	// ErrRejected marks a backend answer that completed but reported failure.
	ErrRejected = flows.ErrRejected
	// ErrTransport wraps Execute and Query failures of the network exchange
	// that did not invalidate the session.
	ErrTransport = errors.New("transport failure")
	// ErrAuthFailure marks an exchange that invalidated the session.
	ErrAuthFailure = errors.New("session no longer valid")
	// ErrInvalidConfig is wrapped by every configuration error.
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrDraftsDisabled is returned by Drafts when no Redis client was given.
	ErrDraftsDisabled = errors.New("drafts disabled")
	// ErrBuilderUsed is returned by a second Build call.
	ErrBuilderUsed = errors.New("builder already used")
	// ErrRefreshDisabled is returned by NewRefreshScheduler when proactive
	// refresh is switched off.
	ErrRefreshDisabled = errors.New("refresh disabled")
)

// OperationError is the normalised failure of a session operation. Its
// Error method returns the human-readable message also stored on the
// session.
type OperationError = flows.OperationError

// Error codes the backend places in extensions.code.
const (
	CodeUnauthenticated = "UNAUTHENTICATED"
	CodeForbidden       = "FORBIDDEN"
	CodeNetworkError    = "NETWORK_ERROR"
	CodeValidationError = "VALIDATION_ERROR"
)

var userMessages = map[string]string{
	CodeUnauthenticated: "Please log in to continue",
	CodeForbidden:       "You don't have permission to perform this action",
	CodeNetworkError:    "Connection error. Please check your internet connection",
	CodeValidationError: "Please check your input and try again",
}

// ErrorCode classifies err: the extensions.code of a GraphQL error,
// UNAUTHENTICATED for a 401, NETWORK_ERROR for any other transport failure,
// or "" when unknown.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	var gqlErr graphql.Error
	if errors.As(err, &gqlErr) {
		return gqlErr.Code()
	}
	var te *graphql.TransportError
	if errors.As(err, &te) {
		if te.StatusCode == 401 {
			return CodeUnauthenticated
		}
		if te.Response != nil && len(te.Response.Errors) > 0 {
			if code := te.Response.Errors[0].Code(); code != "" {
				return code
			}
		}
		return CodeNetworkError
	}
	return ""
}

// UserMessage returns the text to show a user for err. Known codes map to
// fixed messages; anything else falls back to the error's own message.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if msg, ok := userMessages[ErrorCode(err)]; ok {
		return msg
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return flows.MsgUnknown
}

// IsTransport reports whether err came from a failed network exchange.
func IsTransport(err error) bool {
	var te *graphql.TransportError
	return errors.As(err, &te) || errors.Is(err, ErrTransport)
}

// IsAuthFailure reports whether err marks an exchange that invalidated the
// session.
func IsAuthFailure(err error) bool {
	return errors.Is(err, ErrAuthFailure)
}
