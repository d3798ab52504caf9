package intercept

import (
	"net/http"
	"strings"

	"github.com/MrEthical07/authclient/graphql"
)

// CodeUnauthenticated is the extensions.code the backend uses for a missing
// or invalid credential.
const CodeUnauthenticated = "UNAUTHENTICATED"

var authMessageMarkers = []string{"not authenticated", "token expired"}

// Class is the outcome category of one exchange.
type Class uint8

const (
	// ClassOK means no error of any kind.
	ClassOK Class = iota
	// ClassFailure is an error that does not invalidate the session.
	ClassFailure
	// ClassAuthFailure means the server no longer recognises the credential.
	ClassAuthFailure
)

func (c Class) String() string {
	switch c {
	case ClassFailure:
		return "failure"
	case ClassAuthFailure:
		return "auth_failure"
	default:
		return "ok"
	}
}

// IsAuthError reports whether e signals an invalid session.
func IsAuthError(e graphql.Error) bool {
	if e.Code() == CodeUnauthenticated {
		return true
	}
	for _, marker := range authMessageMarkers {
		if strings.Contains(e.Message, marker) {
			return true
		}
	}
	return false
}

// Classify inspects one completed exchange. GraphQL errors carried inside a
// TransportError's decoded body are considered too.
func Classify(resp *graphql.Response, err error) Class {
	class := ClassOK

	if resp.HasErrors() {
		class = ClassFailure
		for _, e := range resp.Errors {
			if IsAuthError(e) {
				return ClassAuthFailure
			}
		}
	}

	if err != nil {
		class = ClassFailure
		if status, ok := graphql.StatusCodeOf(err); ok && status == http.StatusUnauthorized {
			return ClassAuthFailure
		}
		if body := transportBody(err); body != nil {
			for _, e := range body.Errors {
				if IsAuthError(e) {
					return ClassAuthFailure
				}
			}
		}
	}

	return class
}
