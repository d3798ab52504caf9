package graphql

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// OperationKind distinguishes queries from mutations. Only query results are
// cached.
type OperationKind uint8

const (
	// KindQuery is a read-only operation.
	KindQuery OperationKind = iota
	// KindMutation is an operation with side effects.
	KindMutation
)

func (k OperationKind) String() string {
	if k == KindMutation {
		return "mutation"
	}
	return "query"
}

// Operation is one outgoing GraphQL request.
type Operation struct {
	Name      string
	Kind      OperationKind
	Query     string
	Variables map[string]any

	// Header is extended by pipeline stages before the transport sends it.
	Header http.Header
}

// Location is a position in the request document.
type Location struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Error is one entry of a GraphQL response's `errors` array.
type Error struct {
	Message    string         `json:"message"`
	Locations  []Location     `json:"locations,omitempty"`
	Path       []any          `json:"path,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

// Code returns extensions.code, or "" when absent.
func (e Error) Code() string {
	if e.Extensions == nil {
		return ""
	}
	code, _ := e.Extensions["code"].(string)
	return code
}

func (e Error) Error() string {
	return e.Message
}

// Response is a completed GraphQL exchange. Errors and Data may both be set
// (partial results).
type Response struct {
	Data       json.RawMessage `json:"data,omitempty"`
	Errors     []Error         `json:"errors,omitempty"`
	StatusCode int             `json:"-"`
}

// HasErrors reports whether the response carries GraphQL errors.
func (r *Response) HasErrors() bool {
	return r != nil && len(r.Errors) > 0
}

// ErrFieldMissing is returned by [Response.Field] when data has no such key.
var ErrFieldMissing = errors.New("graphql: field missing from response data")

// Field decodes data[name] into out. A JSON null leaves out untouched and
// returns (false, nil).
func (r *Response) Field(name string, out any) (bool, error) {
	if r == nil || len(r.Data) == 0 {
		return false, ErrFieldMissing
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(r.Data, &fields); err != nil {
		return false, fmt.Errorf("decode response data: %w", err)
	}
	raw, ok := fields[name]
	if !ok {
		return false, ErrFieldMissing
	}
	if string(raw) == "null" {
		return false, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, fmt.Errorf("decode field %s: %w", name, err)
	}
	return true, nil
}

// TransportError is a failure of the network exchange itself: the request
// could not be sent, or the server answered with a non-2xx status or an
// unreadable body. StatusCode is 0 when no response was received.
type TransportError struct {
	StatusCode int
	Response   *Response
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 && (e.StatusCode < 200 || e.StatusCode > 299) {
		return fmt.Sprintf("response not successful: received status code %d", e.StatusCode)
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "network error"
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// StatusCodeOf extracts the HTTP status from a TransportError anywhere in
// err's chain.
func StatusCodeOf(err error) (int, bool) {
	var te *TransportError
	if errors.As(err, &te) && te.StatusCode != 0 {
		return te.StatusCode, true
	}
	return 0, false
}
