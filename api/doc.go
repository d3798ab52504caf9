// Package api declares the backend GraphQL operations consumed by the client
// and the Go shapes of their inputs and payloads.
package api
