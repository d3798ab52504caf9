package flows

import (
	"context"
	"errors"

	"github.com/MrEthical07/authclient/graphql"
)

// execute runs op and decodes data[field] into out. It reports whether the
// field was non-null. Any transport failure, GraphQL error, or undecodable
// payload is returned as an OperationError.
func execute(ctx context.Context, deps Deps, op *graphql.Operation, policy graphql.FetchPolicy, field string, out any) (bool, error) {
	if deps.Executor == nil {
		return false, &OperationError{Operation: op.Name, Message: MsgUnknown, Err: ErrNotReady}
	}

	resp, err := deps.Executor.ExecuteWithPolicy(ctx, op, policy)
	if err != nil || resp.HasErrors() {
		return false, failure(op.Name, resp, err)
	}

	found, err := resp.Field(field, out)
	if err != nil {
		if errors.Is(err, graphql.ErrFieldMissing) {
			return false, nil
		}
		return false, &OperationError{Operation: op.Name, Message: MsgUnknown, Err: err}
	}
	return found, nil
}

func mutation(name, query string, vars map[string]any) *graphql.Operation {
	return &graphql.Operation{Name: name, Kind: graphql.KindMutation, Query: query, Variables: vars}
}
