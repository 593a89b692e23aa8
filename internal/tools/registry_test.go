package tools

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatchUnknownTool(t *testing.T) {
	invoked := false
	registry, err := New(Registration{
		Tool: mcp.NewTool("known"),
		Handler: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			invoked = true
			return nil, nil
		},
	})
	require.NoError(t, err)

	_, err = registry.Dispatch(context.Background(), "missing", nil)
	assert.ErrorIs(t, err, ErrUnknownTool)
	assert.False(t, invoked, "no handler may run for an unregistered name")
}

func TestDispatchRoutesToHandler(t *testing.T) {
	registry, err := New(Registration{
		Tool: mcp.NewTool("echo"),
		Handler: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			return args["value"], nil
		},
	})
	require.NoError(t, err)

	result, err := registry.Dispatch(context.Background(), "echo", map[string]interface{}{"value": 42})
	require.NoError(t, err)
	assert.Equal(t, 42, result)
}

func TestDuplicateRegistrationRejected(t *testing.T) {
	noop := func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
		return nil, nil
	}

	_, err := New(
		Registration{Tool: mcp.NewTool("dup"), Handler: noop},
		Registration{Tool: mcp.NewTool("dup"), Handler: noop},
	)
	assert.Error(t, err)
}

func TestToolsPreserveRegistrationOrder(t *testing.T) {
	noop := func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
		return nil, nil
	}

	registry, err := New(
		Registration{Tool: mcp.NewTool("b"), Handler: noop},
		Registration{Tool: mcp.NewTool("a"), Handler: noop},
	)
	require.NoError(t, err)

	descriptors := registry.Tools()
	require.Len(t, descriptors, 2)
	assert.Equal(t, "b", descriptors[0].Name)
	assert.Equal(t, "a", descriptors[1].Name)
}
