// Package tools provides the immutable name-to-handler registry behind the
// MCP tool surface. A registry is built once during startup and is safe for
// unsynchronized concurrent reads afterward.
package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ErrUnknownTool is returned by Dispatch for names that were never
// registered. No handler runs in that case.
var ErrUnknownTool = errors.New("unknown tool")

// Handler executes a tool call. Handlers interpret their own arguments; the
// registry performs no schema validation.
type Handler func(ctx context.Context, args map[string]interface{}) (interface{}, error)

// Registration pairs a tool descriptor with its handler.
type Registration struct {
	Tool    mcp.Tool
	Handler Handler
}

// Registry is an immutable mapping from tool name to handler, fixed at
// construction.
type Registry struct {
	tools    []mcp.Tool
	handlers map[string]Handler
	calls    metric.Int64Counter
}

// New builds a registry from the given registrations. Duplicate names are a
// construction error; there is at most one handler per name.
func New(registrations ...Registration) (*Registry, error) {
	r := &Registry{
		handlers: make(map[string]Handler, len(registrations)),
	}

	meter := otel.Meter("github.com/modflowai/mfai-mcp-server/internal/tools")
	calls, err := meter.Int64Counter("tool.invocations",
		metric.WithDescription("Number of tool dispatches, by tool name"))
	if err != nil {
		return nil, fmt.Errorf("failed to create invocation counter: %w", err)
	}
	r.calls = calls

	for _, reg := range registrations {
		name := reg.Tool.Name
		if name == "" {
			return nil, fmt.Errorf("tool registered without a name")
		}
		if _, exists := r.handlers[name]; exists {
			return nil, fmt.Errorf("tool %q registered twice", name)
		}
		r.tools = append(r.tools, reg.Tool)
		r.handlers[name] = reg.Handler
	}

	return r, nil
}

// Tools returns the registered tool descriptors in registration order.
func (r *Registry) Tools() []mcp.Tool {
	return r.tools
}

// Dispatch routes a call to the handler registered under name.
func (r *Registry) Dispatch(ctx context.Context, name string, args map[string]interface{}) (interface{}, error) {
	handler, ok := r.handlers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTool, name)
	}
	r.calls.Add(ctx, 1, metric.WithAttributes(attribute.String("tool", name)))
	return handler(ctx, args)
}
