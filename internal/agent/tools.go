package agent

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrDuplicateTool is returned when two tools share a name.
	ErrDuplicateTool = errors.New("duplicate tool name")

	// ErrUnknownTool is returned when invoking a name that is not registered.
	ErrUnknownTool = errors.New("unknown tool")
)

// ToolDescriptor describes a tool to the model.
// ArgumentNames declares the positional arguments, in order. It drives the
// prompt text and the accepted arity, never type validation.
type ToolDescriptor struct {
	Name          string   `json:"name"`
	ArgumentNames []string `json:"args"`
	Description   string   `json:"description"`
}

// Signature renders the descriptor as name(arg1, arg2).
func (d ToolDescriptor) Signature() string {
	s := d.Name + "("
	for i, a := range d.ArgumentNames {
		if i > 0 {
			s += ", "
		}
		s += a
	}
	return s + ")"
}

// Tool is a capability the agent can invoke while answering a query.
type Tool interface {
	// Descriptor returns the tool's name, arguments and description.
	Descriptor() ToolDescriptor

	// Invoke runs the tool with the parsed positional arguments.
	// Expected failures (bad input, upstream API errors) should be reported
	// in the returned string. A returned error is fed back to the model as
	// an observation by the runner.
	Invoke(ctx context.Context, args []string) (string, error)
}

// ToolFunc adapts a plain function into a Tool.
type ToolFunc struct {
	Desc ToolDescriptor
	Fn   func(ctx context.Context, args []string) (string, error)
}

func (f ToolFunc) Descriptor() ToolDescriptor { return f.Desc }

func (f ToolFunc) Invoke(ctx context.Context, args []string) (string, error) {
	return f.Fn(ctx, args)
}

// ToolRegistry holds the tools available to a runner.
// It is built once and read-only afterwards.
type ToolRegistry struct {
	tools map[string]Tool
	order []string
}

// NewToolRegistry builds a registry from the given tools.
// Names must be non-empty and unique.
func NewToolRegistry(tools ...Tool) (*ToolRegistry, error) {
	r := &ToolRegistry{tools: make(map[string]Tool, len(tools))}
	for _, t := range tools {
		name := t.Descriptor().Name
		if name == "" {
			return nil, fmt.Errorf("registering tool: empty name")
		}
		if _, exists := r.tools[name]; exists {
			return nil, fmt.Errorf("registering tool %q: %w", name, ErrDuplicateTool)
		}
		r.tools[name] = t
		r.order = append(r.order, name)
	}
	return r, nil
}

// Get returns a tool by exact name.
func (r *ToolRegistry) Get(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// Names returns tool names in registration order.
func (r *ToolRegistry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Describe returns all descriptors in registration order.
func (r *ToolRegistry) Describe() []ToolDescriptor {
	defs := make([]ToolDescriptor, 0, len(r.order))
	for _, name := range r.order {
		defs = append(defs, r.tools[name].Descriptor())
	}
	return defs
}

// Len returns the number of registered tools.
func (r *ToolRegistry) Len() int { return len(r.order) }

// Invoke dispatches to the named tool. Tool errors are returned unchanged.
func (r *ToolRegistry) Invoke(ctx context.Context, name string, args []string) (string, error) {
	t, ok := r.tools[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
	return t.Invoke(ctx, args)
}
