// Package tools defines the [Tool] type and the [Registry] that maps tool
// names to in-process implementations.
//
// Each Tool carries its LLM-facing schema ([llm.ToolDefinition]) together with
// the handler function invoked when the model calls the tool. The registry is
// populated once at startup and read for every completion call; definitions
// are never mutated after registration.
package tools

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/MrWong99/tinker/pkg/provider/llm"
)

// Tool represents an in-process tool ready for registration with a [Registry].
type Tool struct {
	// Definition is the tool's LLM-facing schema including its name,
	// description, and JSON Schema parameter specification.
	Definition llm.ToolDefinition

	// Handler executes the tool with JSON-encoded args and returns a
	// JSON-encoded result string on success, or a descriptive error.
	// Implementations must respect context cancellation.
	Handler func(ctx context.Context, args string) (string, error)
}

// Registry is a concurrent-safe mapping from tool name to implementation.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Register adds a tool to the registry. If a tool with the same name is
// already registered it is replaced.
func (r *Registry) Register(tool Tool) error {
	if tool.Definition.Name == "" {
		return fmt.Errorf("tools: tool must have a non-empty name")
	}
	if tool.Handler == nil {
		return fmt.Errorf("tools: tool %q must have a non-nil handler", tool.Definition.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[tool.Definition.Name] = tool
	return nil
}

// RegisterAll registers every tool in ts, stopping at the first error.
func (r *Registry) RegisterAll(ts []Tool) error {
	for _, t := range ts {
		if err := r.Register(t); err != nil {
			return err
		}
	}
	return nil
}

// Get looks up a tool by name. The second return reports whether it exists.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// Definitions returns all registered tool definitions sorted by name, for a
// deterministic schema order in completion requests.
func (r *Registry) Definitions() []llm.ToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]llm.ToolDefinition, 0, len(r.tools))
	for _, t := range r.tools {
		defs = append(defs, t.Definition)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs
}
