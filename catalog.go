package agent

import (
	"fmt"
	"strings"
	"sync"

	"github.com/Protocol-Lattice/waypoint/src/tools"
)

// ToolCatalog resolves tool names to adapters.
type ToolCatalog interface {
	Register(tool tools.Tool) error
	Lookup(name string) (tools.Tool, tools.Spec, bool)
	Specs() []tools.Spec
}

// StaticToolCatalog is the default in-memory ToolCatalog.
type StaticToolCatalog struct {
	mu    sync.RWMutex
	tools map[string]tools.Tool
	specs map[string]tools.Spec
	order []string
}

// NewStaticToolCatalog constructs a catalog seeded with the provided tools.
func NewStaticToolCatalog(list ...tools.Tool) *StaticToolCatalog {
	catalog := &StaticToolCatalog{
		tools: make(map[string]tools.Tool),
		specs: make(map[string]tools.Spec),
	}
	for _, tool := range list {
		_ = catalog.Register(tool)
	}
	return catalog
}

// Register adds a tool under its lower-cased name. Duplicate names return an error.
func (c *StaticToolCatalog) Register(tool tools.Tool) error {
	if tool == nil {
		return fmt.Errorf("tool is nil")
	}
	spec := tool.Spec()
	key := strings.ToLower(strings.TrimSpace(spec.Name))
	if key == "" {
		return fmt.Errorf("tool name is empty")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.tools[key]; exists {
		return fmt.Errorf("tool %s already registered", spec.Name)
	}
	c.tools[key] = tool
	c.specs[key] = spec
	c.order = append(c.order, key)
	return nil
}

// Lookup returns the tool and its specification if present.
func (c *StaticToolCatalog) Lookup(name string) (tools.Tool, tools.Spec, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	key := strings.ToLower(strings.TrimSpace(name))
	tool, found := c.tools[key]
	if !found {
		return nil, tools.Spec{}, false
	}
	return tool, c.specs[key], true
}

// Specs returns the tool specifications in registration order.
func (c *StaticToolCatalog) Specs() []tools.Spec {
	c.mu.RLock()
	defer c.mu.RUnlock()

	specs := make([]tools.Spec, 0, len(c.order))
	for _, key := range c.order {
		specs = append(specs, c.specs[key])
	}
	return specs
}
