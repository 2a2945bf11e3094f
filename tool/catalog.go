package tool

import (
	"context"
	"fmt"

	"github.com/hupe1980/actionmesh/core"
	"github.com/hupe1980/actionmesh/logging"
)

// CatalogOptions configure discovery.
type CatalogOptions struct {
	Logger logging.Logger
	// InferMissing enables naming-convention inference for tools that expose
	// neither an inputSchema nor parameters.
	InferMissing bool
}

// Catalog is the per-request registry of discovered tools. It is built fresh
// for every request and never mutated afterwards.
type Catalog struct {
	tools []core.ToolDescriptor
	index map[string]int
}

// NewCatalog builds a catalog from already known descriptors. Later entries
// with a duplicate name are ignored.
func NewCatalog(tools []core.ToolDescriptor) *Catalog {
	c := &Catalog{index: make(map[string]int, len(tools))}
	for _, t := range tools {
		if _, dup := c.index[t.Name]; dup {
			continue
		}
		c.index[t.Name] = len(c.tools)
		c.tools = append(c.tools, t)
	}
	return c
}

// Discover lists every tool of transport and then fetches each schema
// individually. A failed listing is returned as an error; a failed schema
// fetch is not: the tool is kept with a nil schema and the failure is logged
// and written to the audit log attached to ctx.
func Discover(ctx context.Context, transport Transport, optFns ...func(o *CatalogOptions)) (*Catalog, error) {
	opts := CatalogOptions{
		Logger:       logging.NoOpLogger{},
		InferMissing: true,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	audit := core.AuditLogFromContext(ctx)

	infos, err := transport.ListTools(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tools: %w", err)
	}

	descriptors := make([]core.ToolDescriptor, 0, len(infos))
	for _, info := range infos {
		desc := core.ToolDescriptor{Name: info.Name, Description: info.Description}

		def, err := transport.GetToolSchema(ctx, info.Name)
		if err != nil {
			opts.Logger.Warn("catalog.schema.failed", "tool", info.Name, "error", err.Error())
			audit.Add("Could not load schema for tool %s: %v", info.Name, err)
			descriptors = append(descriptors, desc)
			continue
		}

		desc.Schema, desc.Inferred = resolveSchema(info, def, opts.InferMissing)
		descriptors = append(descriptors, desc)
	}

	opts.Logger.Debug("catalog.discovered", "tools", len(descriptors))
	return NewCatalog(descriptors), nil
}

// resolveSchema picks inputSchema, then parameters, from the fetched
// definition and then from the listing, before falling back to inference.
func resolveSchema(info Info, def map[string]any, infer bool) (map[string]any, bool) {
	for _, key := range []string{"inputSchema", "parameters"} {
		if s, ok := def[key].(map[string]any); ok && len(s) > 0 {
			return s, false
		}
	}
	if len(info.InputSchema) > 0 {
		return info.InputSchema, false
	}
	if len(info.Parameters) > 0 {
		return info.Parameters, false
	}
	if !infer {
		return nil, false
	}
	return InferSchema(info.Name), true
}

// Tools returns the descriptors in discovery order.
func (c *Catalog) Tools() []core.ToolDescriptor {
	out := make([]core.ToolDescriptor, len(c.tools))
	copy(out, c.tools)
	return out
}

// Lookup returns the descriptor registered under name.
func (c *Catalog) Lookup(name string) (core.ToolDescriptor, bool) {
	i, ok := c.index[name]
	if !ok {
		return core.ToolDescriptor{}, false
	}
	return c.tools[i], true
}

// Has reports whether name is registered.
func (c *Catalog) Has(name string) bool {
	_, ok := c.index[name]
	return ok
}

// Len returns the number of registered tools.
func (c *Catalog) Len() int { return len(c.tools) }

// Names returns the tool names in discovery order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.tools))
	for i, t := range c.tools {
		names[i] = t.Name
	}
	return names
}
