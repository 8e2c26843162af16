package toolreg

import (
	"context"
	"net/http"
	"net/url"
	"slices"
)

// Handler is the unit of work behind a tool. It receives validated arguments bound by name
// and returns a JSON-encodable value or an error. Blocking handlers simply block; the
// dispatcher runs each invocation on the caller's goroutine.
type Handler func(ctx context.Context, args Args) (any, error)

// Descriptor is the immutable record of a registered tool. It is created once by NewTool or
// NewFuncTool; accessors return copies, so a descriptor never changes after construction.
type Descriptor struct {
	name        string
	description string
	tags        []string
	schema      ToolSchema
	handler     Handler
	validators  []paramValidator
	warnings    []string
}

func (d *Descriptor) Name() string        { return d.name }
func (d *Descriptor) Description() string { return d.description }

// Tags returns the tool tags in declaration order.
func (d *Descriptor) Tags() []string { return slices.Clone(d.tags) }

// HasTag reports whether tag is one of the tool tags.
func (d *Descriptor) HasTag(tag string) bool { return slices.Contains(d.tags, tag) }

// Schema returns the tool schema. The parameter slice is a copy.
func (d *Descriptor) Schema() ToolSchema { return d.schema.clone() }

// InputSchema returns the strict JSON Schema of the arguments object.
func (d *Descriptor) InputSchema() map[string]any { return d.schema.InputJSONSchema() }

// OutputSchema returns the JSON Schema of the result.
func (d *Descriptor) OutputSchema() map[string]any { return d.schema.OutputJSONSchema() }

// Handler returns the underlying handler. The descriptor holds a reference, never a copy.
func (d *Descriptor) Handler() Handler { return d.handler }

// Endpoint is the HTTP route path derived from the tool name.
func (d *Descriptor) Endpoint() string { return "/tools/" + url.PathEscape(d.name) }

// Method is the HTTP method of the invocation endpoint.
func (d *Descriptor) Method() string { return http.MethodPost }

// DocWarnings lists documentation mismatches found at build time (a documented parameter
// missing from the signature, an undocumented required parameter). They never fail a build.
func (d *Descriptor) DocWarnings() []string { return slices.Clone(d.warnings) }

// ToolInfo is the published, JSON-encodable view of a descriptor.
type ToolInfo struct {
	Name         string         `json:"name"`
	Description  string         `json:"description"`
	Tags         []string       `json:"tags"`
	Endpoint     string         `json:"endpoint"`
	Method       string         `json:"method"`
	InputSchema  map[string]any `json:"inputSchema"`
	OutputSchema map[string]any `json:"outputSchema"`
}

// Info returns the published view of d.
func (d *Descriptor) Info() ToolInfo {
	return ToolInfo{
		Name:         d.name,
		Description:  d.description,
		Tags:         d.Tags(),
		Endpoint:     d.Endpoint(),
		Method:       d.Method(),
		InputSchema:  d.InputSchema(),
		OutputSchema: d.OutputSchema(),
	}
}
