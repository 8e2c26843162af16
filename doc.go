// Package toolreg turns ordinary Go functions into tools that can be listed, inspected
// and invoked by name, over HTTP or by an AI orchestration layer.
//
// # Overview
//
// A tool is described once and the description drives everything else: the JSON Schema
// published to callers, the strict validation of incoming arguments and the binding of
// those arguments to the handler.
//
// Pipeline: function + parameters → NewTool / NewFuncTool (introspection, documentation,
// schema) → Descriptor → Registrar → Catalog → Dispatcher.Invoke (resolve, validate,
// bind, run, normalize) → InvocationResult.
//
// # Key concepts
//
//   - Explicit or reflective: NewTool takes a ParameterSpec list; NewFuncTool derives the
//     parameters from an argument struct (json, description, default and enum tags).
//   - Documentation: WithDoc accepts a Google-style block (summary, Args:, Returns:).
//     Its descriptions win over tag descriptions; mismatches become DocWarnings.
//   - Strict validation: unknown keys are rejected and every violation is reported at once.
//   - Error taxonomy: DuplicateNameError, SchemaError, NotFoundError, ValidationError and
//     HandlerError, each with a stable ErrorKind (see KindOf).
//
// # Example
//
//	type CalcArgs struct {
//	    Operation string  `json:"operation" enum:"add,subtract,multiply,divide"`
//	    A         float64 `json:"a"`
//	    B         float64 `json:"b"`
//	}
//	func Calculator(_ context.Context, a CalcArgs) (float64, error) { ... }
//
//	catalog := toolreg.NewCatalog()
//	r := toolreg.NewRegistrar(catalog, logger)
//	r.Add(toolreg.NewFuncTool(Calculator, toolreg.WithTags("math")))
//	if err := r.Done(); err != nil { ... }
//	d := toolreg.NewDispatcher(catalog)
//	res := d.Invoke(ctx, toolreg.InvocationRequest{Tool: "calculator", Args: map[string]any{"operation": "add", "a": 1, "b": 2}})
package toolreg
