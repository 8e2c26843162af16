// Package demo holds the sample tools served by toolregd.
package demo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/skosovsky/toolreg"
	"github.com/skosovsky/toolreg/internal/docstore"
)

// Version is reported by health_check.
const Version = "1.0.0"

// Register builds every demo tool and adds it to r.
func Register(r *toolreg.Registrar, store *docstore.Store) {
	r.Add(toolreg.NewFuncTool(HealthCheck,
		toolreg.WithDescription("Check API health status"),
		toolreg.WithTags("system"),
	))
	r.Add(toolreg.NewFuncTool(TextExtractor,
		toolreg.WithDoc(textExtractorDoc),
		toolreg.WithTags("extraction", "text"),
	))
	r.Add(GetDocumentTool(store))
	r.Add(CalculatorTool())
}

type HealthStatus struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// HealthCheck reports that the service is up.
func HealthCheck(context.Context, struct{}) (HealthStatus, error) {
	return HealthStatus{Status: "ok", Version: Version}, nil
}

const textExtractorDoc = `Extract important information from text.

The extractor analyzes the input text and returns the leading words,
up to max_tokens of them.

Args:
    text: The text to extract from.
    max_tokens: Maximum number of tokens to extract.

Returns:
    The extracted text and its token count.
`

type ExtractArgs struct {
	Text      string `json:"text"`
	MaxTokens *int   `json:"max_tokens" default:"100"`
}

const defaultMaxTokens = 100

func (a ExtractArgs) Validate() error {
	if a.MaxTokens != nil && *a.MaxTokens < 0 {
		return &toolreg.ValidationError{Violations: []toolreg.Violation{{Parameter: "max_tokens", Reason: "must not be negative"}}}
	}
	return nil
}

type ExtractResult struct {
	ExtractedText string `json:"extracted_text"`
	TokenCount    int    `json:"token_count"`
}

// TextExtractor keeps the first MaxTokens whitespace-separated words of Text. An explicit
// null MaxTokens means the default of 100.
func TextExtractor(_ context.Context, a ExtractArgs) (ExtractResult, error) {
	limit := defaultMaxTokens
	if a.MaxTokens != nil {
		limit = *a.MaxTokens
	}
	words := strings.Fields(a.Text)
	if len(words) > limit {
		words = words[:limit]
	}
	return ExtractResult{ExtractedText: strings.Join(words, " "), TokenCount: len(words)}, nil
}

// GetDocumentTool returns the get_document tool reading from store.
func GetDocumentTool(store *docstore.Store) (*toolreg.Descriptor, error) {
	return toolreg.NewTool("get_document", []toolreg.ParameterSpec{
		toolreg.Param("doc_id", toolreg.StringType),
		toolreg.Param("include_metadata", toolreg.BooleanType).WithDefault(false),
	}, func(ctx context.Context, args toolreg.Args) (any, error) {
		doc, err := store.Get(ctx, args.String("doc_id"))
		if err != nil {
			return nil, err
		}
		out := map[string]any{
			"id":       doc.ID,
			"title":    doc.Title,
			"body":     doc.Body,
			"metadata": nil,
		}
		if args.Bool("include_metadata") {
			meta := map[string]any{"created": doc.CreatedAt.Format(time.DateOnly)}
			for k, v := range doc.Metadata {
				meta[k] = v
			}
			out["metadata"] = meta
		}
		return out, nil
	},
		toolreg.WithDoc(`Retrieve a document by its ID with optional metadata.

Args:
    doc_id: Identifier of the document.
    include_metadata: Include the document metadata in the result.
`),
		toolreg.WithTags("documents"),
		toolreg.WithOutput(toolreg.ObjectOf(
			toolreg.Param("id", toolreg.StringType),
			toolreg.Param("title", toolreg.StringType),
			toolreg.Param("body", toolreg.StringType),
			toolreg.Param("metadata", toolreg.OptionalOf(toolreg.MapOf(toolreg.AnyType))),
		)),
	)
}

// ErrDivisionByZero is returned by the calculator for a zero divisor.
var ErrDivisionByZero = errors.New("division by zero")

// CalculatorTool returns the calculator tool.
func CalculatorTool() (*toolreg.Descriptor, error) {
	return toolreg.NewTool("calculator", []toolreg.ParameterSpec{
		toolreg.Param("operation", toolreg.EnumOf("add", "subtract", "multiply", "divide")),
		toolreg.Param("a", toolreg.FloatType),
		toolreg.Param("b", toolreg.FloatType),
	}, calculate,
		toolreg.WithDoc(`Perform a basic arithmetic operation.

Args:
    operation: One of add, subtract, multiply or divide.
    a: Left operand.
    b: Right operand.

Returns:
    The result as a number.
`),
		toolreg.WithTags("math"),
		toolreg.WithOutput(toolreg.FloatType),
	)
}

func calculate(_ context.Context, args toolreg.Args) (any, error) {
	a, b := args.Float("a"), args.Float("b")
	switch op := args.String("operation"); op {
	case "add":
		return a + b, nil
	case "subtract":
		return a - b, nil
	case "multiply":
		return a * b, nil
	case "divide":
		if b == 0 {
			return nil, ErrDivisionByZero
		}
		return a / b, nil
	default:
		return nil, fmt.Errorf("unsupported operation %q", op)
	}
}
