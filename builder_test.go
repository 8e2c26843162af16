package toolreg

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const calculatorDoc = `Perform a basic arithmetic operation.

Args:
    operation: One of add, subtract, multiply, divide.
    a: Left operand.
    b: Right operand.

Returns:
    The result of the operation.
`

func calculate(_ context.Context, args Args) (any, error) {
	a, b := args.Float("a"), args.Float("b")
	switch args.String("operation") {
	case "add":
		return a + b, nil
	case "subtract":
		return a - b, nil
	case "multiply":
		return a * b, nil
	default:
		if b == 0 {
			return nil, errors.New("division by zero")
		}
		return a / b, nil
	}
}

func newCalculator(t *testing.T, opts ...ToolOption) *Descriptor {
	t.Helper()
	opts = append([]ToolOption{WithDoc(calculatorDoc), WithOutput(FloatType), WithTags("math")}, opts...)
	d, err := NewTool("calculator", calculatorParams(), calculate, opts...)
	require.NoError(t, err)
	return d
}

func TestNewTool_Explicit(t *testing.T) {
	d := newCalculator(t)
	assert.Equal(t, "calculator", d.Name())
	assert.Equal(t, "Perform a basic arithmetic operation.", d.Description())
	assert.Equal(t, []string{"math"}, d.Tags())
	assert.Equal(t, "/tools/calculator", d.Endpoint())
	assert.Equal(t, "POST", d.Method())
	assert.Empty(t, d.DocWarnings())

	schema := d.Schema()
	require.Len(t, schema.Params, 3)
	for _, p := range schema.Params {
		assert.True(t, p.Required(), p.Name)
	}
	a, _ := schema.Param("a")
	assert.Equal(t, "Left operand.", a.Description)
	assert.Equal(t, "The result of the operation.", schema.OutputDescription)
	assert.JSONEq(t, `{"type":"number","description":"The result of the operation."}`, mustJSON(t, d.OutputSchema()))
}

func TestNewTool_OptionsOverride(t *testing.T) {
	d, err := NewTool("calc", calculatorParams(), calculate,
		WithName("calculator_v2"),
		WithDescription("Overridden."),
		WithTags("math", "", "math", "demo"),
	)
	require.NoError(t, err)
	assert.Equal(t, "calculator_v2", d.Name())
	assert.Equal(t, "Overridden.", d.Description())
	assert.Equal(t, []string{"math", "demo"}, d.Tags())
	assert.True(t, d.HasTag("demo"))
	assert.False(t, d.HasTag("text"))
	assert.Len(t, d.DocWarnings(), 3, "every required parameter is undocumented")
}

func TestNewTool_Errors(t *testing.T) {
	_, err := NewTool("calc", nil, nil)
	require.ErrorIs(t, err, ErrSchema)

	_, err = NewTool("bad name!", nil, calculate)
	require.ErrorIs(t, err, ErrSchema)

	_, err = NewTool("", nil, calculate)
	require.ErrorIs(t, err, ErrSchema)

	_, err = NewTool("calc", []ParameterSpec{Param("a", FloatType), Param("a", FloatType)}, calculate)
	var se *SchemaError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "a", se.Parameter)
}

func TestDescriptor_AccessorsReturnCopies(t *testing.T) {
	d := newCalculator(t)
	tags := d.Tags()
	tags[0] = "changed"
	schema := d.Schema()
	schema.Params[0].Name = "changed"
	assert.Equal(t, []string{"math"}, d.Tags())
	assert.Equal(t, "operation", d.Schema().Params[0].Name)
}

type extractArgs struct {
	Text      string `json:"text" description:"Input text"`
	MaxTokens int    `json:"max_tokens" default:"100"`
}

type extractResult struct {
	Tokens []string `json:"tokens"`
	Count  int      `json:"count"`
}

func TextExtractor(_ context.Context, a extractArgs) (extractResult, error) {
	return extractResult{Count: min(a.MaxTokens, len(a.Text))}, nil
}

type rangeArgs struct {
	From int `json:"from"`
	To   int `json:"to"`
}

func (a rangeArgs) Validate() error {
	if a.From > a.To {
		return errors.New("from must not exceed to")
	}
	return nil
}

func TestNewFuncTool_Reflective(t *testing.T) {
	d, err := NewFuncTool(TextExtractor, WithTags("text"))
	require.NoError(t, err)
	assert.Equal(t, "text_extractor", d.Name())

	schema := d.Schema()
	require.Len(t, schema.Params, 2)
	assert.Equal(t, "Input text", schema.Params[0].Description)
	assert.True(t, schema.Params[0].Required())
	assert.False(t, schema.Params[1].Required())
	assert.Equal(t, KindObject, schema.Output.Kind)

	out, err := d.Handler()(context.Background(), Args{"text": "hello", "max_tokens": 3.0})
	require.NoError(t, err)
	assert.Equal(t, extractResult{Count: 3}, out)
}

func TestNewFuncTool_ClosureNeedsName(t *testing.T) {
	fn := func(_ context.Context, a rangeArgs) (int, error) { return a.To - a.From, nil }
	_, err := NewFuncTool(fn)
	require.ErrorIs(t, err, ErrSchema)

	d, err := NewFuncTool(fn, WithName("span"))
	require.NoError(t, err)
	assert.Equal(t, "span", d.Name())
	assert.Equal(t, IntegerType, d.Schema().Output)
}

func TestNewFuncTool_Validatable(t *testing.T) {
	d, err := NewFuncTool(func(_ context.Context, a rangeArgs) (int, error) {
		return a.To - a.From, nil
	}, WithName("span"))
	require.NoError(t, err)

	_, err = d.Handler()(context.Background(), Args{"from": 5.0, "to": 1.0})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "from must not exceed to", ve.Violations[0].Reason)
}

func TestNewFuncTool_SchemaErrors(t *testing.T) {
	_, err := NewFuncTool(func(_ context.Context, _ string) (int, error) { return 0, nil }, WithName("bad_args"))
	var se *SchemaError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "bad_args", se.Tool)

	_, err = NewFuncTool(func(_ context.Context, _ rangeArgs) (chan int, error) { return nil, nil }, WithName("bad_result"))
	require.ErrorAs(t, err, &se)
	assert.Contains(t, se.Error(), "return type")

	var nilFn func(context.Context, rangeArgs) (int, error)
	_, err = NewFuncTool(nilFn, WithName("nil_fn"))
	require.ErrorIs(t, err, ErrSchema)
}

func TestNewFuncTool_WithOutputSkipsIntrospection(t *testing.T) {
	d, err := NewFuncTool(func(_ context.Context, _ rangeArgs) (chan int, error) { return nil, nil },
		WithName("chan_result"), WithOutput(AnyType))
	require.NoError(t, err)
	assert.Equal(t, AnyType, d.Schema().Output)
}
