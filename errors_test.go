package toolreg

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"duplicate", &DuplicateNameError{Name: "x"}, KindDuplicateName},
		{"schema", &SchemaError{Tool: "x", Reason: "bad"}, KindSchema},
		{"not found", &NotFoundError{Name: "x"}, KindNotFound},
		{"validation", &ValidationError{Tool: "x"}, KindValidation},
		{"handler", &HandlerError{Tool: "x", Err: errors.New("boom")}, KindHandler},
		{"wrapped validation", fmt.Errorf("ctx: %w", &ValidationError{}), KindValidation},
		{"handler wrapping not found", &HandlerError{Tool: "x", Err: &NotFoundError{Name: "doc"}}, KindHandler},
		{"plain error", errors.New("other"), KindHandler},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestErrors_Is(t *testing.T) {
	assert.ErrorIs(t, &DuplicateNameError{Name: "a"}, ErrDuplicateName)
	assert.ErrorIs(t, &SchemaError{Reason: "r"}, ErrSchema)
	assert.ErrorIs(t, &NotFoundError{Name: "a"}, ErrNotFound)
	assert.ErrorIs(t, &ValidationError{}, ErrValidation)

	cause := errors.New("disk full")
	he := &HandlerError{Tool: "save", Err: cause}
	assert.ErrorIs(t, he, ErrHandler)
	assert.ErrorIs(t, he, cause)
}

func TestErrors_Messages(t *testing.T) {
	assert.Equal(t, `tool "calc" already registered`, (&DuplicateNameError{Name: "calc"}).Error())
	assert.Equal(t, `tool "calc" not found`, (&NotFoundError{Name: "calc"}).Error())
	assert.Equal(t, `schema error in tool "calc" for parameter "a": unsupported type chan int`,
		(&SchemaError{Tool: "calc", Parameter: "a", Reason: "unsupported type chan int"}).Error())
	assert.Equal(t, "schema error: bad", (&SchemaError{Reason: "bad"}).Error())
	assert.Equal(t, `tool "calc" failed: boom`, (&HandlerError{Tool: "calc", Err: errors.New("boom")}).Error())
}

func TestValidationError_AllViolations(t *testing.T) {
	ve := &ValidationError{Tool: "calc", Violations: []Violation{
		{Parameter: "a", Reason: "missing required parameter"},
		{Parameter: "b", Reason: "expected float"},
		{Reason: "business rule"},
	}}
	assert.Equal(t, "validation failed: a: missing required parameter; b: expected float; business rule", ve.Error())
	assert.Equal(t, []string{"a", "b", ""}, ve.Parameters())

	var target *ValidationError
	require.ErrorAs(t, fmt.Errorf("wrap: %w", ve), &target)
	assert.Len(t, target.Violations, 3)
}

func TestPanicError(t *testing.T) {
	assert.Equal(t, "panic: boom", (&panicError{p: "boom"}).Error())
}
