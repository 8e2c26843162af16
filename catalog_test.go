package toolreg

import (
	"bytes"
	"context"
	"fmt"
	"iter"
	"log/slog"
	"slices"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echoTool(t *testing.T, name string, tags ...string) *Descriptor {
	t.Helper()
	d, err := NewTool(name, []ParameterSpec{Param("msg", StringType).WithDefault("")},
		func(_ context.Context, args Args) (any, error) { return args.String("msg"), nil },
		WithTags(tags...))
	require.NoError(t, err)
	return d
}

func names(seq iter.Seq[*Descriptor]) []string {
	var out []string
	for d := range seq {
		out = append(out, d.Name())
	}
	return out
}

func TestCatalog_RegisterLookup(t *testing.T) {
	c := NewCatalog()
	d := newCalculator(t)
	require.NoError(t, c.Register(d))

	got, err := c.Lookup("calculator")
	require.NoError(t, err)
	assert.Same(t, d, got)
	assert.Equal(t, 1, c.Len())

	_, err = c.Lookup("missing")
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "missing", nf.Name)
}

func TestCatalog_DuplicateLeavesCatalogUnchanged(t *testing.T) {
	c := NewCatalog()
	first := echoTool(t, "echo", "a")
	require.NoError(t, c.Register(first))

	err := c.Register(echoTool(t, "echo", "b"))
	var dup *DuplicateNameError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "echo", dup.Name)

	assert.Equal(t, 1, c.Len())
	got, err := c.Lookup("echo")
	require.NoError(t, err)
	assert.Same(t, first, got)
}

func TestCatalog_ListByTag(t *testing.T) {
	c := NewCatalog()
	require.NoError(t, c.Register(echoTool(t, "t1", "x")))
	require.NoError(t, c.Register(echoTool(t, "t2", "y")))
	require.NoError(t, c.Register(echoTool(t, "t3", "x", "y")))
	require.NoError(t, c.Register(echoTool(t, "t4")))

	assert.Equal(t, []string{"t1", "t3"}, names(c.List("x")))
	assert.Equal(t, []string{"t1", "t2", "t3"}, names(c.List("x", "y")))
	assert.Equal(t, []string{"t1", "t2", "t3", "t4"}, names(c.List()))
	assert.Empty(t, names(c.List("unknown")))
	assert.Equal(t, []string{"t1", "t2", "t3", "t4"}, c.Names())
}

func TestCatalog_ListIsRestartable(t *testing.T) {
	c := NewCatalog()
	require.NoError(t, c.Register(echoTool(t, "a")))
	require.NoError(t, c.Register(echoTool(t, "b")))

	seq := c.List()
	first := names(seq)
	second := names(seq)
	assert.Equal(t, first, second)

	for d := range seq {
		assert.Equal(t, "a", d.Name())
		break
	}
}

func TestCatalog_Freeze(t *testing.T) {
	c := NewCatalog()
	require.NoError(t, c.Register(echoTool(t, "a")))
	c.Freeze()
	assert.True(t, c.Frozen())
	require.ErrorIs(t, c.Register(echoTool(t, "b")), ErrFrozen)
	assert.Equal(t, 1, c.Len())
	require.ErrorIs(t, c.Register(nil), ErrSchema)
}

func TestCatalog_ConcurrentRegister(t *testing.T) {
	c := NewCatalog()
	var wg sync.WaitGroup
	for i := range 20 {
		d := echoTool(t, fmt.Sprintf("tool_%02d", i))
		wg.Go(func() {
			assert.NoError(t, c.Register(d))
			_ = names(c.List())
		})
	}
	wg.Wait()
	got := c.Names()
	slices.Sort(got)
	assert.Len(t, got, 20)
	assert.Equal(t, "tool_00", got[0])
}

func TestRegistrar(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	c := NewCatalog()
	r := NewRegistrar(c, logger)

	r.Add(echoTool(t, "echo"), nil)
	r.Add(echoTool(t, "echo"), nil)
	r.Add(NewTool("broken", []ParameterSpec{Param("n", IntegerType).WithDefault("x")}, calculate))
	r.Add(NewTool("sum", []ParameterSpec{Param("a", FloatType)}, calculate, WithDoc("Sum.\n\nArgs:\n    z: nope\n")))

	err := r.Done()
	require.Error(t, err)
	require.ErrorIs(t, err, ErrDuplicateName)
	require.ErrorIs(t, err, ErrSchema)
	assert.True(t, c.Frozen())
	assert.Equal(t, []string{"echo", "sum"}, c.Names())

	logs := buf.String()
	assert.Contains(t, logs, "tool registration failed")
	assert.Contains(t, logs, "tool build failed")
	assert.Contains(t, logs, "tool documentation mismatch")
	assert.Contains(t, logs, "tool registered")
}

func TestRegistrar_NilDescriptor(t *testing.T) {
	c := NewCatalog()
	r := NewRegistrar(c, slog.New(slog.DiscardHandler))
	require.NotPanics(t, func() { r.Add(nil, nil) })
	require.ErrorIs(t, r.Done(), ErrSchema)
	assert.Zero(t, c.Len())
}
