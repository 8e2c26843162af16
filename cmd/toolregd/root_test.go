package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/skosovsky/toolreg"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("TOOLREG_DATABASE", ":memory:")
	t.Setenv("TOOLREG_LOG_LEVEL", "error")

	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestList_JSON(t *testing.T) {
	out, err := run(t, "list", "--json")
	require.NoError(t, err)

	var infos []toolreg.ToolInfo
	require.NoError(t, json.Unmarshal([]byte(out), &infos))
	var names []string
	for _, info := range infos {
		names = append(names, info.Name)
		assert.Equal(t, "/tools/"+info.Name, info.Endpoint)
	}
	assert.Equal(t, []string{"health_check", "text_extractor", "get_document", "calculator"}, names)
}

func TestList_Filters(t *testing.T) {
	out, err := run(t, "list", "--json", "--tag", "math")
	require.NoError(t, err)
	assert.Contains(t, out, `"calculator"`)
	assert.NotContains(t, out, `"health_check"`)

	out, err = run(t, "list", "--json", "--where", `"documents" in tags`)
	require.NoError(t, err)
	assert.Contains(t, out, `"get_document"`)
	assert.NotContains(t, out, `"calculator"`)

	_, err = run(t, "list", "--where", "name +")
	require.ErrorIs(t, err, toolreg.ErrInvalidSelector)
}

func TestList_Table(t *testing.T) {
	out, err := run(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "Check API health status")
}

func TestCall(t *testing.T) {
	out, err := run(t, "call", "calculator", `{"operation":"multiply","a":6,"b":7}`)
	require.NoError(t, err)
	assert.JSONEq(t, `{"result":42}`, out)

	out, err = run(t, "call", "get_document", `{"doc_id":"2"}`)
	require.NoError(t, err)
	assert.Contains(t, out, `"id": "2"`)
}

func TestCall_Failures(t *testing.T) {
	out, err := run(t, "call", "nope")
	require.Error(t, err)
	assert.Contains(t, out, `"kind": "NotFoundError"`)

	out, err = run(t, "call", "calculator", `{"a":1}`)
	require.Error(t, err)
	assert.Contains(t, out, `"kind": "ValidationError"`)
}

func TestInvalidConfig(t *testing.T) {
	t.Setenv("TOOLREG_MAX_CONCURRENCY", "-1")
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"list"})
	assert.Error(t, cmd.Execute())
}
