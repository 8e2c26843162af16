package toolreg

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArgs_Getters(t *testing.T) {
	args := Args{
		"big":   json.Number("9223372036854775807"),
		"ratio": json.Number("2.75"),
		"float": 1.5,
		"int":   7,
		"name":  "doc",
		"flag":  true,
		"null":  nil,
	}
	assert.Equal(t, int64(math.MaxInt64), args.Int("big"))
	assert.Equal(t, int64(2), args.Int("ratio"))
	assert.InDelta(t, 2.75, args.Float("ratio"), 0)
	assert.Equal(t, int64(1), args.Int("float"))
	assert.InDelta(t, 7.0, args.Float("int"), 0)
	assert.Equal(t, "doc", args.String("name"))
	assert.True(t, args.Bool("flag"))
	assert.False(t, args.Has("null"))
	assert.Zero(t, args.Int("missing"))

	var out struct {
		Big int64 `json:"big"`
	}
	require.NoError(t, args.Decode(&out))
	assert.Equal(t, int64(math.MaxInt64), out.Big)
}

func TestDecodeArgs(t *testing.T) {
	args, err := DecodeArgs([]byte(`{"n": 9007199254740993}`))
	require.NoError(t, err)
	assert.Equal(t, json.Number("9007199254740993"), args["n"])

	args, err = DecodeArgs(nil)
	require.NoError(t, err)
	assert.Empty(t, args)

	for _, raw := range []string{`[1]`, `"x"`, `{"a":1}{}`, `{"a":`} {
		_, err := DecodeArgs([]byte(raw))
		require.Error(t, err, raw)
	}
}
