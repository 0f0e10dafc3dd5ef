package tooling

import (
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requestWithArgs(args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{Arguments: args},
	}
}

func TestBindArguments_NativeTypesBindDirectly(t *testing.T) {
	req := requestWithArgs(map[string]interface{}{"query": "hash password", "limit": 5})
	var a searchArgs
	require.NoError(t, bindArguments(req, &a))
	assert.Equal(t, "hash password", a.Query)
	assert.Equal(t, 5, a.Limit)
}

func TestBindArguments_StringEncodedNumberCoerces(t *testing.T) {
	req := requestWithArgs(map[string]interface{}{"query": "x", "limit": "5"})
	var a searchArgs
	require.NoError(t, bindArguments(req, &a))
	assert.Equal(t, 5, a.Limit)
}

func TestBindArguments_NilArgumentsLeavesZeroValues(t *testing.T) {
	req := mcp.CallToolRequest{}
	var a searchArgs
	require.NoError(t, bindArguments(req, &a))
	assert.Empty(t, a.Query)
	assert.Zero(t, a.Limit)
}

func TestBindArguments_PathSearchArgsBindsAllFields(t *testing.T) {
	req := requestWithArgs(map[string]interface{}{"pattern": "internal/store/**"})
	var a pathSearchArgs
	require.NoError(t, bindArguments(req, &a))
	assert.Equal(t, "internal/store/**", a.Pattern)
}

func TestBindArguments_EmptyStringLimitLeavesZero(t *testing.T) {
	req := requestWithArgs(map[string]interface{}{"query": "x", "limit": ""})
	var a searchArgs
	require.NoError(t, bindArguments(req, &a))
	assert.Zero(t, a.Limit)
}
