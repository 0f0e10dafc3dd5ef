package tooling

import (
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringArg_ReturnsValueWhenPresent(t *testing.T) {
	req := requestWithArgs(map[string]interface{}{"project": "/tmp/my-project"})
	assert.Equal(t, "/tmp/my-project", stringArg(req, "project", "."))
}

func TestStringArg_ReturnsDefaultWhenMissing(t *testing.T) {
	req := requestWithArgs(map[string]interface{}{})
	assert.Equal(t, ".", stringArg(req, "project", "."))
}

func TestStringArg_ReturnsDefaultWhenEmptyString(t *testing.T) {
	req := requestWithArgs(map[string]interface{}{"project": ""})
	assert.Equal(t, ".", stringArg(req, "project", "."))
}

func TestStringArg_NilArgumentsReturnsDefault(t *testing.T) {
	req := mcp.CallToolRequest{}
	assert.Equal(t, "fallback", stringArg(req, "project", "fallback"))
}

func TestJSONResult_EncodesValueAsTextContent(t *testing.T) {
	result, err := jsonResult(map[string]any{"status": "indexed"})
	require.NoError(t, err)
	require.NotNil(t, result)
	require.Len(t, result.Content, 1)

	text, ok := mcp.AsTextContent(result.Content[0])
	require.True(t, ok)

	var decoded map[string]string
	require.NoError(t, json.Unmarshal([]byte(text.Text), &decoded))
	assert.Equal(t, "indexed", decoded["status"])
}

func TestProjectHost_ManagerErrorsBeforeCreateIndex(t *testing.T) {
	host := NewProjectHost(t.TempDir())
	_, err := host.manager()
	assert.Error(t, err)
}

func TestRegisterTools_AddsAllSevenTools(t *testing.T) {
	s := server.NewMCPServer("localsearch-test", "0.0.0")
	host := NewProjectHost(t.TempDir())
	RegisterTools(s, host)
}
