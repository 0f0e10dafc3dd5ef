package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefault_IsValid(t *testing.T) {
	assert.NoError(t, Validate(Default()))
}

func TestDefault_HasExpectedPolicy(t *testing.T) {
	def := Default()
	assert.True(t, def.RespectGitignore)
	assert.True(t, def.IndexDocs)
	assert.Equal(t, "character", def.ChunkingStrategy)
	assert.Equal(t, 50_000, def.MaxFiles)
	assert.Equal(t, "auto", def.HybridSearch.FtsEngine)
	assert.Equal(t, 0.5, def.HybridSearch.DefaultAlpha)
	assert.Contains(t, def.Include, "**/*.go")
	assert.Contains(t, def.Exclude, "node_modules/**")
}
