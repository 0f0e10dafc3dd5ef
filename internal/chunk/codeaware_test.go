package chunk

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodeAwareChunker_UnrecognizedLanguageFallsBack(t *testing.T) {
	c := NewCodeAwareChunker()
	chunks := c.Chunk("data.xyz", "some content\nwith no known boundaries\n", KindCode)
	require.NotEmpty(t, chunks)
}

func TestCodeAwareChunker_SplitsOnGoFunctionBoundaries(t *testing.T) {
	c := NewCodeAwareChunker()
	content := `package main

func First() {
	doSomething()
}

func Second() {
	doSomethingElse()
}
`
	chunks := c.Chunk("main.go", content, KindCode)
	require.NotEmpty(t, chunks)

	var sawFirst, sawSecond bool
	for _, ch := range chunks {
		if strings.Contains(ch.Text, "func First") {
			sawFirst = true
		}
		if strings.Contains(ch.Text, "func Second") {
			sawSecond = true
		}
	}
	assert.True(t, sawFirst)
	assert.True(t, sawSecond)
}

func TestCodeAwareChunker_KeepsPythonDecoratorAttached(t *testing.T) {
	c := NewCodeAwareChunker()
	content := "import os\n\n@decorator\ndef handler():\n    return os.getcwd()\n"
	chunks := c.Chunk("handler.py", content, KindCode)
	require.NotEmpty(t, chunks)

	var found bool
	for _, ch := range chunks {
		if strings.Contains(ch.Text, "def handler") {
			assert.Contains(t, ch.Text, "@decorator")
			found = true
		}
	}
	assert.True(t, found)
}

func TestCodeAwareChunker_MergesSmallDeclarations(t *testing.T) {
	c := &CodeAwareChunker{TargetSize: 2000, UpperBound: 6000, fallback: NewCharacterChunker()}
	content := `package main

func A() {}

func B() {}

func C() {}
`
	chunks := c.Chunk("small.go", content, KindCode)
	assert.Less(t, len(chunks), 3)
}

func TestCodeAwareChunker_SplitsOversizedDeclaration(t *testing.T) {
	c := &CodeAwareChunker{TargetSize: 200, UpperBound: 300, fallback: NewCharacterChunker()}
	var b strings.Builder
	b.WriteString("func Big() {\n")
	for i := 0; i < 40; i++ {
		b.WriteString("\tdoWork()\n\n")
	}
	b.WriteString("}\n")

	chunks := c.Chunk("big.go", b.String(), KindCode)
	require.Greater(t, len(chunks), 1)
}

func TestCodeAwareChunker_EmptyContentReturnsNoChunks(t *testing.T) {
	c := NewCodeAwareChunker()
	assert.Empty(t, c.Chunk("empty.go", "", KindCode))
}

func TestNewCodeChunker_SelectsStrategy(t *testing.T) {
	_, isCodeAware := NewCodeChunker(StrategyCodeAware).(*CodeAwareChunker)
	assert.True(t, isCodeAware)

	_, isCharacter := NewCodeChunker(StrategyCharacter).(*CharacterChunker)
	assert.True(t, isCharacter)

	_, isDefaultCharacter := NewCodeChunker("unknown").(*CharacterChunker)
	assert.True(t, isDefaultCharacter)
}
