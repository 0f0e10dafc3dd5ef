package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeAdjacent_MergesOverlappingChunksSamePath(t *testing.T) {
	results := []Result{
		{ChunkID: "a", Path: "x.go", StartLine: 1, EndLine: 10, Text: "line1\nline2", Score: 0.5},
		{ChunkID: "b", Path: "x.go", StartLine: 8, EndLine: 20, Text: "line8\nline9\nline20", Score: 0.9},
	}
	merged := MergeAdjacent(results)
	require.Len(t, merged, 1)
	assert.Equal(t, 1, merged[0].StartLine)
	assert.Equal(t, 20, merged[0].EndLine)
	assert.Equal(t, 0.9, merged[0].Score)
}

func TestMergeAdjacent_KeepsNonAdjacentChunksSeparate(t *testing.T) {
	results := []Result{
		{ChunkID: "a", Path: "x.go", StartLine: 1, EndLine: 5, Text: "a", Score: 0.1},
		{ChunkID: "b", Path: "x.go", StartLine: 50, EndLine: 60, Text: "b", Score: 0.9},
	}
	merged := MergeAdjacent(results)
	assert.Len(t, merged, 2)
}

func TestMergeAdjacent_KeepsDifferentPathsSeparate(t *testing.T) {
	results := []Result{
		{ChunkID: "a", Path: "x.go", StartLine: 1, EndLine: 5, Text: "a", Score: 0.5},
		{ChunkID: "b", Path: "y.go", StartLine: 1, EndLine: 5, Text: "b", Score: 0.5},
	}
	merged := MergeAdjacent(results)
	assert.Len(t, merged, 2)
}

func TestMergeAdjacent_SortsDescendingByScore(t *testing.T) {
	results := []Result{
		{ChunkID: "a", Path: "x.go", StartLine: 1, EndLine: 2, Score: 0.1},
		{ChunkID: "b", Path: "y.go", StartLine: 1, EndLine: 2, Score: 0.9},
	}
	merged := MergeAdjacent(results)
	require.Len(t, merged, 2)
	assert.Equal(t, "b", merged[0].ChunkID)
}

func TestMergeAdjacent_CombinesProvenanceFlags(t *testing.T) {
	results := []Result{
		{ChunkID: "a", Path: "x.go", StartLine: 1, EndLine: 10, FromVector: true, VectorRank: 2, FTSRank: -1},
		{ChunkID: "b", Path: "x.go", StartLine: 9, EndLine: 20, FromFTS: true, VectorRank: -1, FTSRank: 4},
	}
	merged := MergeAdjacent(results)
	require.Len(t, merged, 1)
	assert.True(t, merged[0].FromVector)
	assert.True(t, merged[0].FromFTS)
	assert.Equal(t, 2, merged[0].VectorRank)
	assert.Equal(t, 4, merged[0].FTSRank)
}

func TestTrimWhitespace_RemovesLeadingAndTrailingBlankLines(t *testing.T) {
	out := TrimWhitespace([]Result{{Text: "\n\n  \nfoo\nbar\n\n \n"}})
	require.Len(t, out, 1)
	assert.Equal(t, "foo\nbar", out[0].Text)
}

func TestTrimWhitespace_DoesNotMutateInput(t *testing.T) {
	in := []Result{{Text: "\nfoo\n"}}
	_ = TrimWhitespace(in)
	assert.Equal(t, "\nfoo\n", in[0].Text)
}

func TestConcatWithoutDuplicateLines_DropsOverlap(t *testing.T) {
	got := concatWithoutDuplicateLines("l1\nl2\nl3", "l2\nl3\nl4", 3, 2)
	assert.Equal(t, "l1\nl2\nl3\nl4", got)
}

func TestConcatWithoutDuplicateLines_NoOverlapJustConcatenates(t *testing.T) {
	got := concatWithoutDuplicateLines("l1\nl2", "l5\nl6", 2, 5)
	assert.Equal(t, "l1\nl2\nl5\nl6", got)
}

func TestMinRank(t *testing.T) {
	assert.Equal(t, 3, minRank(-1, 3))
	assert.Equal(t, 2, minRank(2, -1))
	assert.Equal(t, 2, minRank(2, 5))
	assert.Equal(t, -1, minRank(-1, -1))
}
