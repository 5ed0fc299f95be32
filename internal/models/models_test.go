package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkIDRoundTrips(t *testing.T) {
	id := NewChunkID("report.txt", CollectionLogicalSummaries, 42)
	assert.Equal(t, "report.txt::logical_summaries::000042", id.String())

	document, collection, index, err := id.Parse()
	require.NoError(t, err)
	assert.Equal(t, "report.txt", document)
	assert.Equal(t, CollectionLogicalSummaries, collection)
	assert.Equal(t, 42, index)
}

func TestChunkIDParseRejectsMalformed(t *testing.T) {
	_, _, _, err := ChunkID("not-a-chunk-id").Parse()
	assert.Error(t, err)

	_, _, _, err = ChunkID("doc::unknown_collection::000001").Parse()
	assert.Error(t, err)

	_, _, _, err = ChunkID("doc::documents::notanumber").Parse()
	assert.Error(t, err)
}

func TestCollectionRankOrdersDocumentsFirst(t *testing.T) {
	assert.Less(t, CollectionDocuments.Rank(), CollectionParagraphSummaries.Rank())
	assert.Less(t, CollectionParagraphSummaries.Rank(), CollectionLogicalSummaries.Rank())
}

func TestParseCollectionRejectsUnknown(t *testing.T) {
	_, err := ParseCollection("not_a_real_collection")
	assert.Error(t, err)

	c, err := ParseCollection("documents")
	require.NoError(t, err)
	assert.Equal(t, CollectionDocuments, c)
}

func TestDocumentHasCollection(t *testing.T) {
	doc := NewDocument("a.txt")
	assert.False(t, doc.HasCollection(CollectionDocuments))

	doc.ChunkCounts[CollectionDocuments] = 3
	assert.True(t, doc.HasCollection(CollectionDocuments))
}
