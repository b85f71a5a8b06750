package stories

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lorekeeper/internal/domain/content"
)

func rel(id, from, to uint, kind, note string) StoryRelation {
	return StoryRelation{Record: content.Record{ID: id}, StoryID: from, RelatedID: to, RelationType: kind, Note: note}
}

func TestInvertRelationType(t *testing.T) {
	assert.Equal(t, RelationSequel, InvertRelationType(RelationPrequel))
	assert.Equal(t, RelationPrequel, InvertRelationType(RelationSequel))
	assert.Equal(t, RelationRelated, InvertRelationType(RelationRelated))
	assert.Equal(t, RelationParallel, InvertRelationType(RelationParallel))
	assert.Equal(t, "inspired-by", InvertRelationType("inspired-by"))
}

func TestResolveRelationsSynthesizesReverse(t *testing.T) {
	// 1 -> 2 stored as prequel; viewed from 2 it is a sequel edge back to 1.
	out := ResolveRelations(2, nil, []StoryRelation{rel(10, 1, 2, RelationPrequel, "before the war")})

	require.Len(t, out, 1)
	assert.Equal(t, uint(1), out[0].RelatedID)
	assert.Equal(t, RelationSequel, out[0].RelationType)
	assert.Equal(t, "before the war", out[0].Note)
	assert.True(t, out[0].Reversed)
}

func TestResolveRelationsForwardWins(t *testing.T) {
	forward := []StoryRelation{rel(1, 2, 1, RelationSequel, "stored")}
	reverse := []StoryRelation{
		rel(2, 1, 2, RelationPrequel, "synth"),
		rel(3, 3, 2, RelationRelated, ""),
	}
	out := ResolveRelations(2, forward, reverse)

	require.Len(t, out, 2)
	assert.Equal(t, uint(1), out[0].ID)
	assert.Equal(t, "stored", out[0].Note)
	assert.False(t, out[0].Reversed)
	assert.Equal(t, uint(3), out[1].RelatedID)
	assert.Equal(t, RelationRelated, out[1].RelationType)
}

func TestResolveRelationsKeepsDistinctTypes(t *testing.T) {
	forward := []StoryRelation{
		rel(1, 5, 6, RelationParallel, ""),
		rel(2, 5, 6, RelationRelated, ""),
		rel(3, 9, 9, RelationRelated, ""),
	}
	out := ResolveRelations(5, forward, nil)

	require.Len(t, out, 2)
	assert.Equal(t, RelationParallel, out[0].RelationType)
	assert.Equal(t, RelationRelated, out[1].RelationType)
}
