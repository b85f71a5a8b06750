package stories

import (
	"lorekeeper/internal/domain/content"
)

const (
	RelationPrequel  = "prequel"
	RelationSequel   = "sequel"
	RelationParallel = "parallel"
	RelationRelated  = "related"
)

// StoryRelation is a directed, typed link from StoryID to RelatedID.
// RelationType is an open string; the four constants above are the known values.
type StoryRelation struct {
	content.Record
	StoryID      uint   `gorm:"not null;index" json:"storyId"`
	RelatedID    uint   `gorm:"not null;index" json:"relatedId"`
	RelationType string `gorm:"type:varchar(32);not null" json:"relationType"`
	Note         string `gorm:"type:text" json:"note"`
}

func (StoryRelation) TableName() string { return StoryRelationTable }

// InvertRelationType gives the type as seen from the other end of an edge.
// prequel and sequel swap; every other type reads the same both ways.
func InvertRelationType(t string) string {
	switch t {
	case RelationPrequel:
		return RelationSequel
	case RelationSequel:
		return RelationPrequel
	default:
		return t
	}
}

// ResolvedRelation is an edge expressed from one story's point of view.
type ResolvedRelation struct {
	ID           uint   `json:"id"`
	StoryID      uint   `json:"storyId"`
	RelatedID    uint   `json:"relatedId"`
	RelationType string `json:"relationType"`
	Note         string `json:"note"`

	Reversed bool `json:"-"`
}

// ResolveRelations merges the rows where storyID is the source (forward) with the rows
// where it is the target (reverse). Reverse rows are flipped and their type inverted.
// The result is de-duplicated on (relatedId, relationType), first occurrence wins, so a
// stored forward row hides the synthesized twin of the same edge. Notes are copied as stored.
func ResolveRelations(storyID uint, forward, reverse []StoryRelation) []ResolvedRelation {
	type edge struct {
		related uint
		kind    string
	}
	seen := make(map[edge]struct{}, len(forward)+len(reverse))
	out := make([]ResolvedRelation, 0, len(forward)+len(reverse))

	add := func(r ResolvedRelation) {
		k := edge{related: r.RelatedID, kind: r.RelationType}
		if _, dup := seen[k]; dup {
			return
		}
		seen[k] = struct{}{}
		out = append(out, r)
	}

	for _, r := range forward {
		if r.StoryID != storyID {
			continue
		}
		add(ResolvedRelation{
			ID:           r.ID,
			StoryID:      storyID,
			RelatedID:    r.RelatedID,
			RelationType: r.RelationType,
			Note:         r.Note,
		})
	}
	for _, r := range reverse {
		if r.RelatedID != storyID {
			continue
		}
		add(ResolvedRelation{
			ID:           r.ID,
			StoryID:      storyID,
			RelatedID:    r.StoryID,
			RelationType: InvertRelationType(r.RelationType),
			Note:         r.Note,
			Reversed:     true,
		})
	}
	return out
}
