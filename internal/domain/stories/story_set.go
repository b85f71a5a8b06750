package stories

import "lorekeeper/internal/domain/content"

const (
	StorySetTable      = "story_sets"
	StoryTable         = "stories"
	StorySetRelTable   = "story_set_rels"
	StoryRelationTable = "story_relations"
)

// StorySet is a story collection.
type StorySet struct {
	content.Collection
}

func (StorySet) TableName() string { return StorySetTable }

func (s *StorySet) Base() *content.Collection { return &s.Collection }
