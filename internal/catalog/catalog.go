package catalog

import (
	"gorm.io/gorm"

	"lorekeeper/internal/domain/stories"
	"lorekeeper/internal/domain/works"
	"lorekeeper/internal/infra/cache"
	"lorekeeper/internal/platform/logger"
)

type (
	StorySets        = Collections[stories.StorySet, *stories.StorySet]
	StoryItems       = Items[stories.Story, *stories.Story]
	StoryMemberships = Memberships[stories.StorySetRel, *stories.StorySetRel]

	WorksSets        = Collections[works.WorksSet, *works.WorksSet]
	WorkItems        = Items[works.Work, *works.Work]
	WorksMemberships = Memberships[works.WorksRelation, *works.WorksRelation]
)

// Stories bundles the services behind the story endpoints.
type Stories struct {
	Sets      *StorySets
	Items     *StoryItems
	Members   *StoryMemberships
	Relations *Relations
}

// Works bundles the services behind the works endpoints.
type Works struct {
	Sets    *WorksSets
	Items   *WorkItems
	Members *WorksMemberships
}

// NewStories wires the story services. Deleting a story also removes its relations.
func NewStories(db *gorm.DB, log *logger.Logger, c cache.Store) *Stories {
	members := NewMemberships[stories.StorySetRel](db, log, StoryKind)
	items := NewItems[stories.Story](db, log, StoryKind, members)
	relations := NewRelations(db, log, items)
	items.OnDelete(relations.RemoveAllForStory)
	return &Stories{
		Sets:      NewCollections[stories.StorySet](db, log, StoryKind, members, c),
		Items:     items,
		Members:   members,
		Relations: relations,
	}
}

func NewWorks(db *gorm.DB, log *logger.Logger, c cache.Store) *Works {
	members := NewMemberships[works.WorksRelation](db, log, WorksKind)
	return &Works{
		Sets:    NewCollections[works.WorksSet](db, log, WorksKind, members, c),
		Items:   NewItems[works.Work](db, log, WorksKind, members),
		Members: members,
	}
}
