// Package catalog holds the hierarchical collection manager: collections arranged in a
// parent/child tree, items placed in collections through ordered memberships, and the
// typed cross-references between stories. Stories and works are two instances of the
// same machinery, told apart by a Kind.
package catalog

import (
	"lorekeeper/internal/domain/content"
	"lorekeeper/internal/domain/stories"
	"lorekeeper/internal/domain/works"
)

// Kind names the tables of one collection/item family.
type Kind struct {
	Name            string
	SetTable        string
	ItemTable       string
	MembershipTable string
	ItemColumn      string
}

var (
	StoryKind = Kind{
		Name:            "story",
		SetTable:        stories.StorySetTable,
		ItemTable:       stories.StoryTable,
		MembershipTable: stories.StorySetRelTable,
		ItemColumn:      "story_id",
	}
	WorksKind = Kind{
		Name:            "works",
		SetTable:        works.WorksSetTable,
		ItemTable:       works.WorkTable,
		MembershipTable: works.WorksRelationTable,
		ItemColumn:      "works_id",
	}
)

func (k Kind) setName() string  { return k.Name + " set" }
func (k Kind) itemName() string { return k.Name }

// CollectionRow, ItemRow and MembershipRow are the pointer types the generic
// services work through.
type CollectionRow[C any] interface {
	*C
	Base() *content.Collection
}

type ItemRow[I any] interface {
	*I
	Base() *content.Item
	Validate() error
	Summary() content.Summary
}

type MembershipRow[M any] interface {
	*M
	Base() *content.Membership
	ItemRef() uint
	SetItemRef(id uint)
}
