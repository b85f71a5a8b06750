package works

import "lorekeeper/internal/domain/content"

const (
	WorksSetTable      = "works_sets"
	WorkTable          = "works"
	WorksRelationTable = "works_relations"
)

// WorksSet is a portfolio collection.
type WorksSet struct {
	content.Collection
}

func (WorksSet) TableName() string { return WorksSetTable }

func (s *WorksSet) Base() *content.Collection { return &s.Collection }
