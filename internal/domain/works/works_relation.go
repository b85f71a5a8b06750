package works

import "lorekeeper/internal/domain/content"

// WorksRelation places a work in a works set.
type WorksRelation struct {
	content.Membership
	WorksID uint `gorm:"column:works_id;not null;index" json:"worksId"`
}

func (WorksRelation) TableName() string { return WorksRelationTable }

func (r *WorksRelation) Base() *content.Membership { return &r.Membership }
func (r *WorksRelation) ItemRef() uint             { return r.WorksID }
func (r *WorksRelation) SetItemRef(id uint)        { r.WorksID = id }
