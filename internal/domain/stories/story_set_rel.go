package stories

import "lorekeeper/internal/domain/content"

// StorySetRel places a story in a story set.
type StorySetRel struct {
	content.Membership
	StoryID uint `gorm:"not null;index" json:"storyId"`
}

func (StorySetRel) TableName() string { return StorySetRelTable }

func (r *StorySetRel) Base() *content.Membership { return &r.Membership }
func (r *StorySetRel) ItemRef() uint             { return r.StoryID }
func (r *StorySetRel) SetItemRef(id uint)        { r.StoryID = id }
