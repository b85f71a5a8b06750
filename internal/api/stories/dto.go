package stories

import "time"

// ---------- requests

type CreateStoryRequest struct {
	Title    string     `json:"title" binding:"required"`
	Content  string     `json:"content" binding:"required"`
	Pictures []string   `json:"pictures"`
	OnlineAt *time.Time `json:"onlineAt"`
	SetIDs   []uint     `json:"setIds"`
}

type UpdateStoryRequest struct {
	Title         *string    `json:"title"`
	Content       *string    `json:"content"`
	Pictures      *[]string  `json:"pictures"`
	OnlineAt      *time.Time `json:"onlineAt"`
	ClearOnlineAt bool       `json:"clearOnlineAt"`
}

type SetRelRequest struct {
	StoryID uint `json:"storyId" binding:"required"`
	SetID   uint `json:"setId" binding:"required"`
	Sort    *int `json:"sort"`
}

type StoryOrder struct {
	StoryID uint `json:"storyId" binding:"required"`
	Sort    int  `json:"sort"`
}

type OrderRequest struct {
	SetID       uint         `json:"setId" binding:"required"`
	StoryOrders []StoryOrder `json:"storyOrders" binding:"required,dive"`
}

type RelationRequest struct {
	RelatedID    uint   `json:"relatedId" binding:"required"`
	RelationType string `json:"relationType" binding:"required"`
	Note         string `json:"note"`
}
