package stories

import (
	"time"

	"lorekeeper/internal/catalog"
	"lorekeeper/internal/domain/content"
	"lorekeeper/internal/domain/stories"
	"lorekeeper/internal/infra/assets"
	"lorekeeper/internal/store"
)

type StoryDTO struct {
	ID        uint       `json:"id"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	Pictures  []string   `json:"pictures"`
	OnlineAt  *time.Time `json:"onlineAt"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	SetIDs    []uint     `json:"setIds,omitempty"`
}

type RelationDTO struct {
	ID           uint            `json:"id"`
	StoryID      uint            `json:"storyId"`
	RelatedID    uint            `json:"relatedId"`
	RelationType string          `json:"relationType"`
	Note         string          `json:"note"`
	Related      content.Summary `json:"related"`
}

type StoryListDTO struct {
	Items []StoryDTO `json:"items"`
	store.Envelope
}

func toStoryDTO(s stories.Story, r assets.Resolver) StoryDTO {
	pics := s.Pictures
	if pics == nil {
		pics = []string{}
	}
	return StoryDTO{
		ID:        s.ID,
		Title:     s.Title,
		Content:   s.Content,
		Pictures:  assets.ResolveAll(r, pics),
		OnlineAt:  s.OnlineAt,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

func toRelationDTO(v catalog.RelationView, r assets.Resolver) RelationDTO {
	related := v.Related
	related.Cover = r.Resolve(related.Cover)
	return RelationDTO{
		ID:           v.ID,
		StoryID:      v.StoryID,
		RelatedID:    v.RelatedID,
		RelationType: v.RelationType,
		Note:         v.Note,
		Related:      related,
	}
}
