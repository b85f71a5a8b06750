package works

import (
	"time"

	"lorekeeper/internal/domain/works"
	"lorekeeper/internal/infra/assets"
	"lorekeeper/internal/store"
)

type WorkDTO struct {
	ID          uint       `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Tags        []string   `json:"tags"`
	Pictures    []string   `json:"pictures"`
	OnlineAt    *time.Time `json:"onlineAt"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	SetIDs      []uint     `json:"setIds,omitempty"`
}

type WorkListDTO struct {
	Items []WorkDTO `json:"items"`
	store.Envelope
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func toWorkDTO(w works.Work, r assets.Resolver) WorkDTO {
	return WorkDTO{
		ID:          w.ID,
		Name:        w.Name,
		Description: w.Description,
		Tags:        orEmpty(w.Tags),
		Pictures:    assets.ResolveAll(r, orEmpty(w.Pictures)),
		OnlineAt:    w.OnlineAt,
		CreatedAt:   w.CreatedAt,
		UpdatedAt:   w.UpdatedAt,
	}
}
