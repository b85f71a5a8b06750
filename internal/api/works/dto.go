package works

import "time"

// ---------- requests

type CreateWorkRequest struct {
	Name        string     `json:"name" binding:"required"`
	Description string     `json:"description"`
	Tags        []string   `json:"tags"`
	Pictures    []string   `json:"pictures"`
	OnlineAt    *time.Time `json:"onlineAt"`
	SetIDs      []uint     `json:"setIds"`
}

type UpdateWorkRequest struct {
	Name          *string    `json:"name"`
	Description   *string    `json:"description"`
	Tags          *[]string  `json:"tags"`
	Pictures      *[]string  `json:"pictures"`
	OnlineAt      *time.Time `json:"onlineAt"`
	ClearOnlineAt bool       `json:"clearOnlineAt"`
}

type SetRelRequest struct {
	WorksID uint `json:"worksId" binding:"required"`
	SetID   uint `json:"setId" binding:"required"`
	Sort    *int `json:"sort"`
}

type WorksOrder struct {
	WorksID uint `json:"worksId" binding:"required"`
	Sort    int  `json:"sort"`
}

type OrderRequest struct {
	SetID       uint         `json:"setId" binding:"required"`
	WorksOrders []WorksOrder `json:"worksOrders" binding:"required,dive"`
}
