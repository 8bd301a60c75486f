package dto

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/listkeeper/internal/tracking"
	"github.com/google/uuid"
)

type CreateListRequest struct {
	Name  string     `json:"name"`
	Date  *time.Time `json:"date,omitempty"`
	Items []string   `json:"items,omitempty"`
}

type UpdateListRequest struct {
	Name *string    `json:"name,omitempty"`
	Date *time.Time `json:"date,omitempty"`
}

type AddItemRequest struct {
	Name    string `json:"name"`
	Checked bool   `json:"checked"`
}

type UpdateItemRequest struct {
	Name    *string `json:"name,omitempty"`
	Checked *bool   `json:"checked,omitempty"`
}

type SetCurrentListRequest struct {
	ListID uuid.UUID `json:"list_id"`
}

type ListsResponse struct {
	Lists []tracking.List `json:"lists"`
}
