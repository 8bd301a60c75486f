package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Item struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ListID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"list_id"`
	Name      string         `gorm:"size:255;not null" json:"name"`
	Checked   bool           `gorm:"default:false" json:"checked"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	RemovedAt gorm.DeletedAt `gorm:"index" json:"removed_at,omitempty"`
	List      List           `gorm:"foreignKey:ListID" json:"-"`
}

func (i *Item) IsRemoved() bool {
	return i.RemovedAt.Valid
}
