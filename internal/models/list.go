package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// List is a named collection of items owned by exactly one user.
type List struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID      `gorm:"type:uuid;not null;index:idx_lists_user_name" json:"user_id"`
	Name      string         `gorm:"size:255;not null;index:idx_lists_user_name" json:"name"`
	Date      time.Time      `json:"date"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	RemovedAt gorm.DeletedAt `gorm:"index" json:"removed_at,omitempty"`
	User      User           `gorm:"foreignKey:UserID" json:"-"`
}

// IsRemoved reports whether the list carries a removal timestamp.
func (l *List) IsRemoved() bool {
	return l.RemovedAt.Valid
}
