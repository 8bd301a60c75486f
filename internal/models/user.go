package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User owns lists. Names are unique among active users; the partial unique
// index is what turns a duplicate signup into an error.
type User struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string         `gorm:"size:120;not null;uniqueIndex:idx_users_active_name,where:removed_at IS NULL" json:"name"`
	Password  string         `gorm:"not null" json:"-"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	RemovedAt gorm.DeletedAt `gorm:"index" json:"removed_at,omitempty"`
}
