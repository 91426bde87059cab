package user

import (
	"time"

	"gorm.io/gorm"
)

// User is the minimal identity row the recommendation tables hang off.
// Credentials live with whatever issues the bearer tokens.
type User struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Username        string         `gorm:"column:username;size:20" json:"username"`
	Nickname        string         `gorm:"column:nickname;size:255" json:"nickname"`
	Email           string         `gorm:"column:email;size:255;index" json:"email,omitempty"`
	HasSelectedTags bool           `gorm:"column:has_selected_tags;not null;default:false" json:"has_selected_tags"`
	CreatedAt       time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (User) TableName() string { return "user" }
