package catalog

import "time"

// Tag is a topical label attached to papers and users.
// Popularity is maintained by the aggregation job, never by request paths.
type Tag struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Name       string    `gorm:"column:name;size:255;not null;uniqueIndex" json:"name"`
	Popularity int       `gorm:"column:popularity;not null;default:0;index" json:"popularity"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null" json:"updated_at"`
}

func (Tag) TableName() string { return "tag" }

// UserTag records a tag the user picked explicitly during onboarding.
type UserTag struct {
	UserID    uint      `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	TagID     uint      `gorm:"primaryKey;autoIncrement:false;index" json:"tag_id"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (UserTag) TableName() string { return "user_tag" }
