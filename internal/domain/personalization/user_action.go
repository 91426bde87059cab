package personalization

import (
	"time"

	"gorm.io/datatypes"
)

const (
	ActionView     = "view"
	ActionLike     = "like"
	ActionFavorite = "favorite"
	ActionSearch   = "search"
	ActionClick    = "click"
	ActionIgnore   = "ignore"
)

// ActionTypes lists every accepted action_type.
var ActionTypes = []string{ActionView, ActionLike, ActionFavorite, ActionSearch, ActionClick, ActionIgnore}

// UserAction is one row of the append-only action log.
type UserAction struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	UserID      uint    `gorm:"column:user_id;not null;index" json:"user_id"`
	PaperID     string  `gorm:"column:paper_id;size:100;not null;index" json:"paper_id"`
	ActionType  string  `gorm:"column:action_type;size:50;not null;index" json:"action_type"`
	ActionValue float64 `gorm:"column:action_value;not null;default:1" json:"action_value"`
	// When the action happened (client clock). CreatedAt is server receive time.
	OccurredAt time.Time      `gorm:"column:occurred_at;not null;index" json:"occurred_at"`
	SessionID  string         `gorm:"column:session_id;size:255;index" json:"session_id,omitempty"`
	DeviceType string         `gorm:"column:device_type;size:50" json:"device_type,omitempty"`
	IPAddress  string         `gorm:"column:ip_address;size:45" json:"ip_address,omitempty"`
	Location   datatypes.JSON `gorm:"column:location" json:"location,omitempty"`
	ExtraData  datatypes.JSON `gorm:"column:extra_data" json:"extra_data,omitempty"`
	CreatedAt  time.Time      `gorm:"not null;index" json:"create_time"`
}

func (UserAction) TableName() string { return "user_action" }
