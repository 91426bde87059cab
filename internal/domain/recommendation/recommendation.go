package recommendation

import (
	"time"

	"github.com/yungbote/paperrec-backend/internal/domain/catalog"
	"gorm.io/datatypes"
)

const (
	TypeContentBased  = "content_based"
	TypeCollaborative = "collaborative"
	TypeHybrid        = "hybrid"
	TypePopular       = "popular"
)

const (
	StatusPending  = "pending"
	StatusViewed   = "viewed"
	StatusAccepted = "accepted"
	StatusIgnored  = "ignored"
)

var (
	Types    = []string{TypeContentBased, TypeCollaborative, TypeHybrid, TypePopular}
	Statuses = []string{StatusPending, StatusViewed, StatusAccepted, StatusIgnored}
)

func ValidType(t string) bool { return contains(Types, t) }
func ValidStatus(s string) bool { return contains(Statuses, s) }

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

// Recommendation is a ledger row: what was shown to whom and what became of it.
// A nil UserID marks a non-personalized (popular) recommendation.
type Recommendation struct {
	ID                 uint           `gorm:"primaryKey" json:"id"`
	UserID             *uint          `gorm:"column:user_id;index" json:"user_id"`
	PaperID            string         `gorm:"column:paper_id;size:100;not null;index" json:"paper_id"`
	Paper              *catalog.Paper `gorm:"foreignKey:PaperID;references:ID" json:"paper,omitempty"`
	Reason             string         `gorm:"column:reason;size:255" json:"reason"`
	RecommendationType string         `gorm:"column:recommendation_type;size:50;not null;default:content_based;index" json:"recommendation_type"`
	Status             string         `gorm:"column:status;size:50;not null;default:pending;index" json:"status"`
	Priority           int            `gorm:"column:priority;not null;default:0" json:"priority"`
	ExtraData          datatypes.JSON `gorm:"column:extra_data" json:"extra_data,omitempty"`
	CreatedAt          time.Time      `gorm:"not null;index" json:"create_time"`
	UpdatedAt          time.Time      `gorm:"not null" json:"update_time"`
}

func (Recommendation) TableName() string { return "recommendation" }

// RecommendationLog is appended on every status change of a recommendation.
type RecommendationLog struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	RecommendationID uint      `gorm:"column:recommendation_id;not null;index" json:"recommendation_id"`
	UserID           *uint     `gorm:"column:user_id;index" json:"user_id,omitempty"`
	Interaction      string    `gorm:"column:interaction;size:50;not null" json:"interaction"`
	Timestamp        time.Time `gorm:"column:timestamp;not null;index" json:"timestamp"`
}

func (RecommendationLog) TableName() string { return "recommendation_log" }
