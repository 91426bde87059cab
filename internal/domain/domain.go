package domain

import (
	"github.com/yungbote/paperrec-backend/internal/domain/catalog"
	"github.com/yungbote/paperrec-backend/internal/domain/personalization"
	"github.com/yungbote/paperrec-backend/internal/domain/recommendation"
	"github.com/yungbote/paperrec-backend/internal/domain/user"
)

const (
	ActionView     = personalization.ActionView
	ActionLike     = personalization.ActionLike
	ActionFavorite = personalization.ActionFavorite
	ActionSearch   = personalization.ActionSearch
	ActionClick    = personalization.ActionClick
	ActionIgnore   = personalization.ActionIgnore

	RecommendationTypeContentBased  = recommendation.TypeContentBased
	RecommendationTypeCollaborative = recommendation.TypeCollaborative
	RecommendationTypeHybrid        = recommendation.TypeHybrid
	RecommendationTypePopular       = recommendation.TypePopular

	RecommendationStatusPending  = recommendation.StatusPending
	RecommendationStatusViewed   = recommendation.StatusViewed
	RecommendationStatusAccepted = recommendation.StatusAccepted
	RecommendationStatusIgnored  = recommendation.StatusIgnored
)

// ActionTypes lists every accepted action_type.
var ActionTypes = personalization.ActionTypes

type User = user.User

type Tag = catalog.Tag
type UserTag = catalog.UserTag
type Paper = catalog.Paper
type PaperTag = catalog.PaperTag

type UserAction = personalization.UserAction
type UserProfile = personalization.UserProfile
type Preferences = personalization.Preferences

type Recommendation = recommendation.Recommendation
type RecommendationLog = recommendation.RecommendationLog

// Models lists every table owned by this service, in migration order.
func Models() []interface{} {
	return []interface{}{
		&User{},
		&Tag{},
		&UserTag{},
		&Paper{},
		&PaperTag{},
		&UserAction{},
		&UserProfile{},
		&Recommendation{},
		&RecommendationLog{},
	}
}

func ValidRecommendationType(t string) bool   { return recommendation.ValidType(t) }
func ValidRecommendationStatus(s string) bool { return recommendation.ValidStatus(s) }
