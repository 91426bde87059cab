package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/paperrec-backend/internal/http/response"
	"github.com/yungbote/paperrec-backend/internal/services"
)

type ProfileHandler struct {
	profiles services.ProfileService
}

func NewProfileHandler(profiles services.ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// GET /api/v1/profile
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	p, err := h.profiles.Get(c.Request.Context(), userID)
	if err != nil {
		response.RespondFrom(c, err, "profile_not_found")
		return
	}
	response.RespondOK(c, gin.H{
		"user_id":        p.UserID,
		"preferred_tags": p.PreferredTags(),
		"version":        p.Version,
		"last_updated":   p.LastUpdated,
	})
}
