package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/paperrec-backend/internal/http/response"
	"github.com/yungbote/paperrec-backend/internal/services"
)

type UserHandler struct {
	catalog services.CatalogService
}

func NewUserHandler(catalog services.CatalogService) *UserHandler {
	return &UserHandler{catalog: catalog}
}

type selectTagsRequest struct {
	TagIDs []uint `json:"tag_ids"`
}

// PUT /api/v1/user/tags
func (h *UserHandler) SetTags(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var body selectTagsRequest
	if err := bindJSON(c, &body); err != nil {
		response.RespondFrom(c, err, "invalid_body")
		return
	}
	tags, err := h.catalog.SetUserTags(c.Request.Context(), userID, body.TagIDs)
	if err != nil {
		response.RespondFrom(c, err, "select_tags_failed")
		return
	}
	response.RespondOK(c, gin.H{"tags": tags})
}

// GET /api/v1/user/tags
func (h *UserHandler) GetTags(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	tags, err := h.catalog.UserTags(c.Request.Context(), userID)
	if err != nil {
		response.RespondFrom(c, err, "list_tags_failed")
		return
	}
	response.RespondOK(c, gin.H{"tags": tags})
}
