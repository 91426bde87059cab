package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/paperrec-backend/internal/http/response"
	"github.com/yungbote/paperrec-backend/internal/services"
)

type ActionHandler struct {
	actions services.ActionService
}

func NewActionHandler(actions services.ActionService) *ActionHandler {
	return &ActionHandler{actions: actions}
}

// POST /api/v1/actions
func (h *ActionHandler) Record(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var in services.ActionInput
	if err := bindJSON(c, &in); err != nil {
		response.RespondFrom(c, err, "invalid_body")
		return
	}
	res, err := h.actions.Record(c.Request.Context(), userID, in)
	if err != nil {
		response.RespondFrom(c, err, "record_action_failed")
		return
	}
	response.RespondCreated(c, res)
}

// GET /api/v1/actions?type=like,favorite&limit=
func (h *ActionHandler) List(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	limit, err := queryInt(c, "limit", 0)
	if err != nil {
		response.RespondFrom(c, err, "invalid_query")
		return
	}
	var types []string
	for _, t := range strings.Split(c.Query("type"), ",") {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			types = append(types, t)
		}
	}
	rows, err := h.actions.List(c.Request.Context(), userID, types, limit)
	if err != nil {
		response.RespondFrom(c, err, "list_actions_failed")
		return
	}
	response.RespondOK(c, gin.H{"actions": rows})
}
