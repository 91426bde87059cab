package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/paperrec-backend/internal/http/response"
	"github.com/yungbote/paperrec-backend/internal/platform/ctxutil"
	"github.com/yungbote/paperrec-backend/internal/recommend"
	"github.com/yungbote/paperrec-backend/internal/services"
)

type RecommendationHandler struct {
	recommend services.RecommendService
	ledger    services.LedgerService
}

func NewRecommendationHandler(rec services.RecommendService, ledger services.LedgerService) *RecommendationHandler {
	return &RecommendationHandler{recommend: rec, ledger: ledger}
}

func (h *RecommendationHandler) request(c *gin.Context) (services.RecommendRequest, error) {
	req := services.RecommendRequest{UserID: ctxutil.UserID(c.Request.Context())}
	mode, err := recommend.ParseMode(c.Query("mode"))
	if err != nil {
		return req, err
	}
	req.Mode = mode
	if req.Limit, err = queryInt(c, "limit", 0); err != nil {
		return req, err
	}
	if req.TagID, err = queryUint(c, "tag_id"); err != nil {
		return req, err
	}
	return req, nil
}

// GET /api/v1/recommendations
func (h *RecommendationHandler) Recommend(c *gin.Context) {
	req, err := h.request(c)
	if err != nil {
		response.RespondFrom(c, err, "invalid_query")
		return
	}
	res, err := h.recommend.Recommend(c.Request.Context(), req)
	if err != nil {
		response.RespondFrom(c, err, "recommend_failed")
		return
	}
	response.RespondOK(c, res)
}

// GET /api/v1/recommendations/preview
func (h *RecommendationHandler) Preview(c *gin.Context) {
	req, err := h.request(c)
	if err != nil {
		response.RespondFrom(c, err, "invalid_query")
		return
	}
	res, err := h.recommend.Preview(c.Request.Context(), req)
	if err != nil {
		response.RespondFrom(c, err, "recommend_failed")
		return
	}
	response.RespondOK(c, res)
}

// GET /api/v1/recommendations/popular
// Always popularity mode, whoever is asking. Results are recorded like any other recommendation.
func (h *RecommendationHandler) Popular(c *gin.Context) {
	req, err := h.request(c)
	if err != nil {
		response.RespondFrom(c, err, "invalid_query")
		return
	}
	req.Mode = recommend.ModePopular
	res, err := h.recommend.Recommend(c.Request.Context(), req)
	if err != nil {
		response.RespondFrom(c, err, "recommend_failed")
		return
	}
	response.RespondOK(c, res)
}

// GET /api/v1/recommendations/history
func (h *RecommendationHandler) History(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	q := services.LedgerQuery{
		UserID: &userID,
		Type:   strings.ToLower(strings.TrimSpace(c.Query("type"))),
		Status: strings.ToLower(strings.TrimSpace(c.Query("status"))),
	}
	var err error
	if q.Page, err = queryInt(c, "page", 0); err == nil {
		if q.Size, err = queryInt(c, "size", 0); err == nil {
			if q.From, err = queryTime(c, "from"); err == nil {
				q.To, err = queryTime(c, "to")
			}
		}
	}
	if err != nil {
		response.RespondFrom(c, err, "invalid_query")
		return
	}
	page, err := h.ledger.Query(c.Request.Context(), q)
	if err != nil {
		response.RespondFrom(c, err, "no_records")
		return
	}
	response.RespondOK(c, page)
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// PATCH /api/v1/recommendations/:id/status
func (h *RecommendationHandler) UpdateStatus(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, err := pathUint(c, "id")
	if err != nil {
		response.RespondFrom(c, err, "invalid_id")
		return
	}
	var body updateStatusRequest
	if err := bindJSON(c, &body); err != nil {
		response.RespondFrom(c, err, "invalid_body")
		return
	}
	rec, err := h.ledger.UpdateStatus(c.Request.Context(), id, body.Status, &userID)
	if err != nil {
		response.RespondFrom(c, err, "update_status_failed")
		return
	}
	response.RespondOK(c, rec)
}

// GET /api/v1/recommendations/:id/log
func (h *RecommendationHandler) Log(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, err := pathUint(c, "id")
	if err != nil {
		response.RespondFrom(c, err, "invalid_id")
		return
	}
	rows, err := h.ledger.History(c.Request.Context(), id, &userID)
	if err != nil {
		response.RespondFrom(c, err, "log_failed")
		return
	}
	response.RespondOK(c, gin.H{"log": rows})
}
