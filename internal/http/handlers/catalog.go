package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/paperrec-backend/internal/http/response"
	"github.com/yungbote/paperrec-backend/internal/services"
)

type CatalogHandler struct {
	catalog services.CatalogService
}

func NewCatalogHandler(catalog services.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

func pageQuery(c *gin.Context) (int, int, error) {
	page, err := queryInt(c, "page", 0)
	if err != nil {
		return 0, 0, err
	}
	size, err := queryInt(c, "size", 0)
	if err != nil {
		return 0, 0, err
	}
	return page, size, nil
}

// GET /api/v1/tags
func (h *CatalogHandler) ListTags(c *gin.Context) {
	page, size, err := pageQuery(c)
	if err != nil {
		response.RespondFrom(c, err, "invalid_query")
		return
	}
	out, err := h.catalog.ListTags(c.Request.Context(), page, size)
	if err != nil {
		response.RespondFrom(c, err, "list_tags_failed")
		return
	}
	response.RespondOK(c, out)
}

// GET /api/v1/tags/:id
func (h *CatalogHandler) GetTag(c *gin.Context) {
	id, err := pathUint(c, "id")
	if err != nil {
		response.RespondFrom(c, err, "invalid_id")
		return
	}
	tag, err := h.catalog.GetTag(c.Request.Context(), id)
	if err != nil {
		response.RespondFrom(c, err, "tag_not_found")
		return
	}
	response.RespondOK(c, tag)
}

// POST /api/v1/tags
func (h *CatalogHandler) CreateTag(c *gin.Context) {
	var in services.TagInput
	if err := bindJSON(c, &in); err != nil {
		response.RespondFrom(c, err, "invalid_body")
		return
	}
	tag, err := h.catalog.CreateTag(c.Request.Context(), in)
	if err != nil {
		response.RespondFrom(c, err, "create_tag_failed")
		return
	}
	response.RespondCreated(c, tag)
}

// GET /api/v1/papers
func (h *CatalogHandler) ListPapers(c *gin.Context) {
	page, size, err := pageQuery(c)
	if err != nil {
		response.RespondFrom(c, err, "invalid_query")
		return
	}
	out, err := h.catalog.ListPapers(c.Request.Context(), page, size)
	if err != nil {
		response.RespondFrom(c, err, "list_papers_failed")
		return
	}
	response.RespondOK(c, out)
}

// GET /api/v1/papers/:id
func (h *CatalogHandler) GetPaper(c *gin.Context) {
	p, err := h.catalog.GetPaper(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.RespondFrom(c, err, "paper_not_found")
		return
	}
	response.RespondOK(c, p)
}

// POST /api/v1/papers
func (h *CatalogHandler) CreatePaper(c *gin.Context) {
	var in services.PaperInput
	if err := bindJSON(c, &in); err != nil {
		response.RespondFrom(c, err, "invalid_body")
		return
	}
	p, err := h.catalog.CreatePaper(c.Request.Context(), in)
	if err != nil {
		response.RespondFrom(c, err, "create_paper_failed")
		return
	}
	response.RespondCreated(c, p)
}
