package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/askme/backend/internal/forum"
)

type TagHandler struct {
	svc      *forum.Service
	pageSize int
}

func NewTagHandler(svc *forum.Service, pageSize int) *TagHandler {
	return &TagHandler{svc: svc, pageSize: pageSize}
}

func (h *TagHandler) GetTags(c *gin.Context) {
	tags, err := h.svc.ListTags(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, tags)
}

// GetTagQuestions lists the questions carrying one tag: ?page=N&sort=...
func (h *TagHandler) GetTagQuestions(c *gin.Context) {
	sort, err := forum.ParseSortKey(c.Query("sort"))
	if err != nil {
		fail(c, err)
		return
	}

	page, err := h.svc.ListQuestions(c.Request.Context(), forum.QuestionQuery{
		Tag:      c.Param("title"),
		Sort:     sort,
		Page:     forum.ParsePage(c.Query("page")),
		PageSize: h.pageSize,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}
