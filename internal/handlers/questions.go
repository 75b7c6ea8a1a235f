package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/askme/backend/internal/auth"
	"github.com/emilythestrangee/askme/backend/internal/forum"
	"github.com/emilythestrangee/askme/backend/internal/models"
)

type QuestionHandler struct {
	svc      *forum.Service
	pageSize int
}

func NewQuestionHandler(svc *forum.Service, pageSize int) *QuestionHandler {
	return &QuestionHandler{svc: svc, pageSize: pageSize}
}

// GetQuestions lists questions: ?page=N&sort=recency|rating&tag=title
func (h *QuestionHandler) GetQuestions(c *gin.Context) {
	sort, err := forum.ParseSortKey(c.Query("sort"))
	if err != nil {
		fail(c, err)
		return
	}

	page, err := h.svc.ListQuestions(c.Request.Context(), forum.QuestionQuery{
		Tag:      c.Query("tag"),
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

// GetQuestion returns a single question by ID
func (h *QuestionHandler) GetQuestion(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		fail(c, err)
		return
	}

	question, err := h.svc.GetQuestion(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, question)
}

// CreateQuestion asks a new question (PROTECTED - requires authentication)
func (h *QuestionHandler) CreateQuestion(c *gin.Context) {
	userID, err := auth.RequireAuthenticated(c)
	if err != nil {
		fail(c, err)
		return
	}

	var input models.CreateQuestionRequest
	if err := bindJSON(c, &input); err != nil {
		fail(c, err)
		return
	}

	question, err := h.svc.AskQuestion(c.Request.Context(), userID, forum.NewQuestion{
		Title: input.Title,
		Body:  input.Body,
		Tags:  input.Tags,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, question)
}

// DeleteQuestion removes a question (PROTECTED - requires ownership)
func (h *QuestionHandler) DeleteQuestion(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		fail(c, err)
		return
	}

	if err := h.svc.DeleteQuestion(c.Request.Context(), id, currentUser(c)); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Question deleted successfully"})
}

// VoteQuestion casts an up or down vote on a question
func (h *QuestionHandler) VoteQuestion(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		fail(c, err)
		return
	}
	castVote(c, func(d forum.Direction) (*forum.VoteResult, error) {
		return h.svc.CastQuestionVote(c.Request.Context(), currentUser(c), id, d)
	})
}

// castVote binds a VoteRequest and runs cast with the parsed direction.
func castVote(c *gin.Context, cast func(forum.Direction) (*forum.VoteResult, error)) {
	var input models.VoteRequest
	if err := bindJSON(c, &input); err != nil {
		fail(c, err)
		return
	}
	direction, err := forum.ParseDirection(input.Direction)
	if err != nil {
		fail(c, err)
		return
	}

	result, err := cast(direction)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
