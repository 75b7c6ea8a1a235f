package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/askme/backend/internal/auth"
	"github.com/emilythestrangee/askme/backend/internal/forum"
	"github.com/emilythestrangee/askme/backend/internal/models"
)

type AnswerHandler struct {
	svc      *forum.Service
	pageSize int
}

func NewAnswerHandler(svc *forum.Service, pageSize int) *AnswerHandler {
	return &AnswerHandler{svc: svc, pageSize: pageSize}
}

// GetAnswers lists a question's answers, best rated first: ?page=N
func (h *AnswerHandler) GetAnswers(c *gin.Context) {
	questionID, err := paramID(c, "id")
	if err != nil {
		fail(c, err)
		return
	}

	page, err := h.svc.ListAnswers(c.Request.Context(), questionID, forum.ParsePage(c.Query("page")), h.pageSize)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// CreateAnswer adds an answer. Guests must send guest_name.
func (h *AnswerHandler) CreateAnswer(c *gin.Context) {
	questionID, err := paramID(c, "id")
	if err != nil {
		fail(c, err)
		return
	}

	var input models.CreateAnswerRequest
	if err := bindJSON(c, &input); err != nil {
		fail(c, err)
		return
	}

	answer, err := h.svc.SubmitAnswer(c.Request.Context(), questionID, currentUser(c), forum.NewAnswer{
		Body:      input.Body,
		GuestName: input.GuestName,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, answer)
}

// MarkCorrect accepts an answer (PROTECTED - question author only)
func (h *AnswerHandler) MarkCorrect(c *gin.Context) {
	questionID, err := paramID(c, "id")
	if err != nil {
		fail(c, err)
		return
	}
	answerID, err := paramID(c, "answerId")
	if err != nil {
		fail(c, err)
		return
	}
	userID, err := auth.RequireAuthenticated(c)
	if err != nil {
		fail(c, err)
		return
	}

	answer, err := h.svc.MarkCorrect(c.Request.Context(), questionID, answerID, userID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, answer)
}

// VoteAnswer casts an up or down vote on an answer
func (h *AnswerHandler) VoteAnswer(c *gin.Context) {
	answerID, err := paramID(c, "answerId")
	if err != nil {
		fail(c, err)
		return
	}
	castVote(c, func(d forum.Direction) (*forum.VoteResult, error) {
		return h.svc.CastAnswerVote(c.Request.Context(), currentUser(c), answerID, d)
	})
}
