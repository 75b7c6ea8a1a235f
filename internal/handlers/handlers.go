package handlers

import (
	"errors"
	"io"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/askme/backend/internal/auth"
	apperrors "github.com/emilythestrangee/askme/backend/internal/errors"
	"github.com/emilythestrangee/askme/backend/internal/forum"
)

// Handler combines all handler types
type Handler struct {
	Auth     *AuthHandler
	Question *QuestionHandler
	Answer   *AnswerHandler
	Tag      *TagHandler
	User     *UserHandler
}

type Options struct {
	QuestionsPageSize int
	AnswersPageSize   int
}

// NewHandler creates a unified handler with all sub-handlers
func NewHandler(svc *forum.Service, tokens *auth.Tokens, opts Options) *Handler {
	if opts.QuestionsPageSize < 1 {
		opts.QuestionsPageSize = forum.DefaultQuestionsPageSize
	}
	if opts.AnswersPageSize < 1 {
		opts.AnswersPageSize = forum.DefaultAnswersPageSize
	}

	return &Handler{
		Auth:     NewAuthHandler(svc, tokens),
		Question: NewQuestionHandler(svc, opts.QuestionsPageSize),
		Answer:   NewAnswerHandler(svc, opts.AnswersPageSize),
		Tag:      NewTagHandler(svc, opts.QuestionsPageSize),
		User:     NewUserHandler(svc),
	}
}

// fail hands err to the error middleware and stops the chain.
func fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// paramID parses a positive numeric path parameter.
func paramID(c *gin.Context, name string) (uint, error) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 0)
	if err != nil || id == 0 {
		return 0, apperrors.ValidationError("invalid " + name).
			WithFields(map[string]string{name: name + " must be a positive integer"})
	}
	return uint(id), nil
}

// bindJSON decodes the request body into dst.
func bindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperrors.ValidationError("request body is required")
		}
		return apperrors.ValidationError("invalid request body").WithContext("detail", err.Error())
	}
	return nil
}

// currentUser returns the caller's ID, or forum.Anonymous.
func currentUser(c *gin.Context) uint {
	if id, ok := auth.CurrentUser(c); ok {
		return id
	}
	return forum.Anonymous
}
