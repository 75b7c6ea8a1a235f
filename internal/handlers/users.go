package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/askme/backend/internal/auth"
	"github.com/emilythestrangee/askme/backend/internal/forum"
	"github.com/emilythestrangee/askme/backend/internal/models"
)

type UserHandler struct {
	svc *forum.Service
}

func NewUserHandler(svc *forum.Service) *UserHandler {
	return &UserHandler{svc: svc}
}

// GetUserProfile returns a public profile with activity counts
func (h *UserHandler) GetUserProfile(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		fail(c, err)
		return
	}

	profile, err := h.svc.Profile(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// GetUserQuestions lists one user's questions, newest first: ?page=N
func (h *UserHandler) GetUserQuestions(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		fail(c, err)
		return
	}
	if _, err := h.svc.GetUser(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}

	page, err := h.svc.ListQuestions(c.Request.Context(), forum.QuestionQuery{
		AuthorID: id,
		Sort:     forum.SortRecency,
		Page:     forum.ParsePage(c.Query("page")),
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// UpdateUserProfile changes bio and avatar (PROTECTED - own profile only)
func (h *UserHandler) UpdateUserProfile(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		fail(c, err)
		return
	}
	userID, err := auth.RequireAuthenticated(c)
	if err != nil {
		fail(c, err)
		return
	}

	var input models.UpdateProfileRequest
	if err := bindJSON(c, &input); err != nil {
		fail(c, err)
		return
	}

	user, err := h.svc.UpdateProfile(c.Request.Context(), id, userID, forum.ProfileUpdate{
		Bio:    input.Bio,
		Avatar: input.Avatar,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
