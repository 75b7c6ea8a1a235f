package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/askme/backend/internal/auth"
	apperrors "github.com/emilythestrangee/askme/backend/internal/errors"
	"github.com/emilythestrangee/askme/backend/internal/forum"
	"github.com/emilythestrangee/askme/backend/internal/models"
)

type AuthHandler struct {
	svc    *forum.Service
	tokens *auth.Tokens
}

func NewAuthHandler(svc *forum.Service, tokens *auth.Tokens) *AuthHandler {
	return &AuthHandler{svc: svc, tokens: tokens}
}

// Register handles user registration
func (h *AuthHandler) Register(c *gin.Context) {
	var input models.RegisterRequest
	if err := bindJSON(c, &input); err != nil {
		fail(c, err)
		return
	}

	user, err := h.svc.Register(c.Request.Context(), forum.NewUser{
		Username: input.Username,
		Email:    input.Email,
		Password: input.Password,
		Avatar:   input.Avatar,
	})
	if err != nil {
		fail(c, err)
		return
	}

	h.respondWithToken(c, http.StatusCreated, user, "User registered successfully")
}

// Login handles user login
func (h *AuthHandler) Login(c *gin.Context) {
	var input models.LoginRequest
	if err := bindJSON(c, &input); err != nil {
		fail(c, err)
		return
	}

	user, err := h.svc.Authenticate(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		fail(c, err)
		return
	}

	h.respondWithToken(c, http.StatusOK, user, "Login successful")
}

// GetMe returns the authenticated user, including private fields
func (h *AuthHandler) GetMe(c *gin.Context) {
	userID, err := auth.RequireAuthenticated(c)
	if err != nil {
		fail(c, err)
		return
	}

	user, err := h.svc.GetUser(c.Request.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) respondWithToken(c *gin.Context, status int, user *models.User, message string) {
	token, err := h.tokens.Generate(*user)
	if err != nil {
		fail(c, apperrors.InternalError("failed to generate token", err))
		return
	}
	c.JSON(status, models.AuthResponse{Token: token, User: *user, Message: message})
}
