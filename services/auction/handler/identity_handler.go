package handler

//go:generate mockgen -source=identity_handler.go -destination=mock_identity_handler.go -package=handler

import (
	"context"
	"net/http"

	model "auction-site/internal/models"
	"auction-site/internal/validation"
	"auction-site/services/auction/helpers"
	"auction-site/utils"

	"github.com/gin-gonic/gin"
)

type IdentityServiceInterface interface {
	Register(ctx context.Context, in validation.RegistrationInput) (model.User, error)
	Login(ctx context.Context, username, password string) (model.User, string, error)
	IssueToken(user model.User) (string, error)
}

type IdentityHandler struct {
	service IdentityServiceInterface
}

func NewIdentityHandler(service IdentityServiceInterface) *IdentityHandler {
	return &IdentityHandler{service: service}
}

// RegisterHandler handles POST /auth/register. A successful sign-up is also a login.
func (h *IdentityHandler) RegisterHandler(c *gin.Context) {
	var req helpers.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "RegisterHandler", err)
		return
	}

	user, err := h.service.Register(c.Request.Context(), validation.RegistrationInput{
		Username:     req.Username,
		Email:        req.Email,
		Password:     req.Password,
		Confirmation: req.Confirmation,
	})
	if err != nil {
		helpers.RespondError(c, "RegisterHandler", err, map[string]any{"username": req.Username})
		return
	}

	token, err := h.service.IssueToken(user)
	if err != nil {
		helpers.RespondError(c, "RegisterHandler", err, map[string]any{"user_id": user.ID})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, helpers.AuthResponse{User: helpers.ToUserResponse(user), Token: token}, "user registered successfully")
}

// LoginHandler handles POST /auth/login
func (h *IdentityHandler) LoginHandler(c *gin.Context) {
	var req helpers.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "LoginHandler", err)
		return
	}

	user, token, err := h.service.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		helpers.RespondError(c, "LoginHandler", err, map[string]any{"username": req.Username})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.AuthResponse{User: helpers.ToUserResponse(user), Token: token}, "logged in successfully")
	helpers.LogSuccess("LoginHandler", "user logged in", map[string]any{"user_id": user.ID})
}
