package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/preloved-backend/internal/http/handlers/common"
	"github.com/ignatzorin/preloved-backend/internal/http/response"
	"github.com/ignatzorin/preloved-backend/internal/service"
	"github.com/ignatzorin/preloved-backend/internal/validation"
)

// AuthHandler предоставляет HTTP слой для регистрации и логина.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler создаёт хэндлер.
func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Register обрабатывает POST /auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req validation.RegisterRequest
	if err := validation.Decode(c, &req); err != nil {
		common.Fail(c, err)
		return
	}

	result, err := h.auth.Register(c.Request.Context(), req, common.SessionMeta(c))
	if err != nil {
		common.Fail(c, err)
		return
	}
	response.Created(c, result)
}

// Login обрабатывает POST /auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req validation.LoginRequest
	if err := validation.Decode(c, &req); err != nil {
		common.Fail(c, err)
		return
	}

	result, err := h.auth.Login(c.Request.Context(), req, common.SessionMeta(c))
	if err != nil {
		common.Fail(c, err)
		return
	}
	response.Success(c, result)
}

// Refresh обрабатывает POST /auth/refresh.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req validation.RefreshRequest
	if err := validation.Bind(c, &req); err != nil {
		common.Fail(c, err)
		return
	}

	tokens, err := h.auth.Refresh(c.Request.Context(), req.RefreshToken, common.SessionMeta(c))
	if err != nil {
		common.Fail(c, err)
		return
	}
	response.Success(c, gin.H{"tokens": tokens})
}

// Logout обрабатывает POST /auth/logout.
func (h *AuthHandler) Logout(c *gin.Context) {
	var req validation.RefreshRequest
	if err := validation.Bind(c, &req); err != nil {
		common.Fail(c, err)
		return
	}

	if err := h.auth.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		common.Fail(c, err)
		return
	}
	response.Message(c, "сессия завершена")
}

// ChangePassword обрабатывает PUT /auth/password.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	user, ok := common.CurrentUser(c)
	if !ok {
		return
	}

	var req validation.ChangePasswordRequest
	if err := validation.Decode(c, &req); err != nil {
		common.Fail(c, err)
		return
	}

	if err := h.auth.ChangePassword(c.Request.Context(), user.ID, req); err != nil {
		common.Fail(c, err)
		return
	}
	response.Message(c, "пароль изменён, войдите заново")
}
