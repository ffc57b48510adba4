package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/garagedesk/garagedesk/internal/middleware"
	userDto "github.com/garagedesk/garagedesk/internal/modules/user/dto"
	userService "github.com/garagedesk/garagedesk/internal/modules/user/service"
	"github.com/garagedesk/garagedesk/pkg/response"
	"github.com/garagedesk/garagedesk/pkg/validator"
)

type AuthHandler struct {
	service userService.AuthService
}

func NewAuthHandler(service userService.AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req userDto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	auth, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Message(c, http.StatusCreated, "Registration successful", auth)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req userDto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	auth, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Message(c, http.StatusOK, "Login successful", auth)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	jti := c.GetString("token_jti")

	var expiresAt *jwt.NumericDate
	if v, exists := c.Get("token_exp"); exists {
		if exp, ok := v.(*jwt.NumericDate); ok {
			expiresAt = exp
		}
	}

	if expiresAt != nil {
		if err := h.service.Logout(c.Request.Context(), jti, expiresAt.Time); err != nil {
			response.Error(c, err)
			return
		}
	}

	response.Message(c, http.StatusOK, "Logged out successfully", nil)
}

// Me returns the authenticated user's own profile.
func (h *AuthHandler) Me(c *gin.Context) {
	actor, err := middleware.Actor(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Data(c, http.StatusOK, actor)
}
