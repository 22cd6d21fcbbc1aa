package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/casecraft/casecraft_server/internal/api/middleware"
	"github.com/casecraft/casecraft_server/internal/model/dto"
	"github.com/casecraft/casecraft_server/internal/pkg/response"
	"github.com/casecraft/casecraft_server/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Register 用户注册
// POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	resp, err := h.authService.Register(&req)
	if err != nil {
		switch err {
		case service.ErrEmailExists:
			response.ConflictError(c, "Email already registered")
		default:
			response.ServerError(c, "")
		}
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// Login 用户登录
// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	resp, err := h.authService.Login(&req)
	if err != nil {
		switch err {
		case service.ErrInvalidCredentials:
			response.AuthError(c, "Invalid email or password")
		case service.ErrEmailNotVerified:
			response.PermissionError(c, "Please verify your email before logging in")
		case service.ErrAccountLocked:
			response.PermissionError(c, "Account temporarily locked due to too many failed attempts")
		default:
			response.ServerError(c, "")
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}

// VerifyEmail 邮箱验证
// POST /api/auth/verify_email
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	var req dto.VerifyEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	resp, err := h.authService.VerifyEmail(&req)
	if err != nil {
		switch err {
		case service.ErrInvalidVerifyCode:
			response.ParamError(c, "Verification code invalid or expired")
		default:
			response.ServerError(c, "")
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Profile 获取当前用户资料
// GET /api/auth/profile
func (h *AuthHandler) Profile(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	profile, err := h.authService.GetProfile(userID)
	if err != nil {
		switch err {
		case service.ErrUserNotFound:
			response.NotFoundError(c, "User not found")
		default:
			response.ServerError(c, "")
		}
		return
	}

	c.JSON(http.StatusOK, profile)
}
